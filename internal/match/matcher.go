package match

import (
	"media-merger/internal/domain"
)

// Match pairs videos with audio tracks in two passes: exact stem
// equality first, then best-scoring fuzzy similarity for whatever is
// left. Each video and each audio appears in at most one returned
// candidate, and the result is deterministic for a given input order
// and threshold.
//
// The fuzzy pass is greedy by video order, not a globally optimal
// assignment: each unmatched video claims the highest-scoring free
// audio at or above the threshold, ties keeping the first-seen audio.
// That is O(V*A), which is fine for interactive batch sizes, and users
// can preview pairings before committing.
func Match(videos, audios []domain.MediaFile, threshold float64) []domain.MatchCandidate {
	if len(videos) == 0 || len(audios) == 0 {
		return nil
	}

	candidates := make([]domain.MatchCandidate, 0, len(videos))
	consumed := make([]bool, len(audios))
	videoMatched := make([]bool, len(videos))

	// Exact pass: bucket audio indexes by stem, preserving discovery
	// order inside a bucket. Each video claims the first unconsumed
	// audio with an identical stem.
	buckets := make(map[string][]int, len(audios))
	for i, audio := range audios {
		buckets[audio.Stem] = append(buckets[audio.Stem], i)
	}

	for vi, video := range videos {
		for _, ai := range buckets[video.Stem] {
			if consumed[ai] {
				continue
			}
			candidates = append(candidates, domain.MatchCandidate{
				Video:     video,
				Audio:     audios[ai],
				MatchType: domain.MatchTypeExact,
				Score:     1.0,
			})
			consumed[ai] = true
			videoMatched[vi] = true
			break
		}
	}

	// Fuzzy pass over whatever both sides have left.
	for vi, video := range videos {
		if videoMatched[vi] {
			continue
		}

		best := -1
		bestScore := 0.0
		for ai, audio := range audios {
			if consumed[ai] {
				continue
			}
			score := Ratio(video.Stem, audio.Stem)
			if score > bestScore && score >= threshold {
				best = ai
				bestScore = score
			}
		}
		if best < 0 {
			continue
		}

		candidates = append(candidates, domain.MatchCandidate{
			Video:     video,
			Audio:     audios[best],
			MatchType: domain.MatchTypeFuzzy,
			Score:     bestScore,
		})
		consumed[best] = true
	}

	return candidates
}
