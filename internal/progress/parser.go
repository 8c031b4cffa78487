// Package progress extracts a completion percentage from the status
// stream ffmpeg writes while merging. The stream is noisy and partially
// undocumented, so every extraction is best-effort: lines that match
// nothing leave the state untouched, and nothing the tool prints can
// make the parser fail.
package progress

import (
	"regexp"
	"strconv"

	"media-merger/internal/domain"
)

var (
	// Duration: 00:05:30.50 — printed once per input early in the stream.
	durationRe = regexp.MustCompile(`Duration: (\d+):(\d+):(\d+(?:\.\d+)?)`)
	// time=00:00:20.50 — recurring elapsed position in the output.
	timeRe = regexp.MustCompile(`time=(\d+):(\d+):(\d+(?:\.\d+)?)`)
	// frame=  500
	frameRe = regexp.MustCompile(`frame=\s*(\d+)`)
	// speed=1.23x
	speedRe = regexp.MustCompile(`speed=\s*([\d.]+)x`)
)

// Parser is a stateful line-oriented reader of one task's status
// stream. It is not safe for concurrent use; each running task owns its
// own parser.
type Parser struct {
	state       domain.ProgressState
	gotDuration bool
}

// NewParser creates a parser with zeroed state.
func NewParser() *Parser {
	return &Parser{}
}

// Feed consumes one line. It returns the current snapshot and whether
// the line updated any field; callers treat updated == false as a no-op.
// The total duration is taken from the first matching line only, so a
// later duration token (the second input's header) cannot reset the
// percentage denominator.
func (p *Parser) Feed(line string) (domain.ProgressState, bool) {
	updated := false

	if !p.gotDuration {
		if m := durationRe.FindStringSubmatch(line); m != nil {
			p.state.TotalDurationSeconds = hmsToSeconds(m[1], m[2], m[3])
			p.gotDuration = true
			updated = true
		}
	}

	if m := timeRe.FindStringSubmatch(line); m != nil {
		p.state.ElapsedSeconds = hmsToSeconds(m[1], m[2], m[3])
		updated = true
	}

	if m := frameRe.FindStringSubmatch(line); m != nil {
		if frames, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			p.state.FramesProcessed = frames
			updated = true
		}
	}

	if m := speedRe.FindStringSubmatch(line); m != nil {
		if speed, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.state.SpeedMultiplier = speed
			updated = true
		}
	}

	// Percentage is derivable only once the denominator is known; on a
	// transient parse miss it keeps its last value rather than dropping.
	if p.state.TotalDurationSeconds > 0 && p.state.ElapsedSeconds > 0 {
		pct := p.state.ElapsedSeconds / p.state.TotalDurationSeconds * 100
		if pct > 100 {
			pct = 100
		}
		if pct > p.state.Percentage {
			p.state.Percentage = pct
		}
	}

	return p.state, updated
}

// State returns the latest snapshot without consuming input.
func (p *Parser) State() domain.ProgressState {
	return p.state
}

// hmsToSeconds converts matched hour/minute/second tokens to seconds.
// The tokens come from a digits-only regexp, so parse errors collapse
// to zero contributions instead of surfacing.
func hmsToSeconds(h, m, s string) float64 {
	hours, _ := strconv.ParseFloat(h, 64)
	minutes, _ := strconv.ParseFloat(m, 64)
	seconds, _ := strconv.ParseFloat(s, 64)
	return hours*3600 + minutes*60 + seconds
}
