// Package merge turns accepted pairings into executable tasks and
// drives the external ffmpeg process that performs each merge.
package merge

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"media-merger/internal/domain"
)

// Defaults for task construction, matching the tool's historical
// behavior: streams are copied, audio is re-encoded to AAC, and output
// files sit next to their video named {stem}_merged{ext}.
const (
	DefaultSuffix     = "_merged"
	DefaultVideoCodec = "copy"
	DefaultAudioCodec = "aac"
)

// TaskOptions controls how candidates become tasks.
type TaskOptions struct {
	// OutputDir receives all outputs; empty means next to each video.
	OutputDir  string
	Suffix     string
	Overwrite  bool
	VideoCodec string
	AudioCodec string
}

// BuildTasks derives one task per candidate. It fails the whole batch
// when any resolved output path collides with an input file or with
// another task's output, since running such a batch could clobber
// source material.
func BuildTasks(candidates []domain.MatchCandidate, opts TaskOptions) ([]domain.Task, error) {
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}
	if opts.VideoCodec == "" {
		opts.VideoCodec = DefaultVideoCodec
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = DefaultAudioCodec
	}

	tasks := make([]domain.Task, 0, len(candidates))
	outputs := make(map[string]string, len(candidates))

	for _, candidate := range candidates {
		video := candidate.Video
		dir := opts.OutputDir
		if dir == "" {
			dir = filepath.Dir(video.Path)
		}
		outputPath := filepath.Join(dir, video.Stem+opts.Suffix+video.Extension)

		if outputPath == video.Path || outputPath == candidate.Audio.Path {
			return nil, fmt.Errorf("output path %s collides with an input file", outputPath)
		}
		if prev, exists := outputs[outputPath]; exists {
			return nil, fmt.Errorf("output path %s produced by both %s and %s", outputPath, prev, video.Path)
		}
		outputs[outputPath] = video.Path

		tasks = append(tasks, domain.Task{
			ID:         uuid.NewString(),
			Candidate:  candidate,
			OutputPath: outputPath,
			Overwrite:  opts.Overwrite,
			VideoCodec: opts.VideoCodec,
			AudioCodec: opts.AudioCodec,
		})
	}

	return tasks, nil
}

// BuildArgs constructs the fixed, reproducible ffmpeg argument set for
// one task: both inputs in order, the first video stream of the first
// input mapped against the first audio stream of the second, trimmed to
// the shorter of the two, with the overwrite flag mirroring the task.
func BuildArgs(task domain.Task) []string {
	overwriteFlag := "-n"
	if task.Overwrite {
		overwriteFlag = "-y"
	}

	return []string{
		"-i", task.Candidate.Video.Path,
		"-i", task.Candidate.Audio.Path,
		"-c:v", task.VideoCodec,
		"-c:a", task.AudioCodec,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		overwriteFlag,
		task.OutputPath,
	}
}
