package domain

// MediaKind partitions discovered files into video and audio tracks.
type MediaKind string

const (
	MediaKindVideo MediaKind = "video"
	MediaKindAudio MediaKind = "audio"
)

// MediaFile is an immutable descriptor for one discovered media file.
// Path is the unique key; Stem is the filename without extension and is
// the join key for matching.
type MediaFile struct {
	Path      string    `json:"path"`
	Stem      string    `json:"stem"`
	Extension string    `json:"extension"`
	Kind      MediaKind `json:"kind"`
}

// MatchType distinguishes byte-identical stem pairings from pairings
// accepted through the similarity threshold.
type MatchType string

const (
	MatchTypeExact MatchType = "exact"
	MatchTypeFuzzy MatchType = "fuzzy"
)

// MatchCandidate is one proposed video/audio pairing. Score is 1.0 for
// exact matches and the similarity ratio for fuzzy ones.
type MatchCandidate struct {
	Video     MediaFile `json:"video"`
	Audio     MediaFile `json:"audio"`
	MatchType MatchType `json:"matchType"`
	Score     float64   `json:"score"`
}

// Task is one accepted pairing plus everything needed to invoke the
// external merge: the resolved output path and codec parameters.
type Task struct {
	ID         string         `json:"id"`
	Candidate  MatchCandidate `json:"candidate"`
	OutputPath string         `json:"outputPath"`
	Overwrite  bool           `json:"overwrite"`
	VideoCodec string         `json:"videoCodec"`
	AudioCodec string         `json:"audioCodec"`
}

// OutcomeStatus is the terminal state of one merge task.
type OutcomeStatus string

const (
	OutcomeSuccess       OutcomeStatus = "success"
	OutcomeSkippedExists OutcomeStatus = "skipped_exists"
	OutcomeToolError     OutcomeStatus = "tool_error"
	OutcomeTimeout       OutcomeStatus = "timeout"
	OutcomeCancelled     OutcomeStatus = "cancelled"
)

// TaskOutcome records the terminal result of one task, exactly once.
// Detail carries the output path on success and a bounded diagnostic
// otherwise.
type TaskOutcome struct {
	Task   Task          `json:"task"`
	Status OutcomeStatus `json:"status"`
	Detail string        `json:"detail,omitempty"`
}

// ProgressState is a snapshot of one running merge derived from the
// tool's status stream. Percentage never regresses within a task.
type ProgressState struct {
	TotalDurationSeconds float64 `json:"totalDurationSeconds"`
	ElapsedSeconds       float64 `json:"elapsedSeconds"`
	Percentage           float64 `json:"percentage"`
	FramesProcessed      int64   `json:"framesProcessed"`
	SpeedMultiplier      float64 `json:"speedMultiplier"`
}

// BatchSummary is the final tally reported after a batch completes.
type BatchSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// JobStatus tracks the lifecycle of a single merge batch.
type JobStatus string

const (
	JobStatusIdle      JobStatus = "idle"
	JobStatusScanning  JobStatus = "scanning"
	JobStatusMatching  JobStatus = "matching"
	JobStatusMerging   JobStatus = "merging"
	JobStatusDone      JobStatus = "done"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job stores the current batch identity and lifecycle status.
type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
}

// Settings contains user-selectable runtime configuration persisted
// between launches.
type Settings struct {
	FFmpegPath   string  `json:"ffmpegPath"`
	SourceDir    string  `json:"sourceDir"`
	OutputDir    string  `json:"outputDir"`
	OutputSuffix string  `json:"outputSuffix"`
	Threshold    float64 `json:"threshold"`
	MaxWorkers   int     `json:"maxWorkers"`
	Overwrite    bool    `json:"overwrite"`
	Recursive    bool    `json:"recursive"`
}
