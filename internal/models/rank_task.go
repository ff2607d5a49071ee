package models

// Task is a single rank lookup supplied by an external scheduler.
// It is treated as immutable while it is being processed.
type Task struct {
	ID          string            `json:"id,omitempty" toml:"id"`
	Keyword     string            `json:"keyword" toml:"keyword" validate:"required"`
	TargetURL   string            `json:"target_url" toml:"target_url" validate:"required"`
	PlatformKey string            `json:"platform_key" toml:"platform_key" validate:"required"`
	Options     map[string]string `json:"options,omitempty" toml:"options"` // Opaque platform-specific hints
}

// CandidateProduct is a product identifier scraped from one result page.
// PageRank is the 1-based position inside the page scan that produced it.
type CandidateProduct struct {
	ProductID string `json:"product_id"`
	PageRank  int    `json:"page_rank"`
}

// TaskStatus is the terminal state of a processed task as recorded by the caller
type TaskStatus string

const (
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// CompletedTask pairs a task with the outcome the caller observed.
// Used as input for per-platform statistics.
type CompletedTask struct {
	Task             Task        `json:"task"`
	Status           TaskStatus  `json:"status"`
	ProcessingTimeMs int64       `json:"processing_time_ms"`
	Result           *RankResult `json:"result,omitempty"`
	Error            string      `json:"error,omitempty"`
}
