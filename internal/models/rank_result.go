package models

import "time"

// RankResult is the outcome of one rank lookup.
//
// A nil TargetProductID means the identifier could not be resolved from the task URL;
// in that case Found is always false and no pages were fetched. Error is only set for
// hard failures. A target that is simply not present within the crawl budgets is
// reported as Found=false with a nil Error.
type RankResult struct {
	Found            bool      `json:"found"`
	Rank             *int      `json:"rank"`
	TotalProducts    int       `json:"total_products"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	TargetProductID  *string   `json:"target_product_id"`
	Error            *string   `json:"error"`
	PagesScanned     int       `json:"pages_scanned"`
	Platform         string    `json:"platform"`
	Keyword          string    `json:"keyword"`
	CheckedAt        time.Time `json:"checked_at"`
}

// NewFailedResult builds a result carrying a hard failure message
func NewFailedResult(task *Task, targetProductID *string, message string) *RankResult {
	return &RankResult{
		Found:           false,
		TargetProductID: targetProductID,
		Error:           &message,
		Platform:        task.PlatformKey,
		Keyword:         task.Keyword,
		CheckedAt:       time.Now(),
	}
}

// HasError reports whether the result carries a hard failure
func (r *RankResult) HasError() bool {
	return r != nil && r.Error != nil
}

// ErrorMessage returns the failure message or an empty string
func (r *RankResult) ErrorMessage() string {
	if r == nil || r.Error == nil {
		return ""
	}
	return *r.Error
}

// RankValue returns the rank or 0 when the target was not found
func (r *RankResult) RankValue() int {
	if r == nil || r.Rank == nil {
		return 0
	}
	return *r.Rank
}

// ProductID returns the resolved target product id or an empty string
func (r *RankResult) ProductID() string {
	if r == nil || r.TargetProductID == nil {
		return ""
	}
	return *r.TargetProductID
}
