package models

import "time"

// RankHistoryEntry is one rank observation recorded by the caller after a lookup
type RankHistoryEntry struct {
	ID              string    `json:"id" badgerhold:"key"`
	TaskID          string    `json:"task_id"`
	Keyword         string    `json:"keyword" badgerhold:"index"`
	TargetURL       string    `json:"target_url"`
	Platform        string    `json:"platform" badgerhold:"index"`
	TargetProductID string    `json:"target_product_id"`
	Found           bool      `json:"found"`
	Rank            int       `json:"rank"` // 0 when not found
	TotalProducts   int       `json:"total_products"`
	PagesScanned    int       `json:"pages_scanned"`
	ProcessingMs    int64     `json:"processing_ms"`
	Error           string    `json:"error,omitempty"`
	CheckedAt       time.Time `json:"checked_at"`
}
