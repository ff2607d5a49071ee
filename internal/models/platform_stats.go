package models

// PlatformStats aggregates completed tasks for one platform key.
// Derived on demand, never persisted.
type PlatformStats struct {
	TotalTasks          int   `json:"total_tasks"`
	CompletedTasks      int   `json:"completed_tasks"`
	FailedTasks         int   `json:"failed_tasks"`
	AvgProcessingTimeMs int64 `json:"avg_processing_time_ms"`
}

// DriverStatus describes the readiness of a registered platform driver
type DriverStatus struct {
	Name       string `json:"name"`
	BrowserSet bool   `json:"browser_set"`
	Ready      bool   `json:"ready"`
	Stub       bool   `json:"stub"`
}
