package common

import (
	"github.com/google/uuid"
)

// NewTaskID generates a unique task ID with the "task_" prefix
func NewTaskID() string {
	return "task_" + uuid.New().String()
}

// NewHistoryID generates a unique rank history entry ID with the "rank_" prefix
func NewHistoryID() string {
	return "rank_" + uuid.New().String()
}
