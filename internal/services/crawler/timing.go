package crawler

import "time"

// MeasureTime runs op and reports its wall-clock duration alongside the result
func MeasureTime[T any](op func() (T, error)) (T, time.Duration, error) {
	start := time.Now()
	result, err := op()
	return result, time.Since(start), err
}
