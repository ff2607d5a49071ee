package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ternarybob/rankscout/internal/models"
)

// printResult writes one human-readable result block
func printResult(out io.Writer, task *models.Task, result *models.RankResult) {
	fmt.Fprintf(out, "Keyword:   %s\n", task.Keyword)
	fmt.Fprintf(out, "Platform:  %s\n", task.PlatformKey)
	fmt.Fprintf(out, "Target:    %s\n", task.TargetURL)

	if result == nil {
		fmt.Fprintf(out, "Result:    no result\n")
		return
	}

	if id := result.ProductID(); id != "" {
		fmt.Fprintf(out, "Product:   %s\n", id)
	}

	switch {
	case result.HasError():
		fmt.Fprintf(out, "Result:    error: %s\n", result.ErrorMessage())
	case result.Found:
		fmt.Fprintf(out, "Result:    rank %d of %d products\n", result.RankValue(), result.TotalProducts)
	default:
		fmt.Fprintf(out, "Result:    not found in %d products\n", result.TotalProducts)
	}

	fmt.Fprintf(out, "Pages:     %d\n", result.PagesScanned)
	fmt.Fprintf(out, "Elapsed:   %dms\n", result.ProcessingTimeMs)
}

// printJSON writes v as indented JSON
func printJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printStats writes per-platform statistics ordered by platform key
func printStats(out io.Writer, stats map[string]models.PlatformStats) {
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(out, "%-10s %6s %10s %7s %10s\n", "PLATFORM", "TOTAL", "COMPLETED", "FAILED", "AVG(ms)")
	for _, key := range keys {
		s := stats[key]
		fmt.Fprintf(out, "%-10s %6d %10d %7d %10d\n", key, s.TotalTasks, s.CompletedTasks, s.FailedTasks, s.AvgProcessingTimeMs)
	}
}
