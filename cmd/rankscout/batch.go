package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/ternarybob/rankscout/internal/common"
	"github.com/ternarybob/rankscout/internal/models"
	"github.com/ternarybob/rankscout/internal/services/identifiers"
)

var (
	batchConcurrency int
	batchJSON        bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <tasks.toml>",
	Short: "Run every task in a TOML task file",
	Long: "Runs the [[tasks]] of a TOML file concurrently, one browsing context per task,\n" +
		"and prints each result followed by per-platform statistics.",
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.IntVar(&batchConcurrency, "concurrency", 0, "Tasks crawled in parallel (overrides config)")
	f.BoolVar(&batchJSON, "json", false, "Print completed tasks and statistics as JSON")
}

// taskFile is the layout of a batch task file
type taskFile struct {
	Tasks []models.Task `toml:"tasks"`
}

// loadTaskFile reads tasks, assigning missing IDs and detecting missing platforms
func loadTaskFile(path string) ([]models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file %s: %w", path, err)
	}

	var file taskFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse task file %s: %w", path, err)
	}

	if len(file.Tasks) == 0 {
		return nil, fmt.Errorf("task file %s contains no [[tasks]]", path)
	}

	extractor := identifiers.NewProductExtractor()
	for i := range file.Tasks {
		task := &file.Tasks[i]
		if strings.TrimSpace(task.ID) == "" {
			task.ID = common.NewTaskID()
		}
		if task.PlatformKey == "" {
			if platform, ok := extractor.DetectPlatform(task.TargetURL); ok {
				task.PlatformKey = platform
			}
		}
	}

	return file.Tasks, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	tasks, err := loadTaskFile(args[0])
	if err != nil {
		return err
	}

	if !batchJSON {
		common.PrintBanner(config, logger)
	}

	logger.Info().
		Str("file", args[0]).
		Int("tasks", len(tasks)).
		Int("concurrency", config.Batch.Concurrency).
		Msg("Starting batch")

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	e, err := startEngine(ctx, config, logger)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	completed := e.coordinator.ProcessBatch(ctx, tasks, config.Batch.Concurrency)
	for i := range completed {
		e.record(ctx, &completed[i].Task, completed[i].Result)
	}

	stats := e.coordinator.GetStats(completed)

	out := cmd.OutOrStdout()
	if batchJSON {
		return printJSON(out, struct {
			Tasks []models.CompletedTask          `json:"tasks"`
			Stats map[string]models.PlatformStats `json:"stats"`
		}{completed, stats})
	}

	for i := range completed {
		entry := &completed[i]
		fmt.Fprintf(out, "\n[%d/%d] %s\n", i+1, len(completed), entry.Task.ID)
		printResult(out, &entry.Task, entry.Result)
		if entry.Result == nil && entry.Error != "" {
			fmt.Fprintf(out, "Error:     %s\n", entry.Error)
		}
	}

	fmt.Fprintln(out)
	printStats(out, stats)
	return nil
}
