package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternarybob/rankscout/internal/common"
	"github.com/ternarybob/rankscout/internal/models"
	"github.com/ternarybob/rankscout/internal/services/identifiers"
)

var checkFlags struct {
	keyword  string
	url      string
	platform string
	jsonOut  bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Find the rank of one product for one keyword",
	Long: "Searches the platform for the keyword and reports the organic position of the\n" +
		"product behind --url. The platform is detected from the URL when --platform is omitted.",
	RunE: runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.StringVarP(&checkFlags.keyword, "keyword", "k", "", "Search keyword (required)")
	f.StringVarP(&checkFlags.url, "url", "u", "", "Target product URL (required)")
	f.StringVarP(&checkFlags.platform, "platform", "p", "", "Platform key (coupang, naver, 11st)")
	f.BoolVar(&checkFlags.jsonOut, "json", false, "Print the result as JSON")

	_ = checkCmd.MarkFlagRequired("keyword")
	_ = checkCmd.MarkFlagRequired("url")
}

// buildTask assembles a task, detecting the platform from the URL when not given
func buildTask(keyword, targetURL, platform string) (*models.Task, error) {
	if platform == "" {
		detected, ok := identifiers.NewProductExtractor().DetectPlatform(targetURL)
		if !ok {
			return nil, fmt.Errorf("cannot detect platform from %q, pass --platform", targetURL)
		}
		platform = detected
	}

	return &models.Task{
		ID:          common.NewTaskID(),
		Keyword:     keyword,
		TargetURL:   targetURL,
		PlatformKey: platform,
	}, nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	task, err := buildTask(checkFlags.keyword, checkFlags.url, checkFlags.platform)
	if err != nil {
		return err
	}

	if !checkFlags.jsonOut {
		common.PrintBanner(config, logger)
	}

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	e, err := startEngine(ctx, config, logger)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	result, err := e.coordinator.Process(ctx, task)
	if err != nil {
		return err
	}

	e.record(ctx, task, result)

	out := cmd.OutOrStdout()
	if checkFlags.jsonOut {
		return printJSON(out, result)
	}
	printResult(out, task, result)
	return nil
}
