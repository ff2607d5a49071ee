package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/rankscout/internal/common"
)

var (
	// Persistent flags
	configFiles  []string // Multiple --config flags supported
	logLevel     string
	maxPages     int
	maxProducts  int
	headful      bool
	storeResults bool
	storePath    string

	// Global state
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:   "rankscout",
	Short: "Find where a product ranks in marketplace keyword searches",
	Long: "RankScout searches a marketplace for a keyword with a real browser and reports\n" +
		"the position of a target product in the organic results.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (can be specified multiple times, later files override earlier ones)")
	f.StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	f.IntVar(&maxPages, "max-pages", 0, "Maximum result pages per task (overrides config)")
	f.IntVar(&maxProducts, "max-products", 0, "Maximum distinct products per task (overrides config)")
	f.BoolVar(&headful, "headful", false, "Show the browser window")
	f.BoolVar(&storeResults, "store", false, "Record results in the rank history store")
	f.StringVar(&storePath, "store-path", "", "Rank history database directory (overrides config)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = common.GetVersion()
}

// loadConfig resolves configuration (defaults -> file1 -> file2 -> ... -> env -> CLI)
// and initializes the logger
func loadConfig(cmd *cobra.Command, args []string) error {
	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("rankscout.toml"); err == nil {
			configFiles = append(configFiles, "rankscout.toml")
		} else if _, err := os.Stat("deployments/local/rankscout.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/rankscout.toml")
		}
	}

	cfg, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	common.ApplyFlagOverrides(cfg, common.FlagOverrides{
		LogLevel:    logLevel,
		MaxPages:    maxPages,
		MaxProducts: maxProducts,
		Concurrency: batchConcurrency,
		Headful:     headful,
		Store:       storeResults,
		StorePath:   storePath,
	})

	if err := cfg.Validate(); err != nil {
		return err
	}

	config = cfg
	logger = common.InitLogger(cfg)

	logger.Debug().
		Strs("config_files", configFiles).
		Str("log_level", cfg.Logging.Level).
		Bool("headless", cfg.Browser.Headless).
		Int("max_pages", cfg.Crawler.MaxPages).
		Int("max_products", cfg.Crawler.MaxProducts).
		Int("concurrency", cfg.Batch.Concurrency).
		Bool("storage_enabled", cfg.Storage.Enabled).
		Msg("Resolved configuration")

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
