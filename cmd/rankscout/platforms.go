package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List registered platform drivers and their budgets",
	Run: func(cmd *cobra.Command, args []string) {
		coordinator := newCoordinator(config, logger)
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%-8s %-7s %5s %8s %11s %12s %7s\n", "PLATFORM", "STATUS", "PAGES", "PRODUCTS", "BASE_DELAY", "NAV_TIMEOUT", "RETRIES")
		for _, status := range coordinator.DriversStatus() {
			driver, ok := coordinator.Driver(status.Name)
			if !ok {
				continue
			}
			cfg := driver.GetConfig()
			fmt.Fprintf(out, "%-8s %-7s %5d %8d %11s %12s %7d\n",
				status.Name, cfg.Status, cfg.MaxPages, cfg.MaxProducts, cfg.BaseDelay, cfg.NavigationTimeout, cfg.RetryAttempts)
		}
	},
}
