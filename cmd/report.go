package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pcouderc/worksched/config"
	"github.com/pcouderc/worksched/core/analytics"
	"github.com/pcouderc/worksched/infra/rest"
	"github.com/pcouderc/worksched/pkg/export"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the per-day capacity report for the configured scope",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "csv", "output format: csv or json")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	client, err := rest.NewClient(cfg.Backend)
	if err != nil {
		return fmt.Errorf("backend client: %w", err)
	}
	allocs, err := client.ListAllocations(ctx, cfg.Scope)
	if err != nil {
		return fmt.Errorf("list allocations: %w", err)
	}
	report := analytics.BuildCapacityReport(allocs, cfg.Workspace.HoursPerDay)

	switch reportFormat {
	case "csv":
		return export.WriteCapacityCSV(os.Stdout, report)
	case "json":
		return export.WriteCapacityJSON(os.Stdout, report)
	default:
		return fmt.Errorf("unknown format %s", reportFormat)
	}
}
