package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pcouderc/worksched/config"
	"github.com/pcouderc/worksched/infra/rest"
	"github.com/pcouderc/worksched/pkg/export"
)

var conflictsFormat string

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Print the scheduling conflicts for the configured scope",
	RunE:  runConflicts,
}

func init() {
	conflictsCmd.Flags().StringVarP(&conflictsFormat, "format", "f", "csv", "output format: csv or json")
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, args []string) error {
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
	conflicts, err := client.ListConflicts(ctx, cfg.Scope)
	if err != nil {
		return fmt.Errorf("list conflicts: %w", err)
	}

	switch conflictsFormat {
	case "csv":
		return export.WriteConflictsCSV(os.Stdout, conflicts)
	case "json":
		return export.WriteConflictsJSON(os.Stdout, conflicts)
	default:
		return fmt.Errorf("unknown format %s", conflictsFormat)
	}
}
