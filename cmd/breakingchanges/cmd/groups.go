package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/breakingchanges/internal/catalog"
	"github.com/dbsmedya/breakingchanges/internal/database"
	"github.com/dbsmedya/breakingchanges/internal/logger"
)

var groupsFilter string

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List assembly groups in the API catalog",
	Long: `Groups lists the assembly groups of the API catalog with their area
paths. Use it to find the exact --before and --after values.

Example:
  breakingchanges groups --config breakingchanges.yaml --filter "core/3"`,
	RunE: runGroups,
}

func init() {
	groupsCmd.Flags().StringVarP(&groupsFilter, "filter", "f", "",
		"Only list groups whose area path or name contains this text (case-insensitive)")

	rootCmd.AddCommand(groupsCmd)
}

func runGroups(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateCatalog(); err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := database.WithInterrupt(context.Background(), func(sig os.Signal) {
		log.Warnw("Received signal, aborting group listing", "signal", sig.String())
	})
	defer stop()

	dbManager := database.NewManager(&cfg.Catalog.DatabaseConfig)
	if err := dbManager.Connect(ctx); err != nil {
		return err
	}
	defer dbManager.Close()

	loader, err := catalog.NewLoader(dbManager.Catalog, dbManager.Dialect(), &cfg.Catalog, log)
	if err != nil {
		return err
	}

	groups, err := loader.FindGroups(ctx, groupsFilter)
	if err != nil {
		return err
	}

	printGroups(groups)
	return nil
}

func printGroups(groups []catalog.AssemblyGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(outputWriter, "No assembly groups found")
		return
	}

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{strconv.FormatInt(int64(g.ID), 10), g.AreaPath, g.Name})
	}
	printTable([]string{"ID", "Area Path", "Name"}, rows)
	fmt.Fprintf(outputWriter, "\n%d group(s)\n", len(groups))
}
