package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/breakingchanges/internal/catalog"
	"github.com/dbsmedya/breakingchanges/internal/config"
	"github.com/dbsmedya/breakingchanges/internal/database"
	"github.com/dbsmedya/breakingchanges/internal/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and run preflight checks",
	Long: `Validate checks the configuration file and runs preflight checks
against the API catalog before a report is attempted.

Checks performed:
  - Configuration syntax and required fields
  - Catalog database connectivity
  - Catalog table and column existence
  - Before and after area paths each name exactly one assembly group
  - Usage results file exists

Example:
  breakingchanges validate --config breakingchanges.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting validation checks...")

	printHeader("Configuration Validation")
	printField("Config file", configFile)
	printField("Catalog", fmt.Sprintf("%s://%s:%d/%s", cfg.Catalog.Driver, cfg.Catalog.Host, cfg.Catalog.Port, cfg.Catalog.Database))
	fmt.Fprintln(outputWriter)

	hasErrors := false

	if err := checkUsageFile(cfg.Usage.Path); err != nil {
		printFail("Usage results: %v", err)
		hasErrors = true
	} else {
		printOK("Usage results: %s", cfg.Usage.Path)
	}

	ctx, stop := database.WithInterrupt(context.Background(), func(sig os.Signal) {
		log.Warnw("Received signal, aborting validation", "signal", sig.String())
	})
	defer stop()

	dbManager := database.NewManager(&cfg.Catalog.DatabaseConfig)
	if err := dbManager.Connect(ctx); err != nil {
		printFail("Catalog connection: %v", err)
		return fmt.Errorf("validation failed")
	}
	defer dbManager.Close()

	if err := dbManager.Ping(ctx); err != nil {
		printFail("Catalog connection: %v", err)
		return fmt.Errorf("validation failed")
	}
	printOK("Catalog connection")

	checker, err := catalog.NewPreflightChecker(dbManager.Catalog, dbManager.Dialect(), &cfg.Catalog, log)
	if err != nil {
		return fmt.Errorf("failed to create preflight checker: %w", err)
	}

	stats, err := checker.RunAllChecks(ctx)
	if err != nil {
		printFail("Preflight checks: %v", err)
		return fmt.Errorf("validation failed")
	}
	printOK("Catalog schema")

	fmt.Fprintln(outputWriter)
	printSection("Catalog Tables")
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{s.Table, fmt.Sprintf("%d", s.Rows)})
	}
	printTable([]string{"Table", "Rows"}, rows)
	fmt.Fprintln(outputWriter)

	loader, err := catalog.NewLoader(dbManager.Catalog, dbManager.Dialect(), &cfg.Catalog, log)
	if err != nil {
		return err
	}
	groups, err := loader.LoadGroups(ctx)
	if err != nil {
		printFail("Assembly groups: %v", err)
		return fmt.Errorf("validation failed")
	}

	failures := resolveDiffGroups(groups, cfg.Diff)
	for _, failure := range failures {
		printFail("%s", failure)
		hasErrors = true
	}
	if len(failures) == 0 {
		printOK("Before: %s", cfg.Diff.Before)
		printOK("After: %s", cfg.Diff.After)
	}

	fmt.Fprintln(outputWriter)
	if hasErrors {
		return fmt.Errorf("validation failed")
	}

	fmt.Fprintln(outputWriter, "=== Validation Complete ===")
	return nil
}

// checkUsageFile reports whether path names a readable regular file.
func checkUsageFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// resolveDiffGroups resolves both area paths against groups and returns one
// message per path that does not name exactly one group.
func resolveDiffGroups(groups []catalog.AssemblyGroup, diff config.DiffConfig) []string {
	cat, err := catalog.New(groups, nil, nil, 0)
	if err != nil {
		return []string{fmt.Sprintf("Assembly groups: %v", err)}
	}

	var failures []string
	for _, side := range []struct{ label, path string }{
		{"Before", diff.Before},
		{"After", diff.After},
	} {
		if _, err := cat.GroupByAreaPath(side.path); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", side.label, err))
		}
	}
	return failures
}
