package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/breakingchanges/internal/database"
	"github.com/dbsmedya/breakingchanges/internal/logger"
	"github.com/dbsmedya/breakingchanges/internal/pipeline"
	"github.com/dbsmedya/breakingchanges/internal/progress"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the breaking change report",
	Long: `Report loads the usage results and the API catalog, computes the APIs
contained in the "before" assembly group but not in the "after" group, and
writes one CSV row per removed API and using package.

Removed APIs nobody is known to use still get a single row with an empty
package.

Example:
  breakingchanges report --config breakingchanges.yaml \
    --before ".NET Core/2.2/Platform Extensions" --after ".NET Core/3.0" \
    --usage NuGet.apiu --output breaking.csv --open`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&beforeArea, "before", "",
		"Override area path of the group APIs are removed from")
	reportCmd.Flags().StringVar(&afterArea, "after", "",
		"Override area path of the group APIs must still be in")
	reportCmd.Flags().StringVarP(&usagePath, "usage", "u", "",
		"Override path to the usage results file")
	reportCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Override path of the CSV report")
	reportCmd.Flags().BoolVar(&openReport, "open", false,
		"Open the report in the system viewer when done")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
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

	ctx, stop := database.WithInterrupt(context.Background(), func(sig os.Signal) {
		log.Warnw("Received signal, aborting report", "signal", sig.String())
	})
	defer stop()

	source := pipeline.NewDatabaseSource(&cfg.Catalog, log)
	orchestrator, err := pipeline.NewOrchestrator(cfg, source, log)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	orchestrator.SetSink(progress.New(cfg.Progress.Mode, cfg.Progress.Interval, os.Stderr))

	result, err := orchestrator.Execute(ctx)
	if err != nil {
		return err
	}

	printRunSummary(result)
	return nil
}

func printRunSummary(r *pipeline.RunResult) {
	fmt.Fprintln(outputWriter)
	printHeader("Breaking Changes: %s -> %s", r.Before.Name, r.After.Name)

	fmt.Fprintln(outputWriter)
	printSection("Inputs")
	printField("Usage records", r.UsageRecords)
	printField("Assemblies", r.Assemblies)
	printField("Catalog APIs", r.CatalogAPIs)
	printField("Groups", r.Groups)

	fmt.Fprintln(outputWriter)
	printSection("Diff")
	printField("Before", fmt.Sprintf("%s (%d APIs)", r.Before.AreaPath, r.Diff.InBefore))
	printField("After", fmt.Sprintf("%s (%d APIs)", r.After.AreaPath, r.Diff.InAfter))
	printField("Removed", r.RemovedAPIs)
	printField("Without usage", r.WithoutUsage)

	fmt.Fprintln(outputWriter)
	printSection("Report")
	printField("Output", r.Output)
	printField("Rows", r.Rows)
	if r.Verification != nil {
		printField("Verification", r.Verification.Method)
	}
	printField("Duration", r.Duration.Round(time.Millisecond))
	if r.Opened {
		printField("Opened", "yes")
	}
}
