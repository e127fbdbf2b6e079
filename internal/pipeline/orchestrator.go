// Package pipeline runs the breaking-change report end to end.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/breakingchanges/internal/catalog"
	"github.com/dbsmedya/breakingchanges/internal/config"
	"github.com/dbsmedya/breakingchanges/internal/diff"
	"github.com/dbsmedya/breakingchanges/internal/logger"
	"github.com/dbsmedya/breakingchanges/internal/progress"
	"github.com/dbsmedya/breakingchanges/internal/report"
	"github.com/dbsmedya/breakingchanges/internal/usage"
)

// CatalogSource produces the API catalog. *catalog.Loader implements it.
type CatalogSource interface {
	Load(ctx context.Context, sink progress.Sink) (*catalog.Catalog, error)
}

// RunResult contains statistics and status of one report run.
type RunResult struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration

	Before *catalog.AssemblyGroup
	After  *catalog.AssemblyGroup

	UsageRecords int
	Assemblies   int
	CatalogAPIs  int
	Groups       int

	Diff         diff.Stats
	RemovedAPIs  int
	WithoutUsage int
	Rows         int

	Output       string
	Verification *report.VerifyResult
	Opened       bool
	Success      bool
}

// Orchestrator runs the four stages in order: usage load, catalog load, diff
// and report. Each stage completes before the next begins.
type Orchestrator struct {
	config *config.Config
	source CatalogSource
	sink   progress.Sink
	opener report.Opener
	logger *logger.Logger
}

// NewOrchestrator creates an orchestrator. The progress sink defaults to Nop
// and the opener follows cfg.Report.
func NewOrchestrator(cfg *config.Config, source CatalogSource, log *logger.Logger) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if source == nil {
		return nil, fmt.Errorf("catalog source is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &Orchestrator{
		config: cfg,
		source: source,
		sink:   progress.Nop{},
		opener: report.NewOpener(cfg.Report.Open, cfg.Report.Viewer),
		logger: log,
	}, nil
}

// SetSink replaces the progress sink.
func (o *Orchestrator) SetSink(sink progress.Sink) {
	o.sink = progress.OrNop(sink)
}

// SetOpener replaces the report opener.
func (o *Orchestrator) SetOpener(opener report.Opener) {
	if opener == nil {
		opener = report.NopOpener{}
	}
	o.opener = opener
}

// Execute runs the pipeline. Any load, lookup or write failure aborts the run;
// a report written before a verification failure is left in place.
func (o *Orchestrator) Execute(ctx context.Context) (*RunResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is nil")
	}

	result := &RunResult{
		StartedAt: time.Now(),
		Output:    o.config.Report.Output,
	}
	defer progress.Finish(o.sink)

	o.logger.Infow("Starting breaking change report",
		"before", o.config.Diff.Before,
		"after", o.config.Diff.After,
		"usage", o.config.Usage.Path,
		"output", o.config.Report.Output,
	)

	// Stage 1: usage results
	usageLog := o.logger.WithStage("usage")
	usages, err := usage.LoadFile(o.config.Usage.Path, usage.LoadOptions{Compression: o.config.Usage.Compression}, o.sink)
	if err != nil {
		return nil, err
	}
	result.UsageRecords = len(usages.Usages)
	result.Assemblies = len(usages.Assemblies)
	usageLog.Infow("Usage results loaded", "records", result.UsageRecords, "assemblies", result.Assemblies)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("interrupted after loading usage: %w", err)
	}

	// Stage 2: catalog
	catalogLog := o.logger.WithStage("catalog")
	cat, err := o.source.Load(ctx, o.sink)
	if err != nil {
		return nil, err
	}
	result.CatalogAPIs = len(cat.APIs())
	result.Groups = len(cat.Groups())
	catalogLog.Infow("API catalog loaded", "apis", result.CatalogAPIs, "groups", result.Groups)

	before, err := cat.GroupByAreaPath(o.config.Diff.Before)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve before group: %w", err)
	}
	after, err := cat.GroupByAreaPath(o.config.Diff.After)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve after group: %w", err)
	}
	if before.ID == after.ID {
		return nil, fmt.Errorf("before and after resolve to the same assembly group %s", before)
	}
	result.Before, result.After = before, after
	catalogLog.WithGroup(before.AreaPath).Debugw("Resolved before group", "id", before.ID, "name", before.Name)
	catalogLog.WithGroup(after.AreaPath).Debugw("Resolved after group", "id", after.ID, "name", after.Name)

	// Stage 3: diff
	engine := diff.NewEngine(o.logger.WithStage("diff"))
	removed, err := engine.RemovedContext(ctx, cat, before, after, o.sink)
	if err != nil {
		return nil, err
	}
	result.Diff = engine.Stats()
	result.RemovedAPIs = len(removed)
	for _, api := range removed {
		if _, ok := usages.Lookup(api.DocID); !ok {
			result.WithoutUsage++
		}
	}

	// Stage 4: report
	reportLog := o.logger.WithStage("report")
	o.sink.SetTask("Writing report")
	o.sink.SetDetails(o.config.Report.Output)

	total := int64(len(removed))
	builder := report.NewBuilder(cat, usages).OnAPI(func(done int) {
		o.sink.Report(int64(done), total)
	})
	summary, err := report.WriteFile(o.config.Report.Output, o.config.Report.CRLF, func(write func(report.Row) error) error {
		return builder.Each(removed, write)
	})
	if err != nil {
		return nil, err
	}
	result.Rows = summary.Rows
	reportLog.Infow("Report written", "rows", summary.Rows, "path", o.config.Report.Output)

	verifier := report.NewVerifier(report.VerificationMethod(o.config.Report.Verify), reportLog)
	verification, err := verifier.Verify(o.config.Report.Output, summary)
	result.Verification = verification
	if err != nil {
		return result, fmt.Errorf("report verification failed: %w", err)
	}

	if err := o.opener.Open(ctx, o.config.Report.Output); err != nil {
		reportLog.Warnw("Failed to open report", "error", err)
	} else if _, nop := o.opener.(report.NopOpener); !nop {
		result.Opened = true
	}

	result.Success = true
	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	o.logger.Infow("Breaking change report completed",
		"duration", result.Duration,
		"removed_apis", result.RemovedAPIs,
		"rows", result.Rows,
	)
	return result, nil
}
