// Package diff finds the APIs removed between two assembly groups.
package diff

import (
	"context"
	"fmt"

	"github.com/dbsmedya/breakingchanges/internal/catalog"
	"github.com/dbsmedya/breakingchanges/internal/logger"
	"github.com/dbsmedya/breakingchanges/internal/progress"
)

// Stats summarises one diff pass.
type Stats struct {
	Visited     int
	InBefore    int
	InAfter     int
	Removed     int
	Unreachable int // APIs contained in neither group
}

// Engine computes removed APIs over a catalog.
type Engine struct {
	logger *logger.Logger
	stats  Stats
}

// NewEngine creates a diff engine.
func NewEngine(log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Engine{logger: log}
}

// Removed returns, in catalog order, every API contained in before and not in
// after. Groups are compared by id only.
func (e *Engine) Removed(cat *catalog.Catalog, before, after *catalog.AssemblyGroup, sink progress.Sink) []*catalog.API {
	removed, _ := e.RemovedContext(context.Background(), cat, before, after, sink)
	return removed
}

// RemovedContext is Removed with cancellation checked between APIs.
func (e *Engine) RemovedContext(ctx context.Context, cat *catalog.Catalog, before, after *catalog.AssemblyGroup, sink progress.Sink) ([]*catalog.API, error) {
	sink = progress.OrNop(sink)
	sink.SetTask(fmt.Sprintf("Computing diff between %s and %s", before.Name, after.Name))

	apis := cat.APIs()
	total := int64(len(apis))
	e.stats = Stats{}

	var removed []*catalog.API
	for i, api := range apis {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("diff interrupted: %w", err)
			}
		}

		inBefore, inAfter := false, false
		for _, id := range cat.ContainedGroups(api) {
			switch id {
			case before.ID:
				inBefore = true
			case after.ID:
				inAfter = true
			}
		}

		e.count(inBefore, inAfter)
		if inBefore && !inAfter {
			removed = append(removed, api)
		}
		sink.Report(int64(i+1), total)
	}

	e.logger.Infof("Diff visited %d APIs: %d in %q, %d in %q, %d removed",
		e.stats.Visited, e.stats.InBefore, before.AreaPath, e.stats.InAfter, after.AreaPath, e.stats.Removed)
	return removed, nil
}

func (e *Engine) count(inBefore, inAfter bool) {
	e.stats.Visited++
	if inBefore {
		e.stats.InBefore++
	}
	if inAfter {
		e.stats.InAfter++
	}
	if inBefore && !inAfter {
		e.stats.Removed++
	}
	if !inBefore && !inAfter {
		e.stats.Unreachable++
	}
}

// Stats returns the counters of the last pass.
func (e *Engine) Stats() Stats {
	return e.stats
}
