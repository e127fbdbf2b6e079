package diff

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/breakingchanges/internal/catalog"
	"github.com/dbsmedya/breakingchanges/internal/logger"
)

type countingSink struct {
	task    string
	reports int
	last    [2]int64
}

func (c *countingSink) SetTask(task string) { c.task = task }
func (c *countingSink) SetDetails(string)   {}
func (c *countingSink) Report(done, total int64) {
	c.reports++
	c.last = [2]int64{done, total}
}

func docIDs(apis []*catalog.API) []string {
	ids := make([]string, len(apis))
	for i, a := range apis {
		ids[i] = a.DocID
	}
	return ids
}

func TestRemovedScenario(t *testing.T) {
	groups := []catalog.AssemblyGroup{
		{ID: 1, Name: "Platform 1", AreaPath: "P1"},
		{ID: 2, Name: "Platform 2", AreaPath: "P2"},
	}
	apis := []catalog.API{
		{ID: 1, Kind: catalog.KindClass, Name: "A", DocID: "T:A"},
		{ID: 2, Kind: catalog.KindClass, Name: "B", DocID: "T:B"},
		{ID: 3, Kind: catalog.KindClass, Name: "C", DocID: "T:C"},
		{ID: 4, Kind: catalog.KindClass, Name: "D", DocID: "T:D"},
	}
	containment := []catalog.Containment{
		{API: 1, Group: 1},
		{API: 2, Group: 1}, {API: 2, Group: 2},
		{API: 3, Group: 1},
		{API: 4, Group: 2},
	}

	cat, err := catalog.New(groups, apis, containment, 0)
	require.NoError(t, err)

	before, err := cat.GroupByAreaPath("P1")
	require.NoError(t, err)
	after, err := cat.GroupByAreaPath("P2")
	require.NoError(t, err)

	sink := &countingSink{}
	engine := NewEngine(logger.NewNop())
	removed := engine.Removed(cat, before, after, sink)

	assert.Equal(t, []string{"T:A", "T:C"}, docIDs(removed))
	assert.Equal(t, "Computing diff between Platform 1 and Platform 2", sink.task)
	assert.Equal(t, 4, sink.reports)
	assert.Equal(t, [2]int64{4, 4}, sink.last)

	stats := engine.Stats()
	assert.Equal(t, Stats{Visited: 4, InBefore: 3, InAfter: 2, Removed: 2}, stats)
}

func TestRemovedComparesGroupIdentity(t *testing.T) {
	// Two groups share a name; only ids decide membership
	groups := []catalog.AssemblyGroup{
		{ID: 1, Name: "Core", AreaPath: "Core/1"},
		{ID: 2, Name: "Core", AreaPath: "Core/2"},
	}
	apis := []catalog.API{{ID: 1, DocID: "T:X"}}
	cat, err := catalog.New(groups, apis, []catalog.Containment{{API: 1, Group: 2}}, 0)
	require.NoError(t, err)

	g1, _ := cat.Group(1)
	g2, _ := cat.Group(2)

	engine := NewEngine(nil)
	assert.Empty(t, engine.Removed(cat, g1, g2, nil))
	assert.Equal(t, []string{"T:X"}, docIDs(engine.Removed(cat, g2, g1, nil)))
}

func TestRemovedMembershipProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		const groupCount = 4
		groups := make([]catalog.AssemblyGroup, groupCount)
		for i := range groups {
			groups[i] = catalog.AssemblyGroup{ID: catalog.GroupID(100 + i), AreaPath: string(rune('A' + i))}
		}

		apiCount := 1 + rng.Intn(200)
		apis := make([]catalog.API, apiCount)
		membership := make(map[catalog.APIID]map[catalog.GroupID]bool, apiCount)
		var containment []catalog.Containment
		for i := range apis {
			id := catalog.APIID(i + 1)
			apis[i] = catalog.API{ID: id, Kind: catalog.KindMethod}
			membership[id] = map[catalog.GroupID]bool{}
			for _, g := range groups {
				if rng.Intn(2) == 0 {
					containment = append(containment, catalog.Containment{API: id, Group: g.ID})
					membership[id][g.ID] = true
				}
			}
		}

		cat, err := catalog.New(groups, apis, containment, 0)
		require.NoError(t, err)

		before, _ := cat.Group(groups[rng.Intn(groupCount)].ID)
		after := before
		for after.ID == before.ID {
			after, _ = cat.Group(groups[rng.Intn(groupCount)].ID)
		}

		removed := NewEngine(logger.NewNop()).Removed(cat, before, after, nil)

		got := make(map[catalog.APIID]bool, len(removed))
		prev := catalog.APIID(0)
		for _, api := range removed {
			assert.Greater(t, api.ID, prev, "catalog order")
			prev = api.ID
			got[api.ID] = true
		}
		for _, api := range cat.APIs() {
			want := membership[api.ID][before.ID] && !membership[api.ID][after.ID]
			assert.Equal(t, want, got[api.ID], "round %d api %d", round, api.ID)
		}
	}
}

func TestRemovedContextCancelled(t *testing.T) {
	groups := []catalog.AssemblyGroup{{ID: 1, AreaPath: "P1"}, {ID: 2, AreaPath: "P2"}}
	cat, err := catalog.New(groups, []catalog.API{{ID: 1}}, nil, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g1, _ := cat.Group(1)
	g2, _ := cat.Group(2)
	_, err = NewEngine(logger.NewNop()).RemovedContext(ctx, cat, g1, g2, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
