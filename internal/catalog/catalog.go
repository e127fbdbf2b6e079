package catalog

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Catalog is the read-only API catalog of one run.
type Catalog struct {
	groups    []*AssemblyGroup
	groupByID map[GroupID]*AssemblyGroup

	apis    []*API
	apiByID map[APIID]*API

	// contained is the API -> groups reverse index.
	contained map[APIID][]GroupID

	names *lru.Cache[APIID, displayName]
}

// New assembles a catalog from its rows. APIs keep the order given; parent
// links and the containment reverse index are resolved once here.
// nameCacheSize <= 0 disables display name memoisation.
func New(groups []AssemblyGroup, apis []API, containment []Containment, nameCacheSize int) (*Catalog, error) {
	c := &Catalog{
		groups:    make([]*AssemblyGroup, 0, len(groups)),
		groupByID: make(map[GroupID]*AssemblyGroup, len(groups)),
		apis:      make([]*API, 0, len(apis)),
		apiByID:   make(map[APIID]*API, len(apis)),
		contained: make(map[APIID][]GroupID),
	}

	for i := range groups {
		g := groups[i]
		if _, dup := c.groupByID[g.ID]; dup {
			return nil, &SchemaError{Table: "assembly groups", Msg: fmt.Sprintf("duplicate group id %d", g.ID)}
		}
		c.groupByID[g.ID] = &g
		c.groups = append(c.groups, &g)
	}

	for i := range apis {
		a := apis[i]
		if _, dup := c.apiByID[a.ID]; dup {
			return nil, &SchemaError{Table: "apis", Msg: fmt.Sprintf("duplicate api id %d", a.ID)}
		}
		c.apiByID[a.ID] = &a
		c.apis = append(c.apis, &a)
	}

	if err := c.linkParents(); err != nil {
		return nil, err
	}
	if err := c.indexContainment(containment); err != nil {
		return nil, err
	}

	if nameCacheSize > 0 {
		cache, err := lru.New[APIID, displayName](nameCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create name cache: %w", err)
		}
		c.names = cache
	}
	return c, nil
}

func (c *Catalog) linkParents() error {
	for _, a := range c.apis {
		if !a.HasParent {
			continue
		}
		p, ok := c.apiByID[a.ParentID]
		if !ok {
			return &SchemaError{Table: "apis", Msg: fmt.Sprintf("api %d references unknown parent %d", a.ID, a.ParentID)}
		}
		a.parent = p
	}

	// Walk each parent chain once; a chain that revisits an API in progress is a cycle.
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[APIID]int, len(c.apis))
	for _, a := range c.apis {
		var chain []*API
		for cur := a; cur != nil && state[cur.ID] != done; cur = cur.parent {
			if state[cur.ID] == visiting {
				return &SchemaError{Table: "apis", Msg: fmt.Sprintf("parent cycle through api %d", cur.ID)}
			}
			state[cur.ID] = visiting
			chain = append(chain, cur)
		}
		for _, v := range chain {
			state[v.ID] = done
		}
	}
	return nil
}

func (c *Catalog) indexContainment(rows []Containment) error {
	seen := make(map[Containment]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := c.apiByID[row.API]; !ok {
			return &SchemaError{Table: "containment", Msg: fmt.Sprintf("row references unknown api %d", row.API)}
		}
		if _, ok := c.groupByID[row.Group]; !ok {
			return &SchemaError{Table: "containment", Msg: fmt.Sprintf("row references unknown group %d", row.Group)}
		}
		if _, dup := seen[row]; dup {
			continue
		}
		seen[row] = struct{}{}
		c.contained[row.API] = append(c.contained[row.API], row.Group)
	}
	return nil
}

// Groups returns all assembly groups in load order.
func (c *Catalog) Groups() []*AssemblyGroup {
	return c.groups
}

// Group returns the group with the given id.
func (c *Catalog) Group(id GroupID) (*AssemblyGroup, bool) {
	g, ok := c.groupByID[id]
	return g, ok
}

// APIs returns every API exactly once, in load order.
func (c *Catalog) APIs() []*API {
	return c.apis
}

// API returns the API with the given id.
func (c *Catalog) API(id APIID) (*API, bool) {
	a, ok := c.apiByID[id]
	return a, ok
}

// ContainedGroups returns the ids of the groups that contain api.
func (c *Catalog) ContainedGroups(api *API) []GroupID {
	return c.contained[api.ID]
}

// GroupByAreaPath resolves an area path to exactly one group. Zero matches
// yield ErrNoSuchGroup and several yield ErrAmbiguousGroup, both as *LookupError.
func (c *Catalog) GroupByAreaPath(areaPath string) (*AssemblyGroup, error) {
	var matches []*AssemblyGroup
	for _, g := range c.groups {
		if g.AreaPath == areaPath {
			matches = append(matches, g)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, &LookupError{AreaPath: areaPath, Err: ErrNoSuchGroup}
	default:
		ids := make([]GroupID, len(matches))
		for i, g := range matches {
			ids[i] = g.ID
		}
		return nil, &LookupError{AreaPath: areaPath, Matches: ids, Err: ErrAmbiguousGroup}
	}
}
