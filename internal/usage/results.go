package usage

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// Results is the fully materialised usage data set.
type Results struct {
	Assemblies []Assembly `json:"assemblies"`
	Usages     []Usage    `json:"usages"`

	byID map[string]int
}

// Lookup returns the usage record for an API document id.
// A missing record means the API has no observed usage.
func (r *Results) Lookup(id string) (*Usage, bool) {
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return &r.Usages[i], true
}

// Applications flattens the record's data series into data points, maps each
// point to the applications of its assembly and returns them distinct by value,
// in the order they were first seen.
func (r *Results) Applications(u *Usage) []Application {
	if u == nil {
		return nil
	}

	seen := orderedmap.NewOrderedMap[string, Application]()
	for _, ds := range u.DataSeries {
		for _, dp := range ds.Points {
			for _, app := range r.Assemblies[dp.AssemblyIndex].Applications {
				key := app.identity()
				if _, ok := seen.Get(key); !ok {
					seen.Set(key, app)
				}
			}
		}
	}

	apps := make([]Application, 0, seen.Len())
	for el := seen.Front(); el != nil; el = el.Next() {
		apps = append(apps, el.Value)
	}
	return apps
}

// identity renders the metadata as a canonical string so that applications
// with equal metadata map to the same key regardless of map order.
func (a Application) identity() string {
	keys := make([]string, 0, len(a.Metadata))
	for k := range a.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := a.Metadata[k]
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

// index builds the id lookup and checks the record invariants the report relies on.
func (r *Results) index() error {
	r.byID = make(map[string]int, len(r.Usages))
	for i := range r.Usages {
		u := &r.Usages[i]
		if u.ID == "" {
			return &FormatError{Msg: fmt.Sprintf("usage record %d has no id", i)}
		}
		if _, dup := r.byID[u.ID]; dup {
			return &FormatError{Msg: fmt.Sprintf("duplicate usage record for %q", u.ID)}
		}
		r.byID[u.ID] = i

		for _, ds := range u.DataSeries {
			for _, dp := range ds.Points {
				if dp.AssemblyIndex < 0 || dp.AssemblyIndex >= len(r.Assemblies) {
					return &FormatError{Msg: fmt.Sprintf("usage record %q references assembly %d, only %d assemblies loaded",
						u.ID, dp.AssemblyIndex, len(r.Assemblies))}
				}
			}
		}
	}
	return nil
}
