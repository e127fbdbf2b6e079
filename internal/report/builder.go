// Package report turns removed APIs into breaking-change report rows and
// writes them as CSV.
package report

import (
	"strings"

	"github.com/dbsmedya/breakingchanges/internal/catalog"
	"github.com/dbsmedya/breakingchanges/internal/usage"
)

// Header is the column header of the report.
var Header = []string{"ID", "Namespace", "Type", "Member", "Package", "Path"}

// Row is one line of the report.
type Row struct {
	ID        string
	Namespace string
	Type      string
	Member    string
	Package   string
	Path      string
}

// lineBreaks folds CR LF and bare CR to LF. A CSV reader folds CR LF inside a
// quoted field and a CRLF writer drops bare CR, so only LF survives a round trip.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Fields returns the row in Header order with line breaks normalised to LF.
func (r Row) Fields() []string {
	fields := []string{r.ID, r.Namespace, r.Type, r.Member, r.Package, r.Path}
	for i, f := range fields {
		if strings.Contains(f, "\r") {
			fields[i] = lineBreaks.Replace(f)
		}
	}
	return fields
}

// Builder joins removed APIs with their usage.
type Builder struct {
	catalog *catalog.Catalog
	usages  *usage.Results
	onAPI   func(done int)
}

// NewBuilder creates a row builder. usages may be nil, in which case no API
// has observed usage.
func NewBuilder(cat *catalog.Catalog, usages *usage.Results) *Builder {
	return &Builder{catalog: cat, usages: usages}
}

// OnAPI registers a callback run after each removed API has been processed,
// with the number of APIs processed so far. It runs for APIs that yield no rows.
func (b *Builder) OnAPI(fn func(done int)) *Builder {
	b.onAPI = fn
	return b
}

// Each calls fn for every row, in the order of removed and then in first-seen
// application order. It stops at the first error returned by fn.
//
// An API without a usage record yields a single row with empty package fields.
// An API with a record yields one row per distinct consuming application.
func (b *Builder) Each(removed []*catalog.API, fn func(Row) error) error {
	for i, api := range removed {
		if err := b.each(api, fn); err != nil {
			return err
		}
		if b.onAPI != nil {
			b.onAPI(i + 1)
		}
	}
	return nil
}

func (b *Builder) each(api *catalog.API, fn func(Row) error) error {
	base := Row{
		ID:        api.DocID,
		Namespace: b.catalog.NamespaceName(api),
		Type:      b.catalog.TypeName(api),
		Member:    b.catalog.MemberName(api),
	}

	u, found := b.lookup(api.DocID)
	if !found {
		return fn(base)
	}

	for _, app := range b.usages.Applications(u) {
		row := base
		row.Package = app.Name()
		row.Path = app.Path()
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// Rows collects all rows for removed.
func (b *Builder) Rows(removed []*catalog.API) ([]Row, error) {
	var rows []Row
	err := b.Each(removed, func(r Row) error {
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (b *Builder) lookup(id string) (*usage.Usage, bool) {
	if b.usages == nil {
		return nil, false
	}
	return b.usages.Lookup(id)
}
