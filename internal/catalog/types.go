// Package catalog loads the API catalog: assembly groups, the APIs they contain
// and the containment relation between them.
package catalog

import "fmt"

// GroupID is the opaque identity of an assembly group.
type GroupID int64

// APIID is the catalog row id of an API.
type APIID int64

// AssemblyGroup is one platform release slice, e.g. ".NET Core/3.0".
type AssemblyGroup struct {
	ID       GroupID
	Name     string
	AreaPath string
}

func (g *AssemblyGroup) String() string {
	return fmt.Sprintf("%s (%s)", g.Name, g.AreaPath)
}

// Kind classifies an API entry.
type Kind string

// Catalog kinds.
const (
	KindNamespace   Kind = "namespace"
	KindClass       Kind = "class"
	KindStruct      Kind = "struct"
	KindInterface   Kind = "interface"
	KindEnum        Kind = "enum"
	KindDelegate    Kind = "delegate"
	KindConstructor Kind = "constructor"
	KindMethod      Kind = "method"
	KindProperty    Kind = "property"
	KindField       Kind = "field"
	KindEvent       Kind = "event"
	KindOperator    Kind = "operator"
)

// IsNamespace reports whether k is a namespace entry.
func (k Kind) IsNamespace() bool {
	return k == KindNamespace
}

// IsType reports whether k is a type entry.
func (k Kind) IsType() bool {
	switch k {
	case KindClass, KindStruct, KindInterface, KindEnum, KindDelegate:
		return true
	}
	return false
}

// IsMember reports whether k is neither a namespace nor a type.
// Kinds unknown to this package are treated as members.
func (k Kind) IsMember() bool {
	return !k.IsNamespace() && !k.IsType()
}

// API is a single addressable entry of the public surface.
type API struct {
	ID        APIID
	ParentID  APIID
	HasParent bool
	Kind      Kind
	Name      string
	// DocID is the documentation id ("T:System.Uri") shared with usage data.
	DocID string

	parent *API
}

// Parent returns the enclosing API, or nil for roots.
func (a *API) Parent() *API {
	return a.parent
}

// Containment is one row of the API to assembly group relation.
type Containment struct {
	API   APIID
	Group GroupID
}
