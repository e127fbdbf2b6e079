package catalog

import "strings"

type displayName struct {
	namespace string
	typ       string
	member    string
}

// NamespaceName returns the name of the nearest namespace at or above api.
func (c *Catalog) NamespaceName(api *API) string {
	return c.displayName(api).namespace
}

// TypeName returns the enclosing type chain of api joined with ".", including
// api itself when it is a type. Namespaces yield "".
func (c *Catalog) TypeName(api *API) string {
	return c.displayName(api).typ
}

// MemberName returns the name of api when it is a member, "" otherwise.
func (c *Catalog) MemberName(api *API) string {
	return c.displayName(api).member
}

func (c *Catalog) displayName(api *API) displayName {
	if c.names != nil {
		if n, ok := c.names.Get(api.ID); ok {
			return n
		}
	}

	var n displayName
	if api.Kind.IsMember() {
		n.member = api.Name
	}

	var types []string
	for cur := api; cur != nil; cur = cur.parent {
		if cur.Kind.IsNamespace() {
			n.namespace = cur.Name
			break
		}
		if cur.Kind.IsType() {
			types = append(types, cur.Name)
		}
	}
	for i, j := 0, len(types)-1; i < j; i, j = i+1, j-1 {
		types[i], types[j] = types[j], types[i]
	}
	n.typ = strings.Join(types, ".")

	if c.names != nil {
		c.names.Add(api.ID, n)
	}
	return n
}

// NameCacheStats returns the number of memoised display names.
func (c *Catalog) NameCacheStats() int {
	if c.names == nil {
		return 0
	}
	return c.names.Len()
}
