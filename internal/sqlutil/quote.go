// Package sqlutil provides SQL dialect helpers for breakingchanges.
package sqlutil

import (
	"regexp"
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavour spoken by the catalog store.
type Dialect int

const (
	// MySQL quotes identifiers with backticks and uses ? placeholders.
	MySQL Dialect = iota
	// Postgres quotes identifiers with double quotes and uses $n placeholders.
	Postgres
)

// DialectFor maps a configured driver name to its dialect.
func DialectFor(driver string) Dialect {
	if driver == "postgres" {
		return Postgres
	}
	return MySQL
}

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "mysql"
}

// QuoteIdentifier quotes an identifier (table name, column name) for the dialect,
// escaping any embedded quote characters by doubling them.
// Example (MySQL): "my_table" -> "`my_table`"
// Example (Postgres): "my_table" -> "\"my_table\""
func (d Dialect) QuoteIdentifier(name string) string {
	q := "`"
	if d == Postgres {
		q = `"`
	}
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// Placeholder returns the bind parameter marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Placeholders returns a comma-separated list of markers for arguments from..from+count-1.
func (d Dialect) Placeholders(from, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = d.Placeholder(from + i)
	}
	return strings.Join(parts, ",")
}

// QuoteIdentifier quotes a MySQL identifier with backticks.
func QuoteIdentifier(name string) string {
	return MySQL.QuoteIdentifier(name)
}

// validIdentifierRegex matches identifier characters we accept from configuration.
// For safety, we restrict to alphanumeric and underscore only.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier checks if a name only contains alphanumeric characters and underscores.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteTableSafe validates and quotes a possibly schema-qualified table name
// ("apis" or "catalog.apis"). Every part must be a valid identifier.
func (d Dialect) QuoteTableSafe(name string) (string, error) {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return "", &InvalidIdentifierError{Name: name}
	}
	for i, part := range parts {
		if !IsValidIdentifier(part) {
			return "", &InvalidIdentifierError{Name: name}
		}
		parts[i] = d.QuoteIdentifier(part)
	}
	return strings.Join(parts, "."), nil
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
