package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	assert.Equal(t, Postgres, DialectFor("postgres"))
	assert.Equal(t, MySQL, DialectFor("mysql"))
	assert.Equal(t, MySQL, DialectFor(""))
	assert.Equal(t, "postgres", Postgres.String())
	assert.Equal(t, "mysql", MySQL.String())
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		input    string
		expected string
	}{
		{name: "MySQL simple", dialect: MySQL, input: "apis", expected: "`apis`"},
		{name: "MySQL escapes backtick", dialect: MySQL, input: "my`table", expected: "`my``table`"},
		{name: "MySQL empty", dialect: MySQL, input: "", expected: "``"},
		{name: "Postgres simple", dialect: Postgres, input: "apis", expected: `"apis"`},
		{name: "Postgres escapes double quote", dialect: Postgres, input: `my"table`, expected: `"my""table"`},
		{name: "Postgres keeps backtick", dialect: Postgres, input: "my`table", expected: "\"my`table\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dialect.QuoteIdentifier(tt.input))
		})
	}

	assert.Equal(t, "`order_items`", QuoteIdentifier("order_items"))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", MySQL.Placeholder(3))
	assert.Equal(t, "$3", Postgres.Placeholder(3))
	assert.Equal(t, "?,?,?", MySQL.Placeholders(1, 3))
	assert.Equal(t, "$2,$3,$4", Postgres.Placeholders(2, 3))
	assert.Equal(t, "", Postgres.Placeholders(1, 0))
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"apis", "assembly_groups", "Table123", "_x"}
	for _, name := range valid {
		assert.True(t, IsValidIdentifier(name), name)
	}

	invalid := []string{"", "my table", "apis;DROP", "a-b", "a.b", "naïve"}
	for _, name := range invalid {
		assert.False(t, IsValidIdentifier(name), name)
	}
}

func TestQuoteTableSafe(t *testing.T) {
	t.Run("plain table", func(t *testing.T) {
		quoted, err := MySQL.QuoteTableSafe("apis")
		require.NoError(t, err)
		assert.Equal(t, "`apis`", quoted)
	})

	t.Run("schema qualified postgres", func(t *testing.T) {
		quoted, err := Postgres.QuoteTableSafe("catalog.apis")
		require.NoError(t, err)
		assert.Equal(t, `"catalog"."apis"`, quoted)
	})

	t.Run("rejects injection", func(t *testing.T) {
		_, err := MySQL.QuoteTableSafe("apis; DROP TABLE apis")
		require.Error(t, err)

		var identErr *InvalidIdentifierError
		require.ErrorAs(t, err, &identErr)
		assert.Equal(t, "apis; DROP TABLE apis", identErr.Name)
		assert.Contains(t, err.Error(), "invalid identifier")
	})

	t.Run("rejects too many parts", func(t *testing.T) {
		_, err := Postgres.QuoteTableSafe("a.b.c")
		assert.Error(t, err)
	})

	t.Run("rejects empty part", func(t *testing.T) {
		_, err := MySQL.QuoteTableSafe("catalog.")
		assert.Error(t, err)
	})
}
