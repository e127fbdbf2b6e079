package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuchGroup is returned when no assembly group has the requested area path.
	ErrNoSuchGroup = errors.New("no such assembly group")
	// ErrAmbiguousGroup is returned when several assembly groups share an area path.
	ErrAmbiguousGroup = errors.New("ambiguous assembly group")
)

// LookupError describes a failed area path lookup. It unwraps to
// ErrNoSuchGroup or ErrAmbiguousGroup.
type LookupError struct {
	AreaPath string
	Matches  []GroupID
	Err      error
}

func (e *LookupError) Error() string {
	if errors.Is(e.Err, ErrAmbiguousGroup) {
		return fmt.Sprintf("%v: area path %q matches %d groups %v", e.Err, e.AreaPath, len(e.Matches), e.Matches)
	}
	return fmt.Sprintf("%v: area path %q", e.Err, e.AreaPath)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// SchemaError reports catalog rows that do not form a valid catalog.
type SchemaError struct {
	Table string
	Msg   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("catalog schema error in %s: %s", e.Table, e.Msg)
}

// LoadError reports a catalog that could not be read from the store.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("failed to load API catalog: %v", e.Err)
	}
	return fmt.Sprintf("failed to load API catalog table %s: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
