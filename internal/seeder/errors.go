package seeder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
)

var (
	// ErrCatalogUnavailable aborts the whole run.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrCycleDetected      = errors.New("cyclic dependency detected")
	ErrInsertFailed       = errors.New("insert failed")
	// ErrColumnsUnavailable fails a single table whose columns could not be read.
	ErrColumnsUnavailable = errors.New("columns unavailable")
	// ErrUniqueKeySpaceExhausted is returned when no unused primary key value
	// could be generated within the configured number of attempts.
	ErrUniqueKeySpaceExhausted = errors.New("unique key space exhausted")
)

// CycleError carries the tables that form a detected cycle.
type CycleError struct {
	Path []types.TableID
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Path))
	for i, t := range e.Path {
		names[i] = t.String()
	}
	return fmt.Sprintf("%s: %s", ErrCycleDetected, strings.Join(names, " → "))
}

func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}

// TableError reports a failure local to one table.
type TableError struct {
	Table types.TableID
	Err   error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("table %s: %v", e.Table, e.Err)
}

func (e *TableError) Unwrap() error {
	return e.Err
}
