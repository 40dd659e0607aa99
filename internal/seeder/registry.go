package seeder

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
)

// InsertedRowCache keeps the captured output rows of every insert in a run.
// It only grows.
type InsertedRowCache struct {
	rows map[types.TableID][]types.Row
}

func NewInsertedRowCache() *InsertedRowCache {
	return &InsertedRowCache{rows: make(map[types.TableID][]types.Row)}
}

// Append records a captured row. A nil row is stored as an empty sentinel so
// the table still counts as populated.
func (c *InsertedRowCache) Append(table types.TableID, row types.Row) {
	if row == nil {
		row = types.Row{}
	}
	c.rows[table] = append(c.rows[table], row)
}

// First implements the first-row policy: dependents always borrow from the
// earliest row captured for the referenced table.
func (c *InsertedRowCache) First(table types.TableID) (types.Row, bool) {
	rows := c.rows[table]
	if len(rows) == 0 {
		return nil, false
	}
	return rows[0], true
}

// FirstRowPolicy resolves a foreign key value from the referenced table's
// first cached row. It returns nil when nothing can be borrowed.
func (c *InsertedRowCache) FirstRowPolicy(ref types.ForeignKeyRef) interface{} {
	row, ok := c.First(ref.Table)
	if !ok {
		return nil
	}
	return row[ref.Column]
}

func (c *InsertedRowCache) Has(table types.TableID) bool {
	return len(c.rows[table]) > 0
}

func (c *InsertedRowCache) Rows(table types.TableID) []types.Row {
	return c.rows[table]
}

func (c *InsertedRowCache) Len(table types.TableID) int {
	return len(c.rows[table])
}

// Tables returns every table with at least one cached row.
func (c *InsertedRowCache) Tables() []types.TableID {
	tables := make([]types.TableID, 0, len(c.rows))
	for t, rows := range c.rows {
		if len(rows) > 0 {
			tables = append(tables, t)
		}
	}
	return types.SortTables(tables)
}

// UniqueKeyRegistry tracks generated primary key values per column name.
// Values are compared by their printed form.
type UniqueKeyRegistry struct {
	values map[string]map[string]struct{}
}

func NewUniqueKeyRegistry() *UniqueKeyRegistry {
	return &UniqueKeyRegistry{values: make(map[string]map[string]struct{})}
}

func registryKey(value interface{}) string {
	return fmt.Sprintf("%T:%v", value, value)
}

func (r *UniqueKeyRegistry) Contains(column string, value interface{}) bool {
	_, ok := r.values[column][registryKey(value)]
	return ok
}

// Register adds value for column and reports whether it was new.
func (r *UniqueKeyRegistry) Register(column string, value interface{}) bool {
	set, ok := r.values[column]
	if !ok {
		set = make(map[string]struct{})
		r.values[column] = set
	}
	key := registryKey(value)
	if _, exists := set[key]; exists {
		return false
	}
	set[key] = struct{}{}
	return true
}

func (r *UniqueKeyRegistry) Len(column string) int {
	return len(r.values[column])
}
