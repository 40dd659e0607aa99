package types

import (
	"sort"
	"strings"
)

// TableID identifies a table, optionally qualified by its schema.
type TableID struct {
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
	Name   string `json:"name" yaml:"name"`
}

// ParseTableID splits "schema.table" into its parts. A bare name has no schema.
func ParseTableID(s string) TableID {
	if idx := strings.LastIndex(s, "."); idx > 0 {
		return TableID{Schema: s[:idx], Name: s[idx+1:]}
	}
	return TableID{Name: s}
}

func (t TableID) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// TableSet is an unordered set of tables. Sorted gives its enumeration order.
type TableSet map[TableID]struct{}

func NewTableSet(tables ...TableID) TableSet {
	s := make(TableSet, len(tables))
	for _, t := range tables {
		s.Add(t)
	}
	return s
}

func (s TableSet) Add(t TableID) {
	s[t] = struct{}{}
}

func (s TableSet) Remove(t TableID) {
	delete(s, t)
}

func (s TableSet) Has(t TableID) bool {
	_, ok := s[t]
	return ok
}

// Sorted returns the members ordered by their qualified name.
func (s TableSet) Sorted() []TableID {
	return SortTables(s.slice())
}

func (s TableSet) slice() []TableID {
	out := make([]TableID, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	return out
}

// SortTables sorts in place by qualified name and returns the slice.
func SortTables(tables []TableID) []TableID {
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].String() < tables[j].String()
	})
	return tables
}

// DependencyPairs maps a table to the tables it references through foreign keys.
type DependencyPairs map[TableID]TableSet

// Add records that dependent references referenced.
func (p DependencyPairs) Add(dependent, referenced TableID) {
	set, ok := p[dependent]
	if !ok {
		set = NewTableSet()
		p[dependent] = set
	}
	set.Add(referenced)
}

// DependencyGraph maps a table to the tables that depend on it.
type DependencyGraph map[TableID]TableSet

// Nodes returns every node of the graph in enumeration order.
func (g DependencyGraph) Nodes() []TableID {
	nodes := make([]TableID, 0, len(g))
	for t := range g {
		nodes = append(nodes, t)
	}
	return SortTables(nodes)
}

// ForeignKeyRef points a column at a column of another table.
type ForeignKeyRef struct {
	Table  TableID
	Column string
}

// Column describes a single column as reported by the live catalog.
type Column struct {
	Name         string
	DataType     string
	TypeSchema   string
	Size         int // max length or precision, 0 when unconstrained
	IsIdentity   bool
	IsPrimaryKey bool
	ForeignKey   *ForeignKeyRef
}

// Row is a captured output row keyed by column name.
type Row map[string]interface{}

// ColumnValue is one entry of an insert plan. A nil Value is written as NULL.
type ColumnValue struct {
	Name  string
	Value interface{}
}

// InsertPlan is a single-row insert for one table.
type InsertPlan struct {
	Table   TableID
	Columns []ColumnValue
	Output  []string
}

func (p InsertPlan) ColumnNames() []string {
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return names
}

func (p InsertPlan) Values() []interface{} {
	values := make([]interface{}, len(p.Columns))
	for i, c := range p.Columns {
		values[i] = c.Value
	}
	return values
}
