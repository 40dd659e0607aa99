package seeder

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/flashseed/internal/database"
	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
	"github.com/fatih/color"
)

// Planner inserts one row per table, populating referenced tables first and
// borrowing their captured values for foreign key columns.
type Planner struct {
	catalog   database.Catalog
	executor  database.Executor
	generator ValueGenerator
	pairs     types.DependencyPairs
	cache     *InsertedRowCache
	keys      *UniqueKeyRegistry
	config    SeedConfig
	stats     Stats
}

func NewPlanner(catalog database.Catalog, executor database.Executor, generator ValueGenerator,
	pairs types.DependencyPairs, config SeedConfig) *Planner {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxUniqueAttempts
	}
	return &Planner{
		catalog:   catalog,
		executor:  executor,
		generator: generator,
		pairs:     pairs,
		cache:     NewInsertedRowCache(),
		keys:      NewUniqueKeyRegistry(),
		config:    config,
	}
}

func (p *Planner) Cache() *InsertedRowCache {
	return p.cache
}

func (p *Planner) Keys() *UniqueKeyRegistry {
	return p.keys
}

func (p *Planner) Stats() Stats {
	return p.stats
}

// callStack is the chain of tables currently being resolved.
type callStack struct {
	members types.TableSet
	path    []types.TableID
}

func newCallStack() *callStack {
	return &callStack{members: types.NewTableSet()}
}

func (s *callStack) push(t types.TableID) {
	s.members.Add(t)
	s.path = append(s.path, t)
}

func (s *callStack) pop(t types.TableID) {
	s.members.Remove(t)
	for i := len(s.path) - 1; i >= 0; i-- {
		if s.path[i] == t {
			s.path = append(s.path[:i], s.path[i+1:]...)
			break
		}
	}
}

// cycleTo returns the path from t's first occurrence back to t.
func (s *callStack) cycleTo(t types.TableID) []types.TableID {
	for i, member := range s.path {
		if member == t {
			cycle := append([]types.TableID{}, s.path[i:]...)
			return append(cycle, t)
		}
	}
	return []types.TableID{t, t}
}

// ResolveAndInsert makes sure every table that table references has been
// handled, then inserts a row into table. Tables in processed are skipped and
// table is added to it once handled. Only context errors are returned; every
// other failure is recorded in Stats and the run continues.
func (p *Planner) ResolveAndInsert(ctx context.Context, table types.TableID, processed types.TableSet) error {
	return p.resolve(ctx, table, processed, newCallStack())
}

func (p *Planner) resolve(ctx context.Context, table types.TableID, processed types.TableSet, stack *callStack) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if processed.Has(table) {
		return nil
	}
	if stack.members.Has(table) {
		cycleErr := &CycleError{Path: stack.cycleTo(table)}
		p.stats.Cycles = append(p.stats.Cycles, cycleErr)
		color.Yellow("  ⚠️  %v", cycleErr)
		return nil
	}

	stack.push(table)
	for _, dep := range p.pairs[table].Sorted() {
		if dep == table {
			continue
		}
		if !p.config.AlwaysDescend && p.cache.Has(dep) {
			continue
		}
		if err := p.resolve(ctx, dep, processed, stack); err != nil {
			return err
		}
	}
	stack.pop(table)

	defer processed.Add(table)

	columns, err := p.catalog.DescribeColumns(ctx, table)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.fail(table, fmt.Errorf("%w: %v", ErrColumnsUnavailable, err))
		return nil
	}

	plan, err := p.BuildPlan(table, columns)
	if err != nil {
		p.fail(table, err)
		return nil
	}
	if len(plan.Columns) == 0 {
		p.stats.Skipped = append(p.stats.Skipped, table)
		color.Yellow("  ⏭️  %s has no columns to supply, skipped", table)
		return nil
	}

	captured, err := p.executor.Insert(ctx, plan)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.fail(table, fmt.Errorf("%w: %v", ErrInsertFailed, err))
		return nil
	}

	p.cache.Append(table, capturedRow(plan, captured))
	p.stats.Inserted++
	color.Green("  ✅ [%d] %s", p.stats.Inserted, table)
	return nil
}

func (p *Planner) fail(table types.TableID, err error) {
	tableErr := &TableError{Table: table, Err: err}
	p.stats.Failures = append(p.stats.Failures, tableErr)
	color.Red("  ❌ %v", tableErr)
}

// capturedRow keeps the output columns of an insert. Values the database did
// not return are taken from the plan; tables without output columns store an
// empty sentinel row.
func capturedRow(plan types.InsertPlan, captured types.Row) types.Row {
	row := types.Row{}
	if len(plan.Output) == 0 {
		return row
	}
	supplied := make(map[string]interface{}, len(plan.Columns))
	for _, c := range plan.Columns {
		supplied[c.Name] = c.Value
	}
	for _, out := range plan.Output {
		if v, ok := captured[out]; ok {
			row[out] = v
		} else if v, ok := supplied[out]; ok {
			row[out] = v
		}
	}
	return row
}

// BuildPlan decides the value of every column in catalog order.
func (p *Planner) BuildPlan(table types.TableID, columns []types.Column) (types.InsertPlan, error) {
	plan := types.InsertPlan{Table: table}

	for _, col := range columns {
		var value interface{}

		switch {
		case col.IsIdentity:
			plan.Output = append(plan.Output, col.Name)
			continue
		case col.IsPrimaryKey && col.ForeignKey == nil:
			v, err := p.generateUnique(col)
			if err != nil {
				return types.InsertPlan{}, err
			}
			value = v
			plan.Output = append(plan.Output, col.Name)
		case col.ForeignKey != nil:
			value = p.cache.FirstRowPolicy(*col.ForeignKey)
		default:
			value = p.generate(col)
		}

		plan.Columns = append(plan.Columns, types.ColumnValue{Name: col.Name, Value: value})
	}

	return plan, nil
}

func (p *Planner) generate(col types.Column) interface{} {
	if g, ok := p.generator.(ColumnGenerator); ok {
		return g.GenerateForColumn(col)
	}
	return p.generator.Generate(col.DataType, col.Size)
}

// generateUnique retries generation until the value is new for the column.
func (p *Planner) generateUnique(col types.Column) (interface{}, error) {
	for attempt := 0; attempt < p.config.MaxAttempts; attempt++ {
		value := p.generator.Generate(col.DataType, col.Size)
		if p.keys.Register(col.Name, value) {
			return value, nil
		}
	}
	return nil, fmt.Errorf("%w: column %s (%s) after %d attempts",
		ErrUniqueKeySpaceExhausted, col.Name, col.DataType, p.config.MaxAttempts)
}
