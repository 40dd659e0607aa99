package seeder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/flashseed/internal/database"
	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
	"github.com/fatih/color"
)

// Schema is the dependency structure discovered from the live catalog.
type Schema struct {
	Tables []types.TableID
	Pairs  types.DependencyPairs
	Graph  types.DependencyGraph
	Sort   SortResult
}

// Discover enumerates tables and foreign keys, drops excluded tables and sorts
// the rest. Any catalog failure is fatal.
func Discover(ctx context.Context, catalog database.Catalog, exclude []string) (*Schema, error) {
	tables, err := catalog.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list tables: %v", ErrCatalogUnavailable, err)
	}

	pairs, err := catalog.ListForeignKeyPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list foreign keys: %v", ErrCatalogUnavailable, err)
	}
	if pairs == nil {
		pairs = make(types.DependencyPairs)
	}

	if len(exclude) > 0 {
		tables, pairs = applyExclude(tables, pairs, exclude)
	}

	graph := BuildGraph(tables, pairs)
	return &Schema{
		Tables: tables,
		Pairs:  pairs,
		Graph:  graph,
		Sort:   TopologicalSort(graph),
	}, nil
}

// applyExclude removes tables matching exclude by bare or qualified name, along
// with every pair mentioning them.
func applyExclude(tables []types.TableID, pairs types.DependencyPairs, exclude []string) ([]types.TableID, types.DependencyPairs) {
	names := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		names[strings.TrimSpace(name)] = true
	}
	excluded := func(t types.TableID) bool {
		return names[t.Name] || names[t.String()]
	}

	kept := make([]types.TableID, 0, len(tables))
	for _, t := range tables {
		if !excluded(t) {
			kept = append(kept, t)
		}
	}

	filtered := make(types.DependencyPairs, len(pairs))
	for dependent, referenced := range pairs {
		if excluded(dependent) {
			continue
		}
		for ref := range referenced {
			if !excluded(ref) {
				filtered.Add(dependent, ref)
			}
		}
	}
	return kept, filtered
}

type Seeder struct {
	adapter   database.DatabaseAdapter
	generator ValueGenerator
	config    SeedConfig
}

func New(adapter database.DatabaseAdapter, generator ValueGenerator, cfg SeedConfig) *Seeder {
	if generator == nil {
		generator = NewDataGenerator()
	}
	if cfg.Rounds <= 0 {
		cfg.Rounds = DefaultRounds
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxUniqueAttempts
	}
	return &Seeder{
		adapter:   adapter,
		generator: generator,
		config:    cfg,
	}
}

// Seed inserts cfg.Rounds rows into every orderable table. It returns an error
// only when the catalog cannot be read, truncation fails or ctx is done.
func (s *Seeder) Seed(ctx context.Context) (*Result, error) {
	start := time.Now()
	color.Cyan("🌱 Starting database seeding...")

	schema, err := Discover(ctx, s.adapter, s.config.Exclude)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Order:    schema.Sort.Order,
		Excluded: schema.Sort.Excluded,
		Cycles:   schema.Sort.Cycles,
	}

	if len(schema.Tables) == 0 {
		color.Yellow("⚠️  No tables found in schema")
		result.Cache = NewInsertedRowCache()
		return result, nil
	}

	color.Green("📊 Found %d tables", len(schema.Tables))
	color.Cyan("📋 Insertion order: %s", joinTables(schema.Sort.Order, " → "))
	for _, cycle := range schema.Sort.Cycles {
		color.Yellow("⚠️  %v", &CycleError{Path: cycle})
	}
	if len(schema.Sort.Excluded) > 0 {
		color.Yellow("⚠️  Excluded from order: %s", joinTables(schema.Sort.Excluded, ", "))
	}

	var executor database.Executor = s.adapter
	if s.config.DryRun {
		color.Cyan("📝 Dry run, statements are printed and not executed")
		executor = NewPlanPrinter(color.Output)
	} else if s.config.Truncate {
		if err := s.truncate(ctx, schema.Sort.Order); err != nil {
			return nil, err
		}
	}

	planner := NewPlanner(s.adapter, executor, s.generator, schema.Pairs, s.config)
	for round := 1; round <= s.config.Rounds; round++ {
		if s.config.Rounds > 1 {
			color.Cyan("🔁 Round %d/%d", round, s.config.Rounds)
		}
		processed := types.NewTableSet()
		for _, table := range schema.Sort.Order {
			if err := planner.ResolveAndInsert(ctx, table, processed); err != nil {
				return nil, err
			}
		}
	}

	result.Stats = planner.Stats()
	result.Cache = planner.Cache()
	printSummary(result, time.Since(start))
	return result, nil
}

// truncate clears tables dependents first.
func (s *Seeder) truncate(ctx context.Context, order []types.TableID) error {
	color.Yellow("🗑️  Truncating %d tables...", len(order))
	for i := len(order) - 1; i >= 0; i-- {
		if err := s.adapter.Truncate(ctx, order[i]); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", order[i], err)
		}
	}
	return nil
}

func printSummary(result *Result, elapsed time.Duration) {
	stats := result.Stats
	if len(stats.Failures) == 0 {
		color.Green("\n✅ Database seeding completed: %d rows inserted in %s", stats.Inserted, elapsed.Round(time.Millisecond))
	} else {
		color.Yellow("\n⚠️  Database seeding completed with %d failed tables: %d rows inserted in %s",
			len(stats.Failures), stats.Inserted, elapsed.Round(time.Millisecond))
	}
	if len(stats.Skipped) > 0 {
		color.Yellow("   Skipped: %s", joinTables(stats.Skipped, ", "))
	}
	if n := len(result.Excluded); n > 0 {
		color.Yellow("   Cyclic tables excluded from order: %d", n)
	}
	if n := len(stats.Cycles); n > 0 {
		color.Yellow("   Cycles broken while resolving: %d", n)
	}
}

func joinTables(tables []types.TableID, sep string) string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.String()
	}
	return strings.Join(names, sep)
}
