package seeder

import "github.com/Lumos-Labs-HQ/flashseed/internal/types"

const (
	DefaultRounds            = 1
	DefaultMaxUniqueAttempts = 1000
)

type SeedConfig struct {
	Rounds        int      // Ordered passes over every table, one row per table per pass
	AlwaysDescend bool     // Re-walk dependencies even when they already hold rows
	MaxAttempts   int      // Generation attempts for a unique primary key value
	Exclude       []string // Tables left out of the run
	Truncate      bool     // Clear ordered tables before seeding
	DryRun        bool     // Print plans instead of executing them
}

// DefaultSeedConfig returns the configuration used when nothing is set.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Rounds:        DefaultRounds,
		AlwaysDescend: true,
		MaxAttempts:   DefaultMaxUniqueAttempts,
	}
}

// Stats counts what happened during a run.
type Stats struct {
	Inserted int
	Skipped  []types.TableID
	Failures []*TableError
	Cycles   []*CycleError
}

// Result is returned by Seed.
type Result struct {
	Order    []types.TableID
	Excluded []types.TableID
	Cycles   [][]types.TableID
	Stats    Stats
	Cache    *InsertedRowCache
}
