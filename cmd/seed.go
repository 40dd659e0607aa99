package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lumos-Labs-HQ/flashseed/internal/config"
	"github.com/Lumos-Labs-HQ/flashseed/internal/database"
	"github.com/Lumos-Labs-HQ/flashseed/internal/seeder"
	"github.com/Lumos-Labs-HQ/flashseed/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert synthetic rows into every table",
	Long: `Insert synthetic rows into every table of the connected database.

Tables are processed so that referenced tables are populated before the
tables that depend on them. Foreign key columns borrow values from the first
row inserted into the referenced table. Tables caught in a foreign key cycle
are reported and left out of the order.

Examples:
  flashseed seed
  flashseed seed --rounds 5
  flashseed seed --exclude audit_log,sessions --truncate
  flashseed seed --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cfg.Seed.Truncate && !cfg.Seed.DryRun {
			force, _ := cmd.Flags().GetBool("force")
			if !utils.NewInputUtils().AskConfirmation("⚠️  This will delete every row in the seeded tables. Continue?", force) {
				color.Yellow("Seeding cancelled")
				return nil
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		adapter, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer adapter.Close()

		s := seeder.New(adapter, seeder.NewDataGenerator(), seedConfig(cfg))
		result, err := s.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}

		if len(result.Stats.Failures) > 0 {
			color.Yellow("💡 Run with --exclude to skip tables that cannot be seeded")
		}
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func connect(ctx context.Context, cfg *config.Config) (database.DatabaseAdapter, error) {
	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, err
	}

	adapter := database.NewAdapter(cfg.Database.Provider, cfg.Database.Schemas)
	if err := adapter.Connect(ctx, dbURL); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return adapter, nil
}

func seedConfig(cfg *config.Config) seeder.SeedConfig {
	return seeder.SeedConfig{
		Rounds:        cfg.Seed.Rounds,
		AlwaysDescend: cfg.Seed.AlwaysDescend,
		MaxAttempts:   cfg.Seed.MaxUniqueAttempts,
		Exclude:       cfg.Seed.Exclude,
		Truncate:      cfg.Seed.Truncate,
		DryRun:        cfg.Seed.DryRun,
	}
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().Int("rounds", seeder.DefaultRounds, "Rows to insert per table")
	seedCmd.Flags().Bool("always-descend", true, "Re-walk dependencies even when they already hold rows")
	seedCmd.Flags().Int("max-attempts", seeder.DefaultMaxUniqueAttempts, "Attempts to generate an unused primary key value")
	seedCmd.Flags().StringSlice("exclude", nil, "Tables to leave out (name or schema.name)")
	seedCmd.Flags().Bool("truncate", false, "Delete existing rows before seeding")
	seedCmd.Flags().Bool("dry-run", false, "Print insert statements without executing them")

	viper.BindPFlag("seed.rounds", seedCmd.Flags().Lookup("rounds"))
	viper.BindPFlag("seed.always_descend", seedCmd.Flags().Lookup("always-descend"))
	viper.BindPFlag("seed.max_unique_attempts", seedCmd.Flags().Lookup("max-attempts"))
	viper.BindPFlag("seed.exclude", seedCmd.Flags().Lookup("exclude"))
	viper.BindPFlag("seed.truncate", seedCmd.Flags().Lookup("truncate"))
	viper.BindPFlag("seed.dry_run", seedCmd.Flags().Lookup("dry-run"))
}
