package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lumos-Labs-HQ/flashseed/internal/seeder"
	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var orderFormat string

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Show the insertion order without seeding",
	Long: `Read tables and foreign keys from the database and print the order in
which they would be seeded, the tables excluded because of foreign key
cycles, and the dependency graph.

Examples:
  flashseed order
  flashseed order --format json
  flashseed order --format yaml --exclude audit_log`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		adapter, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer adapter.Close()

		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		if len(exclude) == 0 {
			exclude = cfg.Seed.Exclude
		}

		schema, err := seeder.Discover(ctx, adapter, exclude)
		if err != nil {
			return err
		}
		return writeOrder(cmd.OutOrStdout(), newOrderReport(schema), orderFormat)
	},
}

type graphEdge struct {
	Table      string   `json:"table" yaml:"table"`
	Dependents []string `json:"dependents" yaml:"dependents"`
}

type orderReport struct {
	Order    []string    `json:"order" yaml:"order"`
	Excluded []string    `json:"excluded" yaml:"excluded"`
	Cycles   [][]string  `json:"cycles" yaml:"cycles"`
	Graph    []graphEdge `json:"graph" yaml:"graph"`
}

func newOrderReport(schema *seeder.Schema) orderReport {
	report := orderReport{
		Order:    tableNames(schema.Sort.Order),
		Excluded: tableNames(schema.Sort.Excluded),
		Cycles:   make([][]string, 0, len(schema.Sort.Cycles)),
		Graph:    make([]graphEdge, 0, len(schema.Graph)),
	}
	for _, cycle := range schema.Sort.Cycles {
		report.Cycles = append(report.Cycles, tableNames(cycle))
	}
	for _, node := range schema.Graph.Nodes() {
		report.Graph = append(report.Graph, graphEdge{
			Table:      node.String(),
			Dependents: tableNames(schema.Graph[node].Sorted()),
		})
	}
	return report
}

func tableNames(tables []types.TableID) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.String()
	}
	return names
}

func writeOrder(w io.Writer, report orderReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(report)
	case "text", "":
		printOrderText(w, report)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (use text, json or yaml)", format)
	}
}

func printOrderText(w io.Writer, report orderReport) {
	bold := color.New(color.FgCyan, color.Bold)

	bold.Fprintln(w, "📋 Insertion order:")
	for i, name := range report.Order {
		fmt.Fprintf(w, "   %3d. %s\n", i+1, name)
	}

	if len(report.Excluded) > 0 {
		fmt.Fprintln(w)
		color.New(color.FgYellow, color.Bold).Fprintln(w, "⚠️  Excluded (cyclic):")
		for _, name := range report.Excluded {
			fmt.Fprintf(w, "   - %s\n", name)
		}
		for _, cycle := range report.Cycles {
			fmt.Fprintf(w, "   cycle: %v\n", cycle)
		}
	}

	fmt.Fprintln(w)
	bold.Fprintln(w, "🔗 Dependents:")
	for _, edge := range report.Graph {
		if len(edge.Dependents) == 0 {
			continue
		}
		fmt.Fprintf(w, "   %s ← %v\n", edge.Table, edge.Dependents)
	}
}

func init() {
	rootCmd.AddCommand(orderCmd)

	orderCmd.Flags().StringVar(&orderFormat, "format", "text", "Output format: text, json or yaml")
	orderCmd.Flags().StringSlice("exclude", nil, "Tables to leave out (name or schema.name)")
}
