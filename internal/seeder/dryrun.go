package seeder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
)

// PlanPrinter is an Executor that writes each plan instead of running it.
// Database generated outputs are stood in for by a per-table sequence so
// dependents still have values to borrow.
type PlanPrinter struct {
	out       io.Writer
	sequences map[types.TableID]int64
}

func NewPlanPrinter(out io.Writer) *PlanPrinter {
	return &PlanPrinter{
		out:       out,
		sequences: make(map[types.TableID]int64),
	}
}

func (p *PlanPrinter) Insert(ctx context.Context, plan types.InsertPlan) (types.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fmt.Fprintln(p.out, FormatPlan(plan))

	supplied := make(map[string]bool, len(plan.Columns))
	for _, c := range plan.Columns {
		supplied[c.Name] = true
	}

	row := types.Row{}
	for _, out := range plan.Output {
		if supplied[out] {
			continue
		}
		p.sequences[plan.Table]++
		row[out] = p.sequences[plan.Table]
	}
	return row, nil
}

// FormatPlan renders a plan as a readable insert statement. Values are shown
// as Go literals and are not escaped for execution.
func FormatPlan(plan types.InsertPlan) string {
	values := make([]string, len(plan.Columns))
	for i, c := range plan.Columns {
		values[i] = formatValue(c.Value)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES (%s)",
		plan.Table, strings.Join(plan.ColumnNames(), ", "), strings.Join(values, ", "))
	if len(plan.Output) > 0 {
		fmt.Fprintf(&sb, " RETURNING %s", strings.Join(plan.Output, ", "))
	}
	sb.WriteString(";")
	return sb.String()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case []byte:
		return fmt.Sprintf("X'%x'", val)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", val)
	}
}
