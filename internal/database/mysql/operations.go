package mysql

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/flashseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
)

func (m *Adapter) buildInsert(plan types.InsertPlan) (string, []interface{}, error) {
	if err := common.ValidatePlan(plan); err != nil {
		return "", nil, err
	}

	return m.qb.Insert(quote(plan.Table.Name)).
		Columns(common.QuoteAll(quote, plan.ColumnNames())...).
		Values(plan.Values()...).
		ToSql()
}

// Insert executes the plan. MySQL has no RETURNING, so only the
// auto-increment value is captured here, under the first output column that
// was not supplied by the plan.
func (m *Adapter) Insert(ctx context.Context, plan types.InsertPlan) (types.Row, error) {
	query, args, err := m.buildInsert(plan)
	if err != nil {
		return nil, err
	}

	result, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", plan.Table, err)
	}

	row := types.Row{}
	supplied := make(map[string]bool, len(plan.Columns))
	for _, c := range plan.Columns {
		supplied[c.Name] = true
	}
	for _, out := range plan.Output {
		if supplied[out] {
			continue
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read generated id of %s: %w", plan.Table, err)
		}
		row[out] = id
		break
	}
	return row, nil
}

func (m *Adapter) Truncate(ctx context.Context, table types.TableID) error {
	if !common.IsValidIdentifier(table.Name) {
		return fmt.Errorf("invalid table name: %s", table.Name)
	}
	query, args, err := m.qb.Delete(quote(table.Name)).ToSql()
	if err != nil {
		return err
	}
	_, err = m.db.ExecContext(ctx, query, args...)
	return err
}
