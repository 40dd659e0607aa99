package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/flashseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
)

func (s *Adapter) buildInsert(plan types.InsertPlan) (string, []interface{}, error) {
	if err := common.ValidatePlan(plan); err != nil {
		return "", nil, err
	}

	query := s.qb.Insert(quote(plan.Table.Name)).
		Columns(common.QuoteAll(quote, plan.ColumnNames())...).
		Values(plan.Values()...)

	if len(plan.Output) > 0 {
		query = query.Suffix("RETURNING " + strings.Join(common.QuoteAll(quote, plan.Output), ", "))
	}

	return query.ToSql()
}

func (s *Adapter) Insert(ctx context.Context, plan types.InsertPlan) (types.Row, error) {
	query, args, err := s.buildInsert(plan)
	if err != nil {
		return nil, err
	}

	if len(plan.Output) == 0 {
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("failed to insert into %s: %w", plan.Table, err)
		}
		return types.Row{}, nil
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", plan.Table, err)
	}
	defer rows.Close()

	result, err := common.ScanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", plan.Table, err)
	}
	if len(result) == 0 {
		return types.Row{}, nil
	}
	return result[0], nil
}

func (s *Adapter) Truncate(ctx context.Context, table types.TableID) error {
	if !common.IsValidIdentifier(table.Name) {
		return fmt.Errorf("invalid table name: %s", table.Name)
	}
	query, args, err := s.qb.Delete(quote(table.Name)).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	// sqlite_sequence only exists once an AUTOINCREMENT table was created
	var sequences int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'sqlite_sequence'",
	).Scan(&sequences); err != nil {
		return fmt.Errorf("failed to look up sqlite_sequence: %w", err)
	}
	if sequences == 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = ?", table.Name); err != nil {
		return fmt.Errorf("failed to reset sequence of %s: %w", table.Name, err)
	}
	return nil
}
