package postgres

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/flashseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
	"github.com/google/uuid"
)

func qualified(table types.TableID) string {
	if table.Schema == "" {
		return quote(table.Name)
	}
	return quote(table.Schema) + "." + quote(table.Name)
}

// buildInsert renders a parameterised INSERT that returns the output columns.
func (p *Adapter) buildInsert(plan types.InsertPlan) (string, []interface{}, error) {
	if err := common.ValidatePlan(plan); err != nil {
		return "", nil, err
	}

	query := p.qb.Insert(qualified(plan.Table)).
		Columns(common.QuoteAll(quote, plan.ColumnNames())...).
		Values(plan.Values()...)

	if len(plan.Output) > 0 {
		query = query.Suffix("RETURNING " + strings.Join(common.QuoteAll(quote, plan.Output), ", "))
	}

	return query.ToSql()
}

func (p *Adapter) Insert(ctx context.Context, plan types.InsertPlan) (types.Row, error) {
	query, args, err := p.buildInsert(plan)
	if err != nil {
		return nil, err
	}

	if len(plan.Output) == 0 {
		if _, err := p.pool.Exec(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("failed to insert into %s: %w", plan.Table, err)
		}
		return types.Row{}, nil
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", plan.Table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	row := make(types.Row, len(fields))
	if rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read returned row: %w", err)
		}
		for i, fd := range fields {
			row[string(fd.Name)] = normalizeValue(values[i])
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", plan.Table, err)
	}
	return row, nil
}

// normalizeValue turns pgx native values into literals that can be bound
// again when a dependent borrows them.
func normalizeValue(val interface{}) interface{} {
	switch v := val.(type) {
	case [16]byte:
		return uuid.UUID(v).String()
	case driver.Valuer:
		if dv, err := v.Value(); err == nil {
			return dv
		}
	}
	return val
}

func (p *Adapter) Truncate(ctx context.Context, table types.TableID) error {
	if !common.IsValidIdentifier(table.Name) {
		return fmt.Errorf("invalid table name: %s", table.Name)
	}
	_, err := p.pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", qualified(table)))
	return err
}
