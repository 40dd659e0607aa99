package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/flashseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
)

type pragmaColumn struct {
	name     string
	declared string
	pk       int
}

type pragmaForeignKey struct {
	table string
	from  string
	to    sql.NullString
}

func (s *Adapter) ListTables(ctx context.Context) ([]types.TableID, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []types.TableID
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, types.TableID{Name: name})
	}
	return tables, rows.Err()
}

func (s *Adapter) ListForeignKeyPairs(ctx context.Context) (types.DependencyPairs, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	pairs := make(types.DependencyPairs)
	for _, table := range tables {
		fks, err := s.foreignKeys(ctx, table.Name)
		if err != nil {
			return nil, err
		}
		for _, fk := range fks {
			pairs.Add(table, types.TableID{Name: fk.table})
		}
	}
	return pairs, nil
}

func (s *Adapter) DescribeColumns(ctx context.Context, table types.TableID) ([]types.Column, error) {
	cols, err := s.tableInfo(ctx, table.Name)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	fks, err := s.foreignKeys(ctx, table.Name)
	if err != nil {
		return nil, err
	}

	refs := make(map[string]*types.ForeignKeyRef, len(fks))
	for _, fk := range fks {
		if _, ok := refs[fk.from]; ok {
			continue
		}
		refColumn := fk.to.String
		if !fk.to.Valid || refColumn == "" {
			// REFERENCES t without a column list targets t's primary key
			refColumn, err = s.primaryKeyColumn(ctx, fk.table)
			if err != nil {
				return nil, err
			}
		}
		refs[fk.from] = &types.ForeignKeyRef{
			Table:  types.TableID{Name: fk.table},
			Column: refColumn,
		}
	}

	pkCount := 0
	for _, c := range cols {
		if c.pk > 0 {
			pkCount++
		}
	}

	columns := make([]types.Column, 0, len(cols))
	for _, c := range cols {
		declared := strings.TrimSpace(c.declared)
		base := declared
		if idx := strings.Index(base, "("); idx > 0 {
			base = strings.TrimSpace(base[:idx])
		}
		columns = append(columns, types.Column{
			Name:         c.name,
			DataType:     strings.ToLower(base),
			Size:         common.ParseSize(declared),
			IsPrimaryKey: c.pk > 0,
			// a lone INTEGER PRIMARY KEY aliases the rowid
			IsIdentity: c.pk > 0 && pkCount == 1 && strings.EqualFold(base, "INTEGER"),
			ForeignKey: refs[c.name],
		})
	}
	return columns, nil
}

func (s *Adapter) tableInfo(ctx context.Context, table string) ([]pragmaColumn, error) {
	if !common.IsValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quote(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	defer rows.Close()

	var cols []pragmaColumn
	for rows.Next() {
		var (
			cid          int
			col          pragmaColumn
			notNull      int
			defaultValue sql.NullString
		)
		if err := rows.Scan(&cid, &col.name, &col.declared, &notNull, &defaultValue, &col.pk); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (s *Adapter) foreignKeys(ctx context.Context, table string) ([]pragmaForeignKey, error) {
	if !common.IsValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quote(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	var fks []pragmaForeignKey
	for rows.Next() {
		var (
			id, seq                   int
			fk                        pragmaForeignKey
			onUpdate, onDelete, match string
		)
		if err := rows.Scan(&id, &seq, &fk.table, &fk.from, &fk.to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key of %s: %w", table, err)
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func (s *Adapter) primaryKeyColumn(ctx context.Context, table string) (string, error) {
	cols, err := s.tableInfo(ctx, table)
	if err != nil {
		return "", err
	}
	for _, c := range cols {
		if c.pk == 1 {
			return c.name, nil
		}
	}
	return "rowid", nil
}
