package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
)

const listTablesQuery = `
	SELECT TABLE_NAME
	FROM information_schema.TABLES
	WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE'
	ORDER BY TABLE_NAME
`

const listForeignKeysQuery = `
	SELECT DISTINCT TABLE_NAME, REFERENCED_TABLE_NAME
	FROM information_schema.KEY_COLUMN_USAGE
	WHERE TABLE_SCHEMA = DATABASE()
	  AND REFERENCED_TABLE_SCHEMA = DATABASE()
	  AND REFERENCED_TABLE_NAME IS NOT NULL
`

const describeColumnsQuery = `
	SELECT
		c.COLUMN_NAME,
		c.DATA_TYPE,
		CAST(COALESCE(c.CHARACTER_MAXIMUM_LENGTH, c.NUMERIC_PRECISION, 0) AS SIGNED),
		(c.EXTRA LIKE '%auto_increment%' OR COALESCE(c.GENERATION_EXPRESSION, '') <> ''),
		c.COLUMN_KEY = 'PRI',
		k.REFERENCED_TABLE_NAME,
		k.REFERENCED_COLUMN_NAME
	FROM information_schema.COLUMNS c
	LEFT JOIN information_schema.KEY_COLUMN_USAGE k
		ON k.TABLE_SCHEMA = c.TABLE_SCHEMA
		AND k.TABLE_NAME = c.TABLE_NAME
		AND k.COLUMN_NAME = c.COLUMN_NAME
		AND k.REFERENCED_TABLE_NAME IS NOT NULL
	WHERE c.TABLE_SCHEMA = DATABASE() AND c.TABLE_NAME = ?
	ORDER BY c.ORDINAL_POSITION, k.CONSTRAINT_NAME
`

func (m *Adapter) ListTables(ctx context.Context) ([]types.TableID, error) {
	rows, err := m.db.QueryContext(ctx, listTablesQuery)
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

func (m *Adapter) ListForeignKeyPairs(ctx context.Context) (types.DependencyPairs, error) {
	rows, err := m.db.QueryContext(ctx, listForeignKeysQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys: %w", err)
	}
	defer rows.Close()

	pairs := make(types.DependencyPairs)
	for rows.Next() {
		var dependent, referenced string
		if err := rows.Scan(&dependent, &referenced); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		pairs.Add(types.TableID{Name: dependent}, types.TableID{Name: referenced})
	}
	return pairs, rows.Err()
}

func (m *Adapter) DescribeColumns(ctx context.Context, table types.TableID) ([]types.Column, error) {
	rows, err := m.db.QueryContext(ctx, describeColumnsQuery, table.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	defer rows.Close()

	var columns []types.Column
	seen := make(map[string]bool)
	for rows.Next() {
		var (
			col                 types.Column
			size                int64
			refTable, refColumn sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.DataType, &size, &col.IsIdentity, &col.IsPrimaryKey,
			&refTable, &refColumn); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		// a column in several foreign keys keeps the first one
		if seen[col.Name] {
			continue
		}
		seen[col.Name] = true

		col.Size = int(size)
		if refTable.Valid && refColumn.Valid {
			col.ForeignKey = &types.ForeignKeyRef{
				Table:  types.TableID{Name: refTable.String},
				Column: refColumn.String,
			}
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return columns, nil
}
