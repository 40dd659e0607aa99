package postgres

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
)

const listTablesQuery = `
	SELECT table_schema::text, table_name::text
	FROM information_schema.tables
	WHERE table_type = 'BASE TABLE'
	  AND table_schema NOT IN ('pg_catalog', 'information_schema')
	  AND (cardinality($1::text[]) = 0 OR table_schema = ANY($1::text[]))
	ORDER BY table_schema, table_name
`

const listForeignKeysQuery = `
	SELECT DISTINCT
		cn.nspname::text, c.relname::text,
		rn.nspname::text, r.relname::text
	FROM pg_constraint con
	JOIN pg_class c ON c.oid = con.conrelid
	JOIN pg_namespace cn ON cn.oid = c.relnamespace
	JOIN pg_class r ON r.oid = con.confrelid
	JOIN pg_namespace rn ON rn.oid = r.relnamespace
	WHERE con.contype = 'f'
	  AND (cardinality($1::text[]) = 0 OR cn.nspname = ANY($1::text[]))
`

// Domain types resolve to their base type. Every column of a composite
// foreign key is paired with its positional referenced column.
const describeColumnsQuery = `
	SELECT
		a.attname::text,
		COALESCE(bt.typname, t.typname)::text,
		COALESCE(btn.nspname, tn.nspname)::text,
		CASE
			WHEN a.atttypmod > 0 AND COALESCE(bt.typname, t.typname) IN ('varchar', 'bpchar')
				THEN a.atttypmod - 4
			WHEN a.atttypmod > 0 AND COALESCE(bt.typname, t.typname) = 'numeric'
				THEN ((a.atttypmod - 4) >> 16) & 65535
			ELSE 0
		END::int,
		(a.attidentity <> '' OR a.attgenerated <> ''
			OR COALESCE(pg_get_expr(d.adbin, d.adrelid), '') LIKE 'nextval(%'),
		COALESCE(pk.indisprimary, false),
		fk.ref_schema,
		fk.ref_table,
		fk.ref_column
	FROM pg_attribute a
	JOIN pg_class c ON c.oid = a.attrelid
	JOIN pg_namespace n ON n.oid = c.relnamespace
	JOIN pg_type t ON t.oid = a.atttypid
	JOIN pg_namespace tn ON tn.oid = t.typnamespace
	LEFT JOIN pg_type bt ON t.typtype = 'd' AND bt.oid = t.typbasetype
	LEFT JOIN pg_namespace btn ON btn.oid = bt.typnamespace
	LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
	LEFT JOIN pg_index pk ON pk.indrelid = a.attrelid AND pk.indisprimary AND a.attnum = ANY(pk.indkey)
	LEFT JOIN LATERAL (
		SELECT rn.nspname::text AS ref_schema, r.relname::text AS ref_table, ra.attname::text AS ref_column
		FROM pg_constraint con
		JOIN LATERAL unnest(con.conkey, con.confkey) AS k(attnum, refnum) ON true
		JOIN pg_class r ON r.oid = con.confrelid
		JOIN pg_namespace rn ON rn.oid = r.relnamespace
		JOIN pg_attribute ra ON ra.attrelid = con.confrelid AND ra.attnum = k.refnum
		WHERE con.contype = 'f' AND con.conrelid = a.attrelid AND k.attnum = a.attnum
		ORDER BY con.conname
		LIMIT 1
	) fk ON true
	WHERE n.nspname = $1 AND c.relname = $2
	  AND a.attnum > 0 AND NOT a.attisdropped
	ORDER BY a.attnum
`

func (p *Adapter) schemaFilter() []string {
	if p.schemas == nil {
		return []string{}
	}
	return p.schemas
}

func (p *Adapter) ListTables(ctx context.Context) ([]types.TableID, error) {
	rows, err := p.pool.Query(ctx, listTablesQuery, p.schemaFilter())
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []types.TableID
	for rows.Next() {
		var t types.TableID
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (p *Adapter) ListForeignKeyPairs(ctx context.Context) (types.DependencyPairs, error) {
	rows, err := p.pool.Query(ctx, listForeignKeysQuery, p.schemaFilter())
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys: %w", err)
	}
	defer rows.Close()

	pairs := make(types.DependencyPairs)
	for rows.Next() {
		var dependent, referenced types.TableID
		if err := rows.Scan(&dependent.Schema, &dependent.Name, &referenced.Schema, &referenced.Name); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		pairs.Add(dependent, referenced)
	}
	return pairs, rows.Err()
}

func (p *Adapter) DescribeColumns(ctx context.Context, table types.TableID) ([]types.Column, error) {
	schema := table.Schema
	if schema == "" {
		schema = "public"
	}

	rows, err := p.pool.Query(ctx, describeColumnsQuery, schema, table.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	defer rows.Close()

	var columns []types.Column
	for rows.Next() {
		var (
			col                           types.Column
			refSchema, refTable, refColumn *string
		)
		if err := rows.Scan(&col.Name, &col.DataType, &col.TypeSchema, &col.Size,
			&col.IsIdentity, &col.IsPrimaryKey, &refSchema, &refTable, &refColumn); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		if refTable != nil && refColumn != nil {
			ref := &types.ForeignKeyRef{Table: types.TableID{Name: *refTable}, Column: *refColumn}
			if refSchema != nil {
				ref.Table.Schema = *refSchema
			}
			col.ForeignKey = ref
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
