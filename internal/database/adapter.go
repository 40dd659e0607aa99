package database

import (
	"context"

	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
)

// Catalog reads schema metadata from the live database.
type Catalog interface {
	ListTables(ctx context.Context) ([]types.TableID, error)
	ListForeignKeyPairs(ctx context.Context) (types.DependencyPairs, error)
	DescribeColumns(ctx context.Context, table types.TableID) ([]types.Column, error)
}

// Executor runs a single-row insert and returns the captured output columns.
type Executor interface {
	Insert(ctx context.Context, plan types.InsertPlan) (types.Row, error)
}

type DatabaseAdapter interface {
	Catalog
	Executor

	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	// Truncate removes every row from the table.
	Truncate(ctx context.Context, table types.TableID) error
}
