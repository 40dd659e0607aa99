package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY,
	email VARCHAR(60) NOT NULL
);
CREATE TABLE categories (
	code TEXT PRIMARY KEY,
	label TEXT
);
CREATE TABLE products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	category_code TEXT REFERENCES categories(code),
	price DECIMAL(8,2)
);
CREATE TABLE orders (
	id INTEGER PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id)
);
CREATE TABLE order_items (
	order_id INTEGER REFERENCES orders(id),
	product_id INTEGER REFERENCES products,
	qty SMALLINT,
	PRIMARY KEY (order_id, product_id)
);
`

func openTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	adapter := New()
	path := filepath.Join(t.TempDir(), "test.sqlite")
	require.NoError(t, adapter.Connect(context.Background(), "sqlite://"+path))
	t.Cleanup(func() { adapter.Close() })

	_, err := adapter.db.Exec(testSchema)
	require.NoError(t, err)
	return adapter
}

func TestListTables(t *testing.T) {
	adapter := openTestAdapter(t)

	tables, err := adapter.ListTables(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []types.TableID{
		{Name: "categories"}, {Name: "order_items"}, {Name: "orders"}, {Name: "products"}, {Name: "users"},
	}, tables)
}

func TestListForeignKeyPairs(t *testing.T) {
	adapter := openTestAdapter(t)

	pairs, err := adapter.ListForeignKeyPairs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []types.TableID{{Name: "orders"}, {Name: "products"}}, pairs[types.TableID{Name: "order_items"}].Sorted())
	assert.True(t, pairs[types.TableID{Name: "orders"}].Has(types.TableID{Name: "users"}))
	assert.True(t, pairs[types.TableID{Name: "products"}].Has(types.TableID{Name: "categories"}))
	assert.NotContains(t, pairs, types.TableID{Name: "users"})
}

func TestDescribeColumns(t *testing.T) {
	adapter := openTestAdapter(t)
	ctx := context.Background()

	users, err := adapter.DescribeColumns(ctx, types.TableID{Name: "users"})
	require.NoError(t, err)
	assert.Equal(t, []types.Column{
		{Name: "id", DataType: "integer", IsIdentity: true, IsPrimaryKey: true},
		{Name: "email", DataType: "varchar", Size: 60},
	}, users)

	categories, err := adapter.DescribeColumns(ctx, types.TableID{Name: "categories"})
	require.NoError(t, err)
	assert.True(t, categories[0].IsPrimaryKey)
	assert.False(t, categories[0].IsIdentity, "only INTEGER keys alias the rowid")

	items, err := adapter.DescribeColumns(ctx, types.TableID{Name: "order_items"})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.True(t, items[0].IsPrimaryKey)
	assert.False(t, items[0].IsIdentity, "composite keys are not identities")
	require.NotNil(t, items[1].ForeignKey)
	assert.Equal(t, types.ForeignKeyRef{Table: types.TableID{Name: "products"}, Column: "id"}, *items[1].ForeignKey)

	_, err = adapter.DescribeColumns(ctx, types.TableID{Name: "ghost"})
	assert.Error(t, err)
}

func TestInsertReturnsOutput(t *testing.T) {
	adapter := openTestAdapter(t)
	ctx := context.Background()

	row, err := adapter.Insert(ctx, types.InsertPlan{
		Table:   types.TableID{Name: "users"},
		Columns: []types.ColumnValue{{Name: "email", Value: "a@example.com"}},
		Output:  []string{"id"},
	})
	require.NoError(t, err)
	assert.Equal(t, types.Row{"id": int64(1)}, row)

	row, err = adapter.Insert(ctx, types.InsertPlan{
		Table:   types.TableID{Name: "categories"},
		Columns: []types.ColumnValue{{Name: "code", Value: "toys"}, {Name: "label", Value: nil}},
	})
	require.NoError(t, err)
	assert.Empty(t, row)
}

func TestInsertForeignKeyViolation(t *testing.T) {
	adapter := openTestAdapter(t)

	_, err := adapter.Insert(context.Background(), types.InsertPlan{
		Table:   types.TableID{Name: "orders"},
		Columns: []types.ColumnValue{{Name: "user_id", Value: int64(99)}},
		Output:  []string{"id"},
	})
	assert.Error(t, err)
}

func TestTruncateResetsSequence(t *testing.T) {
	adapter := openTestAdapter(t)
	ctx := context.Background()
	products := types.TableID{Name: "products"}
	plan := types.InsertPlan{
		Table:   products,
		Columns: []types.ColumnValue{{Name: "price", Value: "1.00"}},
		Output:  []string{"id"},
	}

	_, err := adapter.Insert(ctx, plan)
	require.NoError(t, err)
	require.NoError(t, adapter.Truncate(ctx, products))

	var count int
	require.NoError(t, adapter.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count))
	assert.Zero(t, count)

	row, err := adapter.Insert(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, int64(1), row["id"])

	// users has no sqlite_sequence entry
	require.NoError(t, adapter.Truncate(ctx, types.TableID{Name: "users"}))
}

func TestTruncateWithoutSequenceTable(t *testing.T) {
	adapter := New()
	require.NoError(t, adapter.Connect(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "plain.sqlite")))
	t.Cleanup(func() { adapter.Close() })

	_, err := adapter.db.Exec(`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT); INSERT INTO notes (body) VALUES ('x');`)
	require.NoError(t, err)

	require.NoError(t, adapter.Truncate(context.Background(), types.TableID{Name: "notes"}))

	var tables int
	require.NoError(t, adapter.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = 'sqlite_sequence'").Scan(&tables))
	assert.Zero(t, tables)
}

func TestTruncateReportsErrors(t *testing.T) {
	adapter := openTestAdapter(t)
	require.NoError(t, adapter.Close())

	assert.Error(t, adapter.Truncate(context.Background(), types.TableID{Name: "products"}))
}
