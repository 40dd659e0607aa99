package seeder

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopCatalog() *fakeCatalog {
	return newFakeCatalog().
		table("users", pkIdentity("id"), types.Column{Name: "email", DataType: "varchar", Size: 100}).
		table("categories", pkIdentity("id"), types.Column{Name: "name", DataType: "varchar", Size: 50}).
		table("products",
			pkIdentity("id"),
			fkColumn("category_id", "categories", "id"),
			types.Column{Name: "price", DataType: "numeric", Size: 10},
		).
		table("orders", pkIdentity("id"), fkColumn("user_id", "users", "id")).
		table("order_items",
			types.Column{Name: "order_id", DataType: "integer", IsPrimaryKey: true,
				ForeignKey: &types.ForeignKeyRef{Table: tid("orders"), Column: "id"}},
			types.Column{Name: "product_id", DataType: "integer", IsPrimaryKey: true,
				ForeignKey: &types.ForeignKeyRef{Table: tid("products"), Column: "id"}},
			types.Column{Name: "quantity", DataType: "smallint"},
		)
}

func TestDiscover(t *testing.T) {
	schema, err := Discover(context.Background(), shopCatalog(), nil)
	require.NoError(t, err)

	assert.Len(t, schema.Tables, 5)
	assert.Len(t, schema.Sort.Order, 5)
	assert.Empty(t, schema.Sort.Excluded)
	assert.Less(t, indexOf(schema.Sort.Order, tid("orders")), indexOf(schema.Sort.Order, tid("order_items")))
	assert.Less(t, indexOf(schema.Sort.Order, tid("categories")), indexOf(schema.Sort.Order, tid("products")))
}

func TestDiscoverExclude(t *testing.T) {
	schema, err := Discover(context.Background(), shopCatalog(), []string{"orders", "public.categories"})
	require.NoError(t, err)

	assert.NotContains(t, schema.Sort.Order, tid("orders"))
	assert.Contains(t, schema.Sort.Order, tid("categories"), "qualified names only match qualified tables")
	assert.False(t, schema.Pairs[tid("order_items")].Has(tid("orders")))
	assert.True(t, schema.Pairs[tid("order_items")].Has(tid("products")))
}

func TestDiscoverCatalogFailureIsFatal(t *testing.T) {
	catalog := shopCatalog()
	catalog.listErr = errors.New("connection refused")

	_, err := Discover(context.Background(), catalog, nil)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	catalog = shopCatalog()
	catalog.pairsErr = errors.New("permission denied for pg_constraint")

	_, err = Discover(context.Background(), catalog, nil)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestSeed(t *testing.T) {
	adapter := &fakeAdapter{fakeCatalog: shopCatalog(), fakeExecutor: newFakeExecutor()}

	result, err := New(adapter, NewDataGeneratorWithSeed(5), DefaultSeedConfig()).Seed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Stats.Inserted)
	assert.Empty(t, result.Stats.Failures)
	assert.Empty(t, adapter.truncated)

	order := adapter.fakeExecutor.tables()
	assert.Less(t, indexOf(order, tid("users")), indexOf(order, tid("orders")))
	assert.Less(t, indexOf(order, tid("orders")), indexOf(order, tid("order_items")))
	assert.Less(t, indexOf(order, tid("products")), indexOf(order, tid("order_items")))

	item := adapter.fakeExecutor.plansFor("order_items")[0]
	orderID, _ := valueOf(item, "order_id")
	productID, _ := valueOf(item, "product_id")
	assert.Equal(t, result.Cache.FirstRowPolicy(types.ForeignKeyRef{Table: tid("orders"), Column: "id"}), orderID)
	assert.Equal(t, result.Cache.FirstRowPolicy(types.ForeignKeyRef{Table: tid("products"), Column: "id"}), productID)
	assert.Empty(t, item.Output, "borrowed key columns are not captured")
}

func TestSeedRounds(t *testing.T) {
	adapter := &fakeAdapter{fakeCatalog: shopCatalog(), fakeExecutor: newFakeExecutor()}
	cfg := DefaultSeedConfig()
	cfg.Rounds = 3

	result, err := New(adapter, NewDataGeneratorWithSeed(5), cfg).Seed(context.Background())
	require.NoError(t, err)

	assert.Len(t, adapter.fakeExecutor.plansFor("users"), 3)
	assert.Equal(t, 3, result.Cache.Len(tid("users")))

	// every round borrows from the first order and product
	items := adapter.fakeExecutor.plansFor("order_items")
	require.Len(t, items, 3)
	first := result.Cache.FirstRowPolicy(types.ForeignKeyRef{Table: tid("orders"), Column: "id"})
	for _, item := range items {
		orderID, _ := valueOf(item, "order_id")
		assert.Equal(t, first, orderID)
	}
	assert.Empty(t, result.Stats.Failures)
}

func TestSeedCycleExcludedAndReported(t *testing.T) {
	catalog := newFakeCatalog().
		table("A", pkIdentity("id"), fkColumn("b_id", "B", "id")).
		table("B", pkIdentity("id"), fkColumn("a_id", "A", "id")).
		table("C", pkIdentity("id"), types.Column{Name: "title", DataType: "text"})
	adapter := &fakeAdapter{fakeCatalog: catalog, fakeExecutor: newFakeExecutor()}

	var result *Result
	require.NotPanics(t, func() {
		var err error
		result, err = New(adapter, NewDataGeneratorWithSeed(5), DefaultSeedConfig()).Seed(context.Background())
		require.NoError(t, err)
	})

	assert.Equal(t, []types.TableID{tid("C")}, result.Order)
	assert.ElementsMatch(t, []types.TableID{tid("A"), tid("B")}, result.Excluded)
	assert.NotEmpty(t, result.Cycles)
	assert.Equal(t, []types.TableID{tid("C")}, adapter.fakeExecutor.tables())
}

func TestSeedCatalogFailure(t *testing.T) {
	catalog := shopCatalog()
	catalog.listErr = errors.New("timeout")
	adapter := &fakeAdapter{fakeCatalog: catalog, fakeExecutor: newFakeExecutor()}

	_, err := New(adapter, nil, DefaultSeedConfig()).Seed(context.Background())

	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.Empty(t, adapter.fakeExecutor.plans)
}

func TestSeedEmptySchema(t *testing.T) {
	adapter := &fakeAdapter{fakeCatalog: newFakeCatalog(), fakeExecutor: newFakeExecutor()}

	result, err := New(adapter, nil, DefaultSeedConfig()).Seed(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Order)
	assert.NotNil(t, result.Cache)
}

func TestSeedTruncatesDependentsFirst(t *testing.T) {
	adapter := &fakeAdapter{fakeCatalog: shopCatalog(), fakeExecutor: newFakeExecutor()}
	cfg := DefaultSeedConfig()
	cfg.Truncate = true

	result, err := New(adapter, NewDataGeneratorWithSeed(5), cfg).Seed(context.Background())
	require.NoError(t, err)

	require.Len(t, adapter.truncated, len(result.Order))
	for i, table := range result.Order {
		assert.Equal(t, table, adapter.truncated[len(adapter.truncated)-1-i])
	}
}

func TestSeedDryRun(t *testing.T) {
	var out bytes.Buffer
	color.Output = &out
	defer func() { color.Output = discardOutput }()

	adapter := &fakeAdapter{fakeCatalog: shopCatalog(), fakeExecutor: newFakeExecutor()}
	cfg := DefaultSeedConfig()
	cfg.DryRun = true
	cfg.Truncate = true

	result, err := New(adapter, NewDataGeneratorWithSeed(5), cfg).Seed(context.Background())
	require.NoError(t, err)

	assert.Empty(t, adapter.fakeExecutor.plans, "nothing reaches the database")
	assert.Empty(t, adapter.truncated)
	assert.Equal(t, 5, result.Stats.Inserted)
	assert.Contains(t, out.String(), "INSERT INTO order_items (order_id, product_id, quantity) VALUES (1, 1, ")
	assert.Equal(t, int64(1), result.Cache.FirstRowPolicy(types.ForeignKeyRef{Table: tid("users"), Column: "id"}))
}
