package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInsert(t *testing.T) {
	adapter := New(nil)

	query, args, err := adapter.buildInsert(types.InsertPlan{
		Table: types.TableID{Schema: "sales", Name: "orders"},
		Columns: []types.ColumnValue{
			{Name: "code", Value: "A1"},
			{Name: "user_id", Value: nil},
		},
		Output: []string{"id", "code"},
	})
	require.NoError(t, err)

	assert.Equal(t, `INSERT INTO "sales"."orders" ("code","user_id") VALUES ($1,$2) RETURNING "id", "code"`, query)
	assert.Equal(t, []interface{}{"A1", nil}, args)
}

func TestBuildInsertWithoutOutput(t *testing.T) {
	adapter := New(nil)

	query, _, err := adapter.buildInsert(types.InsertPlan{
		Table:   types.TableID{Name: "logs"},
		Columns: []types.ColumnValue{{Name: "message", Value: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "logs" ("message") VALUES ($1)`, query)
}

func TestBuildInsertRejectsInvalidIdentifiers(t *testing.T) {
	adapter := New(nil)

	tests := []types.InsertPlan{
		{Table: types.TableID{Name: `x"; drop`}, Columns: []types.ColumnValue{{Name: "a", Value: 1}}},
		{Table: types.TableID{Schema: "bad schema", Name: "x"}, Columns: []types.ColumnValue{{Name: "a", Value: 1}}},
		{Table: types.TableID{Name: "x"}, Columns: []types.ColumnValue{{Name: "1a", Value: 1}}},
		{Table: types.TableID{Name: "x"}, Columns: []types.ColumnValue{{Name: "a", Value: 1}}, Output: []string{"id;"}},
	}

	for _, plan := range tests {
		_, _, err := adapter.buildInsert(plan)
		assert.Error(t, err, "%+v", plan)
	}
}

func TestNormalizeValue(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id.String(), normalizeValue([16]byte(id)))

	assert.Equal(t, "draft", normalizeValue(pgtype.Text{String: "draft", Valid: true}))
	assert.Nil(t, normalizeValue(pgtype.Text{}))

	assert.Equal(t, int64(4), normalizeValue(int64(4)))
	assert.Nil(t, normalizeValue(nil))
}

func TestSchemaFilter(t *testing.T) {
	assert.Equal(t, []string{}, New(nil).schemaFilter())
	assert.Equal(t, []string{"billing"}, New([]string{"billing"}).schemaFilter())
}

// TestAdapterLive runs against the database in FLASHSEED_TEST_POSTGRES_URL.
func TestAdapterLive(t *testing.T) {
	url := os.Getenv("FLASHSEED_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("FLASHSEED_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	adapter := New([]string{"flashseed_test"})
	require.NoError(t, adapter.Connect(ctx, url))
	defer adapter.Close()

	_, err := adapter.pool.Exec(ctx, `
		DROP SCHEMA IF EXISTS flashseed_test CASCADE;
		CREATE SCHEMA flashseed_test;
		CREATE TABLE flashseed_test.users (id SERIAL PRIMARY KEY, email VARCHAR(40) NOT NULL);
		CREATE TABLE flashseed_test.posts (
			id UUID PRIMARY KEY,
			author_id INT REFERENCES flashseed_test.users(id),
			title TEXT
		);`)
	require.NoError(t, err)
	defer adapter.pool.Exec(ctx, "DROP SCHEMA IF EXISTS flashseed_test CASCADE")

	tables, err := adapter.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.TableID{{Schema: "flashseed_test", Name: "posts"}, {Schema: "flashseed_test", Name: "users"}}, tables)

	pairs, err := adapter.ListForeignKeyPairs(ctx)
	require.NoError(t, err)
	users := types.TableID{Schema: "flashseed_test", Name: "users"}
	posts := types.TableID{Schema: "flashseed_test", Name: "posts"}
	assert.True(t, pairs[posts].Has(users))

	cols, err := adapter.DescribeColumns(ctx, users)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.True(t, cols[0].IsIdentity)
	assert.Equal(t, 40, cols[1].Size)

	row, err := adapter.Insert(ctx, types.InsertPlan{
		Table:   users,
		Columns: []types.ColumnValue{{Name: "email", Value: "a@example.com"}},
		Output:  []string{"id"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, row["id"])

	require.NoError(t, adapter.Truncate(ctx, posts))
}
