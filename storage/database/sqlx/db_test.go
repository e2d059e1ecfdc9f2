package sqlxrepos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/storage/database"
	"github.com/Prajjwal2051/Viewly-sub002/storage/storagetest"
	testutil "github.com/Prajjwal2051/Viewly-sub002/tests"
)

// Needs DATABASE_URI=postgres://...; the database is created and migrated with the embedded goose migrations.
func TestRepositories(t *testing.T) {
	storagetest.Run(t, testutil.PreparePostgres(t))
}

func TestMigrations(t *testing.T) {
	conf := testutil.PostgresConfig(t)
	ctx := context.Background()
	require.NoError(t, database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tableCount := func() int {
		var n int
		require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name <> 'goose_db_version'`))
		return n
	}

	require.NoError(t, database.Migrate(ctx, db.DB))
	assert.Equal(t, 11, tableCount())
	require.NoError(t, database.RunMigrations(ctx, db.DB, "status"))

	require.NoError(t, database.RunMigrations(ctx, db.DB, "down-to", "0"))
	assert.Zero(t, tableCount())

	require.NoError(t, database.RunMigrations(ctx, db.DB, "up-to", "2"))
	assert.Equal(t, 3, tableCount()) // users, videos, watch_history
	require.NoError(t, database.Migrate(ctx, db.DB))
	assert.Equal(t, 11, tableCount())
}
