package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/storage"
	"github.com/Prajjwal2051/Viewly-sub002/storage/database/inmem"
	"github.com/Prajjwal2051/Viewly-sub002/storage/storagetest"
	testutil "github.com/Prajjwal2051/Viewly-sub002/tests"
)

func TestMemoryRepositories(t *testing.T) {
	storagetest.Run(t, storage.NewMemory(inmem.Open()))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	conf := testutil.Config(t)

	repos, err := storage.Open(ctx, conf, storage.Options{Setup: true})
	require.NoError(t, err)
	assert.NotNil(t, repos.Users)
	assert.NoError(t, repos.Close(ctx))

	conf.Database.Engine = "sqlite"
	_, err = storage.Open(ctx, conf, storage.Options{})
	assert.EqualError(t, err, "sqlite: unknown database engine")
}
