package main

import (
	"context"
	"fmt"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/storage"
	"github.com/Prajjwal2051/Viewly-sub002/storage/database"
)

var (
	runMigrationsFunc = database.RunMigrations // mockable

	// setupStorageFunc creates the postgres database or syncs the mongodb indexes.
	setupStorageFunc = func(ctx context.Context, conf *core.Config) error { // mockable
		repos, err := storage.Open(ctx, conf, storage.Options{Setup: true})
		if err != nil {
			return err
		}
		return repos.Close(ctx)
	}
)

func (cli *commandLine) migrate(args []string) error {
	ctx := context.Background()
	command := args[0]

	if cli.conf.Database.Engine != storage.EnginePostgres {
		if command != "up" {
			return fmt.Errorf("%q: only up is supported on %s", command, cli.conf.Database.Engine)
		}
		return setupStorageFunc(ctx, cli.conf)
	}

	return runMigrationsFunc(ctx, cli.db, command, args[1:]...)
}
