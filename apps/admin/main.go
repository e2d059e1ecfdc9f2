package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	logsvc "github.com/Prajjwal2051/Viewly-sub002/services/logger"
	"github.com/Prajjwal2051/Viewly-sub002/storage"
	"github.com/Prajjwal2051/Viewly-sub002/storage/database"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(logsvc.NewZerolog(os.Stdout, conf, "admin"), conf)

	ctx := context.Background()
	repos, err := storage.Open(ctx, conf, storage.Options{})
	errAndDie(err)

	var db *sql.DB
	if conf.Database.Engine == storage.EnginePostgres {
		sqlxDB, err := database.Open(conf)
		errAndDie(err)
		db = sqlxDB.DB
	}

	cli := commandLine{
		conf:  conf,
		db:    db,
		users: repos.Users,
	}
	err = cli.run(os.Args)

	if db != nil {
		_ = db.Close()
	}
	if cerr := repos.Close(ctx); cerr != nil {
		logger.Error("closing storage", cerr)
	}
	if err != nil {
		if err != errHelp {
			fmt.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
