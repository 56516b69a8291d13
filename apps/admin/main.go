package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/acadio/practia/core"
	logsvc "github.com/acadio/practia/services/logger"
	"github.com/acadio/practia/storage/database"
	sqlxrepos "github.com/acadio/practia/storage/database/sqlx"
)

var logger core.Logger

func main() {
	defer os.Exit(0)

	logger = logsvc.NewStdLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
	)

	conf, err := core.NewConfig(core.Getwd())
	errAndDie(err)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: sqlxrepos.NewUserRepository(sqlx.NewDb(db, "postgres")),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
