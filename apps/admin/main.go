package main

import (
	"log"
	"os"

	"github.com/ogunkayacan/lisans/core"
	"github.com/ogunkayacan/lisans/core/license"
	"github.com/ogunkayacan/lisans/storage/database"
	sqlxrepos "github.com/ogunkayacan/lisans/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	cli := commandLine{
		keygen: license.NewKeygen(license.SecretContext{
			SchoolCode: conf.License.SchoolCode,
			SecretKey:  conf.License.SecretKey,
		}),
		in:  os.Stdin,
		out: os.Stdout,
	}

	// genkey is pure derivation; only the other commands need the DB
	if len(os.Args) > 1 && os.Args[1] != "genkey" {
		errAndDie(database.CreateIfNotExist(conf))

		db, err := database.Open(conf)
		errAndDie(err)
		defer func() { _ = db.Close() }()
		errAndDie(db.Ping())

		cli.db = db
		cli.usrRepo = sqlxrepos.NewUserRepository(db)
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
