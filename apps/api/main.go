package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/ogunkayacan/lisans/apps/api/echo"
	"github.com/ogunkayacan/lisans/core"
	"github.com/ogunkayacan/lisans/core/license"
	"github.com/ogunkayacan/lisans/core/user"
	emailsvc "github.com/ogunkayacan/lisans/services/email"
	logsvc "github.com/ogunkayacan/lisans/services/logger"
	"github.com/ogunkayacan/lisans/storage/database"
	sqlxrepos "github.com/ogunkayacan/lisans/storage/database/sqlx"
)

func main() {
	conf, err := core.NewConfig()
	errAndDie(err)

	// set up logging
	stdLogger := log.New(os.Stdout, conf.AppName+" - ", log.LstdFlags|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!(conf.Debug || conf.TestMode))

	validate, translator := core.NewValidator()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.TestMode {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), logger)
	keygen := license.NewKeygen(license.SecretContext{
		SchoolCode: conf.License.SchoolCode,
		SecretKey:  conf.License.SecretKey,
	})
	licSvc := license.NewService(keygen, sqlxrepos.NewLicenseRepository(db), mailSvc, logger)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(&echoapi.Options{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    usrSvc,
		LicenseSvc: licSvc,
		Validate:   validate,
		Translator: translator,
		Shutdown:   shutdown,
	})

	serverErrors := make(chan error, 1)
	go func() { serverErrors <- app.Start() }()

	select {
	case err := <-serverErrors:
		logger.Fatal("server error", err)
	case sig := <-shutdown:
		logger.Info("shutting down", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := app.Stop(ctx); err != nil {
			logger.Error("graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
