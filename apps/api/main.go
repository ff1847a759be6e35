package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register the /debug/pprof handlers
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/agenda/apps/api/echo"
	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/center"
	"github.com/trezcool/agenda/core/classroom"
	"github.com/trezcool/agenda/core/menu"
	"github.com/trezcool/agenda/core/message"
	"github.com/trezcool/agenda/core/news"
	"github.com/trezcool/agenda/core/photo"
	"github.com/trezcool/agenda/core/record"
	"github.com/trezcool/agenda/core/sample"
	"github.com/trezcool/agenda/core/student"
	"github.com/trezcool/agenda/core/user"
	assetsvc "github.com/trezcool/agenda/services/assets"
	emailsvc "github.com/trezcool/agenda/services/email"
	logsvc "github.com/trezcool/agenda/services/logger"
	"github.com/trezcool/agenda/storage"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	store, err := storage.Open(conf, true /* migrate */)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = store.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// the memory engine starts empty on every run
	if conf.Database.Engine == "memory" {
		if _, err = sample.NewPopulator(store.Tx, store.SampleRepositories(), dbLogger).Populate(context.Background()); err != nil {
			dbLogger.Error(fmt.Sprintf("populating sample data: %v", err), err)
		}
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	assets := assetsvc.NewLocalStore(conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	record.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("dbEngine").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,

			UserSvc:      user.NewService(store.Users),
			CenterSvc:    center.NewService(store.Centers),
			ClassroomSvc: classroom.NewService(store.Classrooms, store.Centers, store.Users),
			StudentSvc: student.NewService(
				store.Tx, store.Students, store.Centers, store.Classrooms, store.Users, logger,
			),
			RecordSvc:  record.NewService(store.Records, store.Students),
			MenuSvc:    menu.NewService(store.Menus),
			NewsSvc:    news.NewService(store.News, store.Centers),
			MessageSvc: message.NewService(store.Messages, store.Users, mailSvc),
			PhotoSvc:   photo.NewService(store.Photos, assets),
			Assets:     assets,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
