package main

import (
	"fmt"
	"log"
	"os"

	"github.com/trezcool/agenda/core"
	logsvc "github.com/trezcool/agenda/services/logger"
	"github.com/trezcool/agenda/storage"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// migrations are left to the migrate command
	store, err := storage.Open(conf, false /* migrate */)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	cli := newCommandLine(store, logger)
	err = cli.run(os.Args)
	if cerr := store.Close(); cerr != nil {
		logger.Error(fmt.Sprintf("closing database: %v", cerr), cerr)
	}
	if err != nil {
		if err != errHelp {
			fmt.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
