package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Mithesh23/kmit-club-sub001/apps/di"
	"github.com/Mithesh23/kmit-club-sub001/core"
	emailsvc "github.com/Mithesh23/kmit-club-sub001/services/email"
	logsvc "github.com/Mithesh23/kmit-club-sub001/services/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(os.Stdout, conf, "ADMIN")
	logger.Enable(!conf.Debug)

	cl := newCommandLine(conf, logger, os.Stdout, func(ctx context.Context) (*di.Container, error) {
		return di.New(ctx, conf, logger, emailsvc.New(conf, logger), di.Options{})
	})
	defer cl.close()

	if err := cl.run(context.Background(), os.Args); err != nil {
		logger.Error(fmt.Sprintf("error: %v", err), err)
		return 1
	}
	return 0
}
