// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/osmocom/python-osmo-python-tests/interact/cli"
	"github.com/osmocom/python-osmo-python-tests/logger"
)

func main() {
	if _, err := maxprocs.Set(maxprocs.Logger(func(s string, args ...interface{}) {})); err != nil {
		logger.Warningf("set GOMAXPROCS: %v", err)
	}

	if lvl := logger.EnvLogLevel(); lvl != "" {
		logger.Level.SetByName(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.New(ctx, os.Stdin, os.Stdout, os.Stderr).Run(os.Args[1:])

	stop()
	os.Exit(code)
}
