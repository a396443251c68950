// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/mapregistry/config"
	"github.com/bitmark-inc/mapregistry/coordinator"
	"github.com/bitmark-inc/mapregistry/janitor"
	"github.com/bitmark-inc/mapregistry/mwmfile"
	"github.com/bitmark-inc/mapregistry/mwmio"
	"github.com/bitmark-inc/mapregistry/watcher"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

const sweepInterval = 5 * time.Minute

func main() {
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, _, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		fmt.Printf("%s: version %s\n", program, version)
		return
	}

	if len(options["help"]) > 0 {
		fmt.Printf("usage: %s --config-file=<file> [--quiet]\n", program)
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: exactly one --config-file option is required, %d were given", program, len(options["config-file"]))
	}

	theConfiguration, err := config.Parse(options["config-file"][0])
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration: %s", program, err)
	}

	logging := logger.Configuration{
		Directory: theConfiguration.Log.Directory,
		File:      theConfiguration.Log.File,
		Size:      theConfiguration.Log.Size,
		Count:     theConfiguration.Log.Count,
		Levels: map[string]string{
			logger.DefaultTag: theConfiguration.Log.Level,
		},
	}
	if err := logger.Initialise(logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("configuration: %+v", theConfiguration)

	coord := coordinator.New(theConfiguration.CacheCapacity, mwmio.Probe, mwmio.Factory, func(f mwmfile.LocalFile) {
		log.Infof("deregistered: %s", f)
	})
	defer coord.Cleanup()

	w, err := watcher.New(theConfiguration.DataDirectory, coord, logger.New("watcher"))
	if nil != err {
		log.Criticalf("watcher initialise error: %s", err)
		exitwithstatus.Message("watcher initialise error: %s", err)
	}
	if err := w.Scan(); nil != err {
		log.Criticalf("initial scan error: %s", err)
		exitwithstatus.Message("initial scan error: %s", err)
	}
	go w.Run()
	defer w.Stop()

	j := janitor.Start(coord, sweepInterval, logger.New("janitor"))
	defer j.Stop()

	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}
	log.Info("shutting down…")
}
