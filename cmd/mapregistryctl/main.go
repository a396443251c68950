// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// mapregistryctl lists the map files a running registry would
// discover under a data directory: a read-only diagnostic, built
// directly on the same watcher.Scan path the daemon uses, without
// holding any leases.
//
// Structured as a separate client/inspection binary with subcommands,
// the way bitmark-cli is, rather than as one more flat getoptions
// daemon flag table.
package main

import (
	"fmt"
	"os"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/mapregistry/coordinator"
	"github.com/bitmark-inc/mapregistry/descriptor"
	"github.com/bitmark-inc/mapregistry/mwmio"
	"github.com/bitmark-inc/mapregistry/watcher"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := cli.NewApp()
	app.Name = "mapregistryctl"
	app.Version = version
	app.HideVersion = true
	app.Usage = "inspect a mapregistryd data directory"

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "data-directory, d",
			Value: "",
			Usage: "*data `DIRECTORY` a mapregistryd would scan",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:      "list",
			Usage:     "list every region the data directory would register",
			ArgsUsage: "\n   (* = required global flag)",
			Action:    runList,
		},
		{
			Name:      "show",
			Usage:     "show one region's descriptor",
			ArgsUsage: "<region>\n   (* = required global flag)",
			Action:    runShow,
		},
	}

	// coordinator.New needs an initialised logger; this tool's log
	// output goes to a temporary directory that is removed on exit.
	logDirectory, err := os.MkdirTemp("", "mapregistryctl")
	if err != nil {
		fmt.Fprintf(os.Stderr, "mapregistryctl: %s\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(logDirectory)
	if err := logger.Initialise(logger.Configuration{Directory: logDirectory, File: "mapregistryctl.log", Size: 1048576, Count: 1, Levels: map[string]string{logger.DefaultTag: "critical"}}); err != nil {
		fmt.Fprintf(os.Stderr, "mapregistryctl: logger setup failed: %s\n", err)
		os.Exit(1)
	}
	defer logger.Finalise()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "mapregistryctl: %s\n", err)
		os.Exit(1)
	}
}

func scan(c *cli.Context) (*coordinator.Coordinator, error) {
	dataDirectory := c.GlobalString("data-directory")
	if dataDirectory == "" {
		return nil, fmt.Errorf("data-directory is required")
	}

	coord := coordinator.New(1<<20, mwmio.Probe, mwmio.Factory, nil)
	w, err := watcher.New(dataDirectory, coord, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}
	if err := w.Scan(); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	return coord, nil
}

func runList(c *cli.Context) error {
	coord, err := scan(c)
	if err != nil {
		return err
	}
	defer coord.Cleanup()

	for _, d := range coord.EnumerateDescriptors() {
		printDescriptor(d)
	}
	return nil
}

func runShow(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("show requires exactly one region argument")
	}
	region := c.Args().Get(0)

	coord, err := scan(c)
	if err != nil {
		return err
	}
	defer coord.Cleanup()

	for _, d := range coord.EnumerateDescriptors() {
		if d.RegionName() == region {
			printDescriptor(d)
			return nil
		}
	}
	return fmt.Errorf("region %q not found", region)
}

func printDescriptor(d *descriptor.Descriptor) {
	kind, err := d.Kind()
	kindLabel := "?"
	if err == nil {
		kindLabel = kind.String()
	}
	fmt.Printf("%-20s version=%-10d kind=%-8s status=%-22s leases=%d\n",
		d.RegionName(), d.Version(), kindLabel, d.Status().String(), d.LeaseCount())
}
