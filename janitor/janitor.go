// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package janitor runs a periodic sweep against a coordinator.
// Coordinator in its own goroutine. The registry core never starts
// goroutines on its own; janitor is ambient daemon machinery that an
// embedder (cmd/mapregistryd) wires in explicitly.
package janitor

import (
	"time"

	"github.com/bitmark-inc/logger"
)

// Sweeper is the subset of coordinator.Coordinator's API the janitor
// drives. Expressed as an interface so tests can swap in a fake
// without importing the coordinator package.
type Sweeper interface {
	ClearCache()
}

// T is a running janitor. Stop must be called exactly once.
type T struct {
	shutdown chan struct{}
	finished chan struct{}
}

// Start launches a goroutine that calls target.ClearCache every
// interval until Stop is called.
func Start(target Sweeper, interval time.Duration, log *logger.L) *T {
	j := &T{
		shutdown: make(chan struct{}),
		finished: make(chan struct{}),
	}
	go j.run(target, interval, log)
	return j
}

func (j *T) run(target Sweeper, interval time.Duration, log *logger.L) {
	defer close(j.finished)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.shutdown:
			return
		case <-ticker.C:
			if log != nil {
				log.Debug("sweeping payload cache")
			}
			target.ClearCache()
		}
	}
}

// Stop signals the janitor to exit and blocks until it has.
func (j *T) Stop() {
	close(j.shutdown)
	<-j.finished
}
