// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package janitor_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/mapregistry/janitor"
)

type countingSweeper struct {
	calls int32
}

func (s *countingSweeper) ClearCache() {
	atomic.AddInt32(&s.calls, 1)
}

func TestJanitorSweepsUntilStopped(t *testing.T) {
	sweeper := &countingSweeper{}
	j := janitor.Start(sweeper, 5*time.Millisecond, nil)

	time.Sleep(40 * time.Millisecond)
	j.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&sweeper.calls), int32(2))
}

func TestJanitorStopsPromptlyWithNoTicks(t *testing.T) {
	sweeper := &countingSweeper{}
	j := janitor.Start(sweeper, time.Hour, nil)
	j.Stop()
	assert.Equal(t, int32(0), atomic.LoadInt32(&sweeper.calls))
}
