// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/mapregistry/lease"
	"github.com/bitmark-inc/mapregistry/mwmfile"
	"github.com/bitmark-inc/mapregistry/watcher"
)

type recordingRegistrar struct {
	registered   []mwmfile.LocalFile
	deregistered []string
}

func (r *recordingRegistrar) Register(file mwmfile.LocalFile) (*lease.Lease, bool, error) {
	r.registered = append(r.registered, file)
	return lease.Null(), true, nil
}

func (r *recordingRegistrar) Deregister(regionName string) bool {
	r.deregistered = append(r.deregistered, regionName)
	return true
}

func TestScanRegistersMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de-10.mwm"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))

	reg := &recordingRegistrar{}
	w, err := watcher.New(dir, reg, nil)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Scan())

	require.Len(t, reg.registered, 1)
	assert.Equal(t, "de", reg.registered[0].RegionName)
	assert.Equal(t, int64(10), reg.registered[0].Version)
}

func TestRunRegistersNewFiles(t *testing.T) {
	dir := t.TempDir()
	reg := &recordingRegistrar{}
	w, err := watcher.New(dir, reg, nil)
	require.NoError(t, err)

	go w.Run()
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "fr-3.mwm"), []byte("x"), 0o644))

	deadline := time.Now().Add(2 * time.Second)
	for len(reg.registered) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	// Writing a new file produces a Create and a Write event, and each
	// one is a registration attempt, so at least one is recorded.
	require.NotEmpty(t, reg.registered)
	assert.Equal(t, "fr", reg.registered[0].RegionName)
}

func TestRunDeregistersRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "it-4.mwm")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	reg := &recordingRegistrar{}
	w, err := watcher.New(dir, reg, nil)
	require.NoError(t, err)

	go w.Run()
	defer w.Stop()

	require.NoError(t, os.Remove(path))

	deadline := time.Now().Add(2 * time.Second)
	for len(reg.deregistered) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	require.Len(t, reg.deregistered, 1)
	assert.Equal(t, "it", reg.deregistered[0])
}
