// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package watcher discovers map files dropped into a data directory
// and drives coordinator.Coordinator.Register for each one. This is
// physical I/O glue that lives outside the registry core: the core
// never touches a filesystem or starts a goroutine on its own, it
// only reacts to the LocalFile values this package hands it.
package watcher

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/mapregistry/lease"
	"github.com/bitmark-inc/mapregistry/mwmfile"
)

// Registrar is the subset of coordinator.Coordinator's API the
// watcher drives.
type Registrar interface {
	Register(file mwmfile.LocalFile) (*lease.Lease, bool, error)
	Deregister(regionName string) bool
}

// fileNamePattern matches "<region>-<version>.mwm", e.g. "de-10.mwm".
var fileNamePattern = regexp.MustCompile(`^([a-zA-Z0-9_]+)-(\d+)\.mwm$`)

// parseFileName extracts the region name and version a map file's
// base name encodes. ok is false if name does not match the
// convention.
func parseFileName(name string) (region string, version int64, ok bool) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	v, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return m[1], v, true
}

// T watches a directory and registers every map file it finds,
// initially and as fsnotify reports changes.
type T struct {
	dir      string
	target   Registrar
	log      *logger.L
	fsw      *fsnotify.Watcher
	shutdown chan struct{}
	finished chan struct{}
	runState int32 // 0 idle, 1 Run started, 2 stopped before Run started
}

// New creates a watcher rooted at dir. Call Scan to register files
// already present, and Run to react to subsequent changes.
func New(dir string, target Registrar, log *logger.L) (*T, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return &T{
		dir:      dir,
		target:   target,
		log:      log,
		fsw:      fsw,
		shutdown: make(chan struct{}),
		finished: make(chan struct{}),
	}, nil
}

// Scan registers every map file already present in the watched
// directory. Files that do not match the naming convention are
// skipped silently; files the registrar rejects are skipped and
// logged. Neither fails the whole scan.
func (w *T) Scan() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.registerPath(filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

func (w *T) registerPath(path string) {
	region, version, ok := parseFileName(filepath.Base(path))
	if !ok {
		return
	}
	l, _, err := w.target.Register(mwmfile.LocalFile{
		RegionName: region,
		Version:    version,
		Path:       path,
	})
	if err != nil {
		if w.log != nil {
			w.log.Warnf("failed to register %s: %v", path, err)
		}
		return
	}
	// The watcher only wants registration as a side effect; it holds
	// no lease of its own.
	l.Release()
}

func (w *T) deregisterPath(path string) {
	region, _, ok := parseFileName(filepath.Base(path))
	if !ok {
		return
	}
	w.target.Deregister(region)
}

// watcherEventFileChange reports whether event should trigger a
// (re-)registration attempt. Adapted from the like-named classifier in
// command/recorderd/file_watcher.go, which only ever watches one
// already-existing file and so never needs Create; this watcher
// watches a directory for new map files landing in it, so Create
// counts as a change too.
func watcherEventFileChange(event fsnotify.Event) bool {
	return event.Op&fsnotify.Create == fsnotify.Create ||
		event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Chmod == fsnotify.Chmod
}

// watcherEventFileRemove reports whether event signals the file is
// gone, grounded directly on file_watcher.go's classifier of the same
// name.
func watcherEventFileRemove(event fsnotify.Event) bool {
	return event.Name == "" || event.Op&fsnotify.Remove == fsnotify.Remove
}

// Run processes filesystem events until Stop is called. It blocks
// and should be started in its own goroutine. The event switch below
// is grounded on file_watcher.go's Start goroutine: log every event,
// classify it with the same two helpers, react to a remove before
// considering anything else.
func (w *T) Run() {
	if !atomic.CompareAndSwapInt32(&w.runState, 0, 1) {
		return
	}
	defer close(w.finished)
	for {
		select {
		case <-w.shutdown:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.Infof("file event: %v", event)
			}
			if watcherEventFileRemove(event) {
				w.deregisterPath(event.Name)
				continue
			}
			if watcherEventFileChange(event) {
				w.registerPath(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.Warnf("watcher error: %v", err)
			}
		}
	}
}

// Stop terminates Run, waiting for it to return if it was started, and
// releases the underlying fsnotify watch. It may be called without Run
// ever having been started; a Run call after that returns at once.
func (w *T) Stop() error {
	close(w.shutdown)
	err := w.fsw.Close()
	if !atomic.CompareAndSwapInt32(&w.runState, 0, 2) {
		<-w.finished
	}
	return err
}
