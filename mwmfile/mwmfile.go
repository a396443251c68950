// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mwmfile holds the types that cross the boundary between the
// registry core and its external collaborators: the on-disk file a
// caller wants registered, the payload a factory produces for it, and
// the callback signatures the coordinator invokes while its lock is
// held.
package mwmfile

import "fmt"

// LocalFile identifies a map file on local storage, as handed to
// Coordinator.Register by whatever physical I/O layer discovered it
// (see package watcher).
type LocalFile struct {
	RegionName string
	Version    int64
	Path       string
}

func (f LocalFile) String() string {
	return fmt.Sprintf("%s@%d (%s)", f.RegionName, f.Version, f.Path)
}

// Payload is whatever a Factory produces for a registered file - an
// mmap'd region, an open handle, a parsed index. Close is called
// exactly once, under the coordinator's lock, when the payload is
// evicted from the cache, purged by a deregistration, or dropped
// during a cache clear.
type Payload interface {
	Close()
}

// Probe inspects a local file and reports the scale range a
// descriptor should classify it under. ok is false if the file is
// unreadable or not a map file, in which case registration fails with
// mwmerr.ErrInvalidFile.
type Probe func(file LocalFile) (minScale, maxScale int, ok bool)

// Factory produces a Payload for a descriptor's source file. It is
// invoked on a cache miss, under the coordinator's lock.
type Factory func(file LocalFile) (Payload, error)

// OnDeregistered is invoked once a descriptor has completed
// deregistration (lease count reached zero and the record left the
// registry). It is invoked under the coordinator's lock.
type OnDeregistered func(file LocalFile)
