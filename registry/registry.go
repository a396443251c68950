// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry holds the map from region name to the ordered
// history of descriptor.Descriptor records registered for it; a
// record leaves the history once its deregistration completes.
//
// Registry has no lock of its own - every method here mutates shared
// state and must only be called while the owning coordinator.
// Coordinator holds its mutex. Go has no "friend class" the way the
// original C++ MwmSet is the sole owner of its info table, so these
// methods are exported; the contract is carried in this comment
// instead: code outside this module should never call Registry
// directly, only through coordinator.Coordinator.
package registry

import (
	"github.com/bitmark-inc/mapregistry/descriptor"
	"github.com/bitmark-inc/mapregistry/mwmerr"
	"github.com/bitmark-inc/mapregistry/mwmfile"
	"github.com/bitmark-inc/mapregistry/mwmid"
)

// Registry is the map of region name to descriptor history.
type Registry struct {
	entries map[string][]*descriptor.Descriptor
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string][]*descriptor.Descriptor)}
}

// Lookup returns the Identifier of the current (last) entry for
// regionName, or the null ID if the region is unknown.
func (r *Registry) Lookup(regionName string) mwmid.ID {
	seq := r.entries[regionName]
	if len(seq) == 0 {
		return mwmid.ID{}
	}
	return mwmid.New(seq[len(seq)-1])
}

// Register probes localFile, builds a descriptor for it and appends
// it to the region's history. Returns mwmerr.ErrEmptyRegionName if
// localFile.RegionName is empty, mwmerr.ErrInvalidFile if probe
// rejects the file, or mwmerr.ErrInvalidScales if the probed scale
// range classifies as neither country, world nor coast.
func (r *Registry) Register(localFile mwmfile.LocalFile, probe mwmfile.Probe) (mwmid.ID, error) {
	if localFile.RegionName == "" {
		return mwmid.ID{}, mwmerr.ErrEmptyRegionName
	}

	minScale, maxScale, ok := probe(localFile)
	if !ok {
		return mwmid.ID{}, mwmerr.ErrInvalidFile
	}

	d := descriptor.New(localFile, minScale, maxScale)
	if _, err := d.Kind(); err != nil {
		return mwmid.ID{}, err
	}

	r.entries[localFile.RegionName] = append(r.entries[localFile.RegionName], d)
	return mwmid.New(d), nil
}

// Deregister attempts to deregister the descriptor id refers to. If
// its lease count is already zero, the descriptor is marked
// StatusDeregistered, removed from its region's history, onDone is
// invoked with its source file, and Deregister returns true. If
// leases are outstanding, the descriptor is marked
// StatusMarkedForDeregister and Deregister returns false; completion
// is finished later by the coordinator's release path once the lease
// count reaches zero. A null or already-terminal id is a no-op that
// returns false.
func (r *Registry) Deregister(id mwmid.ID, onDone mwmfile.OnDeregistered) bool {
	if !id.IsAlive() {
		return false
	}
	d := id.Descriptor()
	if d.Status() == descriptor.StatusDeregistered {
		return false
	}

	if d.LeaseCount() > 0 {
		d.SetStatus(descriptor.StatusMarkedForDeregister)
		return false
	}

	d.SetStatus(descriptor.StatusDeregistered)
	r.remove(d)
	if onDone != nil {
		onDone(d.SourceFile())
	}
	return true
}

func (r *Registry) remove(d *descriptor.Descriptor) {
	seq := r.entries[d.RegionName()]
	kept := make([]*descriptor.Descriptor, 0, len(seq))
	for _, e := range seq {
		if e != d {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(r.entries, d.RegionName())
		return
	}
	r.entries[d.RegionName()] = kept
}

// Snapshot copies the current history sequence for regionName as
// Identifiers, so a caller can iterate it while also mutating the
// registry (each entry may deregister itself mid-iteration).
func (r *Registry) Snapshot(regionName string) []mwmid.ID {
	seq := r.entries[regionName]
	out := make([]mwmid.ID, len(seq))
	for i, d := range seq {
		out[i] = mwmid.New(d)
	}
	return out
}

// RegionNames returns the set of region names with at least one
// history entry, in no particular order.
func (r *Registry) RegionNames() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}
