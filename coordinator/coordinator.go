// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package coordinator implements Coordinator, the single-lock facade
// over registry.Registry and payloadcache.Cache that callers use to
// register, deregister and lease versioned map files.
package coordinator

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/mapregistry/descriptor"
	"github.com/bitmark-inc/mapregistry/lease"
	"github.com/bitmark-inc/mapregistry/mwmerr"
	"github.com/bitmark-inc/mapregistry/mwmfile"
	"github.com/bitmark-inc/mapregistry/mwmid"
	"github.com/bitmark-inc/mapregistry/payloadcache"
	"github.com/bitmark-inc/mapregistry/registry"
)

// Coordinator is the registry and lease manager for a set of
// versioned map files. One mutex guards the registry, the payload
// cache and every descriptor's mutable fields; the probe, factory and
// on-deregistered callbacks all run with that mutex held, so none of
// them may call back into the Coordinator.
type Coordinator struct {
	mu sync.Mutex

	reg   *registry.Registry
	cache *payloadcache.Cache

	probe          mwmfile.Probe
	factory        mwmfile.Factory
	onDeregistered mwmfile.OnDeregistered

	log *logger.L
}

// New builds a Coordinator with a payload cache bounded to capacity
// entries. probe and factory must be non-nil; onDeregistered may be
// nil.
func New(capacity int, probe mwmfile.Probe, factory mwmfile.Factory, onDeregistered mwmfile.OnDeregistered) *Coordinator {
	if probe == nil {
		panic("coordinator: probe must not be nil")
	}
	if factory == nil {
		panic("coordinator: factory must not be nil")
	}
	return &Coordinator{
		reg:            registry.New(),
		cache:          payloadcache.New(capacity),
		probe:          probe,
		factory:        factory,
		onDeregistered: onDeregistered,
		log:            logger.New("coordinator"),
	}
}

// Register registers localFile. It returns the Lease acquired for
// the registered (or already up to date) descriptor, whether a new
// descriptor was created, and an error for malformed input (empty
// region name, a probe rejection, or an unclassifiable scale range)
// or for a payload factory failure while acquiring the Lease; in the
// latter case the descriptor stays registered and created reports
// whether it was new. A stale incoming version is not an error:
// Register logs a warning and returns a null Lease with created=false.
func (c *Coordinator) Register(localFile mwmfile.LocalFile) (*lease.Lease, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.reg.Lookup(localFile.RegionName)
	if !current.IsAlive() {
		return c.registerLocked(localFile)
	}

	info := current.Descriptor()
	switch {
	case localFile.Version > info.Version():
		c.reg.Deregister(current, c.onDeregistered)
		return c.registerLocked(localFile)

	case localFile.Version == info.Version():
		c.log.Warnf("region %q re-registered at already-current version %d", localFile.RegionName, localFile.Version)
		info.Reregister()
		l, err := c.acquireLocked(current)
		return l, false, err

	default:
		c.log.Warnf("rejecting stale version %d for region %q, current version %d", localFile.Version, localFile.RegionName, info.Version())
		return lease.Null(), false, nil
	}
}

func (c *Coordinator) registerLocked(localFile mwmfile.LocalFile) (*lease.Lease, bool, error) {
	id, err := c.reg.Register(localFile, c.probe)
	if err != nil {
		return lease.Null(), false, err
	}
	l, err := c.acquireLocked(id)
	if err != nil {
		return lease.Null(), true, err
	}
	return l, true, nil
}

// acquireLocked implements lease acquisition: a cache hit is reused,
// a miss falls through to the factory. The lease count is incremented
// first and rolled back explicitly if the factory fails - not through
// a generic defer-undo abstraction, just the one compensating call
// this one path needs.
func (c *Coordinator) acquireLocked(id mwmid.ID) (*lease.Lease, error) {
	d := id.Descriptor()
	if !d.IsUpToDate() {
		return lease.Null(), nil
	}

	d.IncrementLeaseCount()

	if payload, ok := c.cache.Remove(id); ok {
		return lease.New(c, id, payload), nil
	}

	payload, err := c.factory(d.SourceFile())
	if err != nil {
		d.DecrementLeaseCount()
		return lease.Null(), &mwmerr.PayloadFactoryError{RegionName: d.RegionName(), Err: err}
	}
	return lease.New(c, id, payload), nil
}

// ReleasePayload implements lease.Releaser. It is called by
// Lease.Release and must not be called directly.
func (c *Coordinator) ReleasePayload(id mwmid.ID, payload mwmfile.Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !id.IsAlive() || payload == nil {
		return
	}
	d := id.Descriptor()
	d.DecrementLeaseCount()

	if d.LeaseCount() == 0 && d.Status() == descriptor.StatusMarkedForDeregister {
		if !c.reg.Deregister(id, c.onDeregistered) {
			panic("coordinator: deferred deregistration did not complete with a zero lease count")
		}
		payload.Close()
		return
	}

	if d.IsUpToDate() {
		if evicted, didEvict := c.cache.Put(id, payload); didEvict {
			evicted.Payload.Close()
		}
		return
	}

	// Already terminal (StatusDeregistered) with no mark pending:
	// nothing left to cache for.
	payload.Close()
}

// Deregister deregisters regionName's current entry. Returns true if
// deregistration completed immediately (no outstanding leases), false
// if it was deferred (outstanding leases remain) or the region was
// not registered.
func (c *Coordinator) Deregister(regionName string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.reg.Lookup(regionName)
	completed := c.reg.Deregister(id, c.onDeregistered)
	if payload, ok := c.cache.Remove(id); ok {
		payload.Close()
	}
	return completed
}

// DeregisterAll deregisters every known region's full history and
// clears the payload cache.
func (c *Coordinator) DeregisterAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range c.reg.RegionNames() {
		for _, id := range c.reg.Snapshot(name) {
			c.reg.Deregister(id, c.onDeregistered)
		}
	}
	c.clearCacheLocked()
}

// IsLoaded reports whether regionName has a current, up-to-date
// descriptor.
func (c *Coordinator) IsLoaded(regionName string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.reg.Lookup(regionName)
	return id.IsAlive() && id.Descriptor().IsUpToDate()
}

// EnumerateDescriptors returns the current descriptor for every
// registered region.
func (c *Coordinator) EnumerateDescriptors() []*descriptor.Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := c.reg.RegionNames()
	out := make([]*descriptor.Descriptor, 0, len(names))
	for _, name := range names {
		if id := c.reg.Lookup(name); id.IsAlive() {
			out = append(out, id.Descriptor())
		}
	}
	return out
}

// GetLockByCountryFile acquires a Lease on regionName's current
// descriptor. Returns a null Lease, with no error, if the region is
// unknown or its current descriptor is not up to date.
func (c *Coordinator) GetLockByCountryFile(regionName string) (*lease.Lease, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.reg.Lookup(regionName)
	if !id.IsAlive() {
		return lease.Null(), nil
	}
	return c.acquireLocked(id)
}

// ClearCache closes and drops every payload currently sitting in the
// cache with no outstanding lease.
func (c *Coordinator) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearCacheLocked()
}

func (c *Coordinator) clearCacheLocked() {
	for _, e := range c.cache.Clear() {
		e.Payload.Close()
	}
}

// Cleanup must be called before a Coordinator is discarded. It closes
// every cached payload; it does not touch descriptors with
// outstanding leases, so a caller that has forgotten to Release a
// Lease will leak that one payload, exactly as the original system
// documents.
func (c *Coordinator) Cleanup() {
	c.ClearCache()
}
