// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package payloadcache implements the fixed-capacity cache of
// released, still-open payloads that coordinator.Coordinator keeps so
// that a region dropped and re-acquired shortly after does not pay
// the factory cost again.
//
// Cache has no lock of its own; every method here must only be called
// while the owning coordinator.Coordinator holds its mutex.
package payloadcache

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/bitmark-inc/mapregistry/mwmfile"
	"github.com/bitmark-inc/mapregistry/mwmid"
)

// Entry pairs an Identifier with its cached payload.
type Entry struct {
	ID      mwmid.ID
	Payload mwmfile.Payload
}

// Cache is a fixed-capacity, least-recently-used cache of released
// payloads, wrapping github.com/hashicorp/golang-lru. A hit removes
// the entry rather than promoting it - a released descriptor leaves
// the cache as soon as it is re-acquired, it is never "touched" in
// place - so the library's own recency tracking only ever comes into
// play on Put, to decide what to evict once the cache is full.
type Cache struct {
	capacity int
	lru      *lru.Cache
	evicted  []Entry
}

// New returns an empty Cache bounded to capacity entries. Panics if
// capacity is not positive.
func New(capacity int) *Cache {
	if capacity <= 0 {
		panic("payloadcache: capacity must be positive")
	}
	c := &Cache{capacity: capacity}
	l, err := lru.NewWithEvict(capacity, c.onEvict)
	if err != nil {
		panic(err)
	}
	c.lru = l
	return c
}

func (c *Cache) onEvict(key, value interface{}) {
	c.evicted = append(c.evicted, Entry{ID: key.(mwmid.ID), Payload: value.(mwmfile.Payload)})
}

// Capacity returns the fixed capacity passed to New.
func (c *Cache) Capacity() int { return c.capacity }

// Len returns the number of entries currently cached.
func (c *Cache) Len() int { return c.lru.Len() }

// Remove finds and removes the entry for id, if any.
func (c *Cache) Remove(id mwmid.ID) (mwmfile.Payload, bool) {
	v, ok := c.lru.Get(id)
	if !ok {
		return nil, false
	}
	c.lru.Remove(id)
	c.evicted = nil // Remove's own eviction callback fires for this id; discard it
	return v.(mwmfile.Payload), true
}

// Put inserts a new entry. If the cache is now over capacity, the
// least recently used entry is evicted and returned.
func (c *Cache) Put(id mwmid.ID, payload mwmfile.Payload) (evicted Entry, didEvict bool) {
	c.evicted = nil
	c.lru.Add(id, payload)
	if len(c.evicted) == 0 {
		return Entry{}, false
	}
	return c.evicted[0], true
}

// Clear removes and returns every entry currently cached.
func (c *Cache) Clear() []Entry {
	c.evicted = nil
	c.lru.Purge()
	out := c.evicted
	c.evicted = nil
	return out
}
