// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mwmid implements Identifier: a lightweight handle to a
// descriptor.Descriptor record that compares by record identity
// rather than by the record's current field values.
package mwmid

import "github.com/bitmark-inc/mapregistry/descriptor"

// ID is a handle to a descriptor.Descriptor. The zero value is the
// null identifier - it refers to nothing and IsAlive reports false.
//
// Two IDs compare equal exactly when they wrap the same Descriptor,
// regardless of that descriptor's current status or lease count. The
// Go pointer an ID wraps is kept alive by ordinary garbage collection
// for as long as any ID or Lease still references it, even after a
// registry.Registry has dropped it from its own history sequence.
type ID struct {
	d *descriptor.Descriptor
}

// New wraps a descriptor as an ID. d may not be nil.
func New(d *descriptor.Descriptor) ID {
	if d == nil {
		panic("mwmid: New called with a nil descriptor")
	}
	return ID{d: d}
}

// IsAlive reports whether the ID refers to a descriptor.
func (id ID) IsAlive() bool {
	return id.d != nil
}

// Descriptor returns the wrapped descriptor, or nil for a null ID.
func (id ID) Descriptor() *descriptor.Descriptor {
	return id.d
}

// Equal reports whether both IDs wrap the same descriptor record.
func (id ID) Equal(other ID) bool {
	return id.d == other.d
}

// String renders the region name for debugging, or "<null>".
func (id ID) String() string {
	if id.d == nil {
		return "<null>"
	}
	return id.d.RegionName()
}
