// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package lease implements Lease, the scoped borrow a caller holds on
// a registered map file's payload.
package lease

import (
	"github.com/bitmark-inc/mapregistry/descriptor"
	"github.com/bitmark-inc/mapregistry/mwmfile"
	"github.com/bitmark-inc/mapregistry/mwmid"
)

// Releaser is implemented by coordinator.Coordinator. A Lease calls
// back into it exactly once, from Release, to fold the payload back
// into the cache or close it.
type Releaser interface {
	ReleasePayload(id mwmid.ID, payload mwmfile.Payload)
}

// Lease carries an Identifier and, while active, the payload acquired
// for it. A Lease must not be copied after construction - pass it by
// pointer, as returned. Release is idempotent; calling it more than
// once, or on a null Lease, is a no-op.
type Lease struct {
	coordinator Releaser
	id          mwmid.ID
	payload     mwmfile.Payload
	released    bool
}

// New builds an active Lease. Only coordinator.Coordinator calls
// this.
func New(coordinator Releaser, id mwmid.ID, payload mwmfile.Payload) *Lease {
	return &Lease{coordinator: coordinator, id: id, payload: payload}
}

// Null returns an inactive Lease: it carries no payload and its
// Release is a no-op. Returned whenever acquisition does not happen
// (rejected stale registration, not-up-to-date descriptor, unknown
// region).
func Null() *Lease {
	return &Lease{}
}

// Active reports whether the lease carries a live payload.
func (l *Lease) Active() bool {
	return l != nil && l.payload != nil
}

// ID returns the Identifier the lease refers to, or the null ID for
// a nil or fully-null Lease.
func (l *Lease) ID() mwmid.ID {
	if l == nil {
		return mwmid.ID{}
	}
	return l.id
}

// Descriptor returns the descriptor the lease's Identifier refers to,
// or nil.
func (l *Lease) Descriptor() *descriptor.Descriptor {
	return l.ID().Descriptor()
}

// Payload returns the leased payload, or nil for an inactive Lease.
func (l *Lease) Payload() mwmfile.Payload {
	if l == nil {
		return nil
	}
	return l.payload
}

// Release gives the payload back to the coordinator that issued the
// lease. Safe to call on a nil Lease and safe to call more than once.
func (l *Lease) Release() {
	if l == nil || l.released || l.payload == nil {
		return
	}
	l.released = true
	payload := l.payload
	l.payload = nil
	l.coordinator.ReleasePayload(l.id, payload)
}
