// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package descriptor holds the per-file record the registry keeps for
// each registered version of a region: its source file, the
// scale range it classifies under, its lifecycle status and lease
// count.
//
// A Descriptor has no lock of its own. Every mutating method must only
// be called while the owning coordinator.Coordinator holds its mutex;
// the comment on each mutator below repeats this so a reader never
// has to chase the invariant back to this paragraph.
package descriptor

import (
	"github.com/bitmark-inc/mapregistry/mwmerr"
	"github.com/bitmark-inc/mapregistry/mwmfile"
)

// Status is the lifecycle state of a Descriptor.
type Status int

const (
	// StatusRegistered - current, in-sequence entry for its region;
	// eligible to be leased.
	StatusRegistered Status = iota
	// StatusMarkedForDeregister - deregistration requested while
	// leases were outstanding; becomes StatusDeregistered once the
	// lease count returns to zero.
	StatusMarkedForDeregister
	// StatusDeregistered - terminal. No longer reachable by Lookup.
	StatusDeregistered
)

func (s Status) String() string {
	switch s {
	case StatusRegistered:
		return "registered"
	case StatusMarkedForDeregister:
		return "marked-for-deregister"
	case StatusDeregistered:
		return "deregistered"
	default:
		return "unknown"
	}
}

// Kind classifies a descriptor by its scale range.
type Kind int

const (
	KindCountry Kind = iota
	KindWorld
	KindCoast
)

func (k Kind) String() string {
	switch k {
	case KindCountry:
		return "country"
	case KindWorld:
		return "world"
	case KindCoast:
		return "coast"
	default:
		return "unknown"
	}
}

// Scale boundaries a descriptor's max-scale is compared against to
// derive its Kind. Named after scales::GetUpperWorldScale() and
// scales::GetUpperScale() in the original map-rendering scale table.
const (
	UpperWorldScale = 10
	UpperScale      = 17
)

// Descriptor is the record a registry.Registry keeps for one
// registered version of a region.
type Descriptor struct {
	file       mwmfile.LocalFile
	minScale   int
	maxScale   int
	status     Status
	leaseCount int
}

// New builds a Descriptor in StatusRegistered. Callers outside this
// module reach this only indirectly, through registry.Registry.
func New(file mwmfile.LocalFile, minScale, maxScale int) *Descriptor {
	return &Descriptor{
		file:     file,
		minScale: minScale,
		maxScale: maxScale,
		status:   StatusRegistered,
	}
}

func (d *Descriptor) RegionName() string { return d.file.RegionName }
func (d *Descriptor) Version() int64 { return d.file.Version }
func (d *Descriptor) SourceFile() mwmfile.LocalFile { return d.file }
func (d *Descriptor) MinScale() int { return d.minScale }
func (d *Descriptor) MaxScale() int { return d.maxScale }
func (d *Descriptor) Status() Status { return d.status }
func (d *Descriptor) LeaseCount() int { return d.leaseCount }

// IsUpToDate reports whether the descriptor is still the current,
// leasable entry for its region.
func (d *Descriptor) IsUpToDate() bool {
	return d.status == StatusRegistered
}

// Kind derives the descriptor's classification from its scale range.
// Returns mwmerr.ErrInvalidScales if the range matches none of
// country, world or coast.
func (d *Descriptor) Kind() (Kind, error) {
	switch {
	case d.minScale > 0:
		return KindCountry, nil
	case d.maxScale == UpperWorldScale:
		return KindWorld, nil
	case d.maxScale == UpperScale:
		return KindCoast, nil
	default:
		return 0, mwmerr.ErrInvalidScales
	}
}

// SetStatus transitions the descriptor. Caller must hold the
// coordinator's lock.
func (d *Descriptor) SetStatus(s Status) {
	d.status = s
}

// Reregister resets a descriptor back to StatusRegistered, used on
// the duplicate-version-registration branch where the incoming file
// matches the current version exactly. Caller must hold the
// coordinator's lock.
func (d *Descriptor) Reregister() {
	d.status = StatusRegistered
}

// IncrementLeaseCount records a new outstanding lease. Caller must
// hold the coordinator's lock.
func (d *Descriptor) IncrementLeaseCount() {
	d.leaseCount++
}

// DecrementLeaseCount records a released lease. Panics if the lease
// count is already zero - that is an invariant violation in the
// caller, not a recoverable condition. Caller must hold the
// coordinator's lock.
func (d *Descriptor) DecrementLeaseCount() {
	if d.leaseCount == 0 {
		panic("descriptor: decrementing a lease count that is already zero")
	}
	d.leaseCount--
}
