// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package descriptor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/mapregistry/descriptor"
	"github.com/bitmark-inc/mapregistry/mwmerr"
	"github.com/bitmark-inc/mapregistry/mwmfile"
)

func file() mwmfile.LocalFile {
	return mwmfile.LocalFile{RegionName: "de", Version: 10, Path: "/maps/de-10.mwm"}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		name     string
		minScale int
		maxScale int
		want     descriptor.Kind
	}{
		{"country", 1, 17, descriptor.KindCountry},
		{"world", 0, descriptor.UpperWorldScale, descriptor.KindWorld},
		{"coast", 0, descriptor.UpperScale, descriptor.KindCoast},
	}

	for _, c := range cases {
		d := descriptor.New(file(), c.minScale, c.maxScale)
		kind, err := d.Kind()
		require.NoError(t, err)
		assert.Equal(t, c.want, kind, c.name)
	}
}

func TestKindClassificationInvalid(t *testing.T) {
	d := descriptor.New(file(), 0, 5)
	_, err := d.Kind()
	assert.Equal(t, mwmerr.ErrInvalidScales, err)
}

func TestNewDescriptorIsRegisteredAndUpToDate(t *testing.T) {
	d := descriptor.New(file(), 0, descriptor.UpperWorldScale)
	assert.Equal(t, descriptor.StatusRegistered, d.Status())
	assert.True(t, d.IsUpToDate())
	assert.Equal(t, 0, d.LeaseCount())
}

func TestLeaseCountRoundTrip(t *testing.T) {
	d := descriptor.New(file(), 0, descriptor.UpperWorldScale)
	d.IncrementLeaseCount()
	d.IncrementLeaseCount()
	assert.Equal(t, 2, d.LeaseCount())
	d.DecrementLeaseCount()
	assert.Equal(t, 1, d.LeaseCount())
}

func TestDecrementBelowZeroPanics(t *testing.T) {
	d := descriptor.New(file(), 0, descriptor.UpperWorldScale)
	assert.Panics(t, func() { d.DecrementLeaseCount() })
}

func TestStatusTransitions(t *testing.T) {
	d := descriptor.New(file(), 0, descriptor.UpperWorldScale)

	d.SetStatus(descriptor.StatusMarkedForDeregister)
	assert.False(t, d.IsUpToDate())

	d.Reregister()
	assert.True(t, d.IsUpToDate())

	d.SetStatus(descriptor.StatusDeregistered)
	assert.False(t, d.IsUpToDate())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "registered", descriptor.StatusRegistered.String())
	assert.Equal(t, "marked-for-deregister", descriptor.StatusMarkedForDeregister.String())
	assert.Equal(t, "deregistered", descriptor.StatusDeregistered.String())
}
