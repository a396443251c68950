// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mwmerr provides a single instance of errors for the map file
// registry so that callers can classify a failure by comparison rather
// than by partial string matches.
package mwmerr

import "fmt"

// error base
type GenericError string

// to allow for different classes of errors
type InvalidError GenericError
type NotFoundError GenericError

// common errors - keep in alphabetic order
var (
	ErrEmptyRegionName = InvalidError("region name is empty")
	ErrInvalidFile     = InvalidError("version probe rejected the local file")
	ErrInvalidScales   = InvalidError("scale range does not classify as country, world or coast")
	ErrNotRegistered   = NotFoundError("region is not registered")
	ErrNotUpToDate     = InvalidError("descriptor is not up to date")
)

func (e GenericError) Error() string { return string(e) }
func (e InvalidError) Error() string { return string(e) }
func (e NotFoundError) Error() string { return string(e) }

// IsErrInvalid reports whether e is an InvalidError.
func IsErrInvalid(e error) bool { _, ok := e.(InvalidError); return ok }

// IsErrNotFound reports whether e is a NotFoundError.
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }

// PayloadFactoryError wraps whatever error the payload factory callback
// returned on a cache-miss lease acquisition. It propagates out of
// Coordinator.Register/GetLockByCountryFile per spec: these are genuinely
// unexpected failures from the external collaborator, not expected
// negative outcomes, so they are surfaced as wrapped errors rather than
// null returns.
type PayloadFactoryError struct {
	RegionName string
	Err        error
}

func (e *PayloadFactoryError) Error() string {
	return fmt.Sprintf("payload factory failed for region %q: %v", e.RegionName, e.Err)
}

func (e *PayloadFactoryError) Unwrap() error { return e.Err }
