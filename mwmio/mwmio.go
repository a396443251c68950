// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mwmio provides the concrete mwmfile.Probe and mwmfile.
// Factory a real daemon wires into coordinator.Coordinator: reading a
// file's scale-range header and opening its content as the leased
// payload.
//
// The binary format this package reads is local to this repository -
// a four-byte little-endian (min-scale, max-scale) header - not the
// real-world map file format the original system parses; parsing
// that format's actual content is out of scope for this module.
package mwmio

import (
	"encoding/binary"
	"os"

	"github.com/bitmark-inc/mapregistry/mwmfile"
)

// headerSize is the length, in bytes, of the scale-range header every
// map file is expected to start with.
const headerSize = 4

// Probe implements mwmfile.Probe by reading the file's scale-range
// header. ok is false if the file cannot be opened or is shorter than
// the header.
func Probe(file mwmfile.LocalFile) (minScale, maxScale int, ok bool) {
	f, err := os.Open(file.Path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	header := make([]byte, headerSize)
	if _, err := readFull(f, header); err != nil {
		return 0, 0, false
	}
	minScale = int(binary.LittleEndian.Uint16(header[0:2]))
	maxScale = int(binary.LittleEndian.Uint16(header[2:4]))
	return minScale, maxScale, true
}

func readFull(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// FilePayload is an open file handle leased out as a payload; Close
// releases the underlying descriptor.
type FilePayload struct {
	*os.File
}

// Close satisfies mwmfile.Payload. Errors closing the file are not
// actionable by the caller, so they are dropped, matching the
// teacher's handle-release helpers which log rather than propagate.
func (p *FilePayload) Close() {
	p.File.Close()
}

// Factory implements mwmfile.Factory by opening the file's content
// for reading, positioned past the scale-range header.
func Factory(file mwmfile.LocalFile) (mwmfile.Payload, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(headerSize, 0); err != nil {
		f.Close()
		return nil, err
	}
	return &FilePayload{File: f}, nil
}
