// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mwmio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/mapregistry/mwmfile"
	"github.com/bitmark-inc/mapregistry/mwmio"
)

func writeMapFile(t *testing.T, minScale, maxScale byte, body string) mwmfile.LocalFile {
	path := filepath.Join(t.TempDir(), "de-1.mwm")
	content := append([]byte{minScale, 0, maxScale, 0}, []byte(body)...)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return mwmfile.LocalFile{RegionName: "de", Version: 1, Path: path}
}

func TestProbeReadsHeader(t *testing.T) {
	file := writeMapFile(t, 1, 17, "payload-bytes")

	minScale, maxScale, ok := mwmio.Probe(file)
	require.True(t, ok)
	assert.Equal(t, 1, minScale)
	assert.Equal(t, 17, maxScale)
}

func TestProbeRejectsMissingFile(t *testing.T) {
	_, _, ok := mwmio.Probe(mwmfile.LocalFile{Path: "/does/not/exist.mwm"})
	assert.False(t, ok)
}

func TestFactoryOpensPastHeader(t *testing.T) {
	file := writeMapFile(t, 0, 10, "rest-of-file")

	payload, err := mwmio.Factory(file)
	require.NoError(t, err)
	defer payload.Close()

	fp := payload.(*mwmio.FilePayload)
	buf := make([]byte, len("rest-of-file"))
	n, err := fp.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "rest-of-file", string(buf[:n]))
}
