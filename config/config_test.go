// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/mapregistry/config"
)

func writeConfig(t *testing.T, dir, body string) string {
	path := filepath.Join(dir, "mapregistryd.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseFillsDefaultsAndResolvesPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "maps"), 0o755))
	path := writeConfig(t, dir, `
data_directory = "maps"
log = {
  file = "mapregistryd.log",
  level = "info"
}
return {
  data_directory = data_directory,
  log = log
}
`)

	c, err := config.Parse(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "maps"), c.DataDirectory)
	assert.Equal(t, config.DefaultCacheCapacity, c.CacheCapacity)
	assert.Equal(t, "info", c.Log.Level)
}

func TestParseHonorsExplicitCacheCapacity(t *testing.T) {
	dir := t.TempDir()
	mapsDir := filepath.Join(dir, "maps")
	require.NoError(t, os.Mkdir(mapsDir, 0o755))
	path := writeConfig(t, dir, fmt.Sprintf(`
data_directory = %q
cache_capacity = 12
return {
  data_directory = data_directory,
  cache_capacity = cache_capacity
}
`, mapsDir))

	c, err := config.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, 12, c.CacheCapacity)
	assert.Equal(t, mapsDir, c.DataDirectory)
}

func TestParseRejectsMissingDataDirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
cache_capacity = 4
return { cache_capacity = cache_capacity }
`)

	_, err := config.Parse(path)
	assert.Error(t, err)
}

func TestParseRejectsNonExistentDataDirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
data_directory = "does-not-exist"
return { data_directory = data_directory }
`)

	_, err := config.Parse(path)
	assert.Error(t, err)
}

func TestParseRejectsScriptNotReturningTable(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `data_directory = "maps"`)

	_, err := config.Parse(path)
	assert.Error(t, err)
}

func TestParseMissingFile(t *testing.T) {
	_, err := config.Parse(filepath.Join(t.TempDir(), "nope.conf"))
	assert.Error(t, err)
}
