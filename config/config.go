// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config reads the Lua configuration file cmd/mapregistryd
// starts from.
package config

import (
	"os"
	"path/filepath"

	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"
)

// Logging describes where and how verbosely the daemon logs. It maps
// directly onto the fields github.com/bitmark-inc/logger.Configuration
// expects, so cmd/mapregistryd can build one from the other field by
// field rather than reinventing log rotation settings.
type Logging struct {
	Directory string `gluamapper:"directory" json:"directory"`
	File      string `gluamapper:"file" json:"file"`
	Size      int    `gluamapper:"size" json:"size"`
	Count     int    `gluamapper:"count" json:"count"`
	Level     string `gluamapper:"level" json:"level"`
}

// Configuration is the top-level shape of a mapregistryd Lua
// configuration file:
//
//	data_directory = "/var/lib/mapregistryd/maps"
//	cache_capacity = 64
//	log = {
//	  file  = "/var/log/mapregistryd/mapregistryd.log",
//	  level = "info"
//	}
//	return { data_directory = data_directory, cache_capacity = cache_capacity, log = log }
type Configuration struct {
	DataDirectory string  `gluamapper:"data_directory" json:"data_directory"`
	CacheCapacity int     `gluamapper:"cache_capacity" json:"cache_capacity"`
	Log           Logging `gluamapper:"log" json:"log"`
}

// Defaults used when a configuration file omits the corresponding
// field or sets it to zero.
const (
	DefaultCacheCapacity = 64
	DefaultLogSize       = 1 * 1024 * 1024
	DefaultLogCount      = 10
	DefaultLogLevel      = "info"
)

// Parse executes fileName as a Lua script into a Configuration,
// resolves DataDirectory to an absolute path (relative to fileName's
// directory) and fills in any field left unset.
func Parse(fileName string) (*Configuration, error) {
	c := &Configuration{}
	if err := parseFile(fileName, c); err != nil {
		return nil, err
	}

	if c.DataDirectory == "" {
		return nil, errMissingDataDirectory
	}
	c.DataDirectory = ensureAbsolute(filepath.Dir(fileName), c.DataDirectory)
	if !fileExists(c.DataDirectory) {
		return nil, errDataDirectoryNotFound
	}

	if c.CacheCapacity <= 0 {
		c.CacheCapacity = DefaultCacheCapacity
	}
	if c.Log.Size <= 0 {
		c.Log.Size = DefaultLogSize
	}
	if c.Log.Count <= 0 {
		c.Log.Count = DefaultLogCount
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	return c, nil
}

// parseFile executes fileName as a Lua script and maps its returned
// table onto out, which must be a non-nil pointer to a struct.
func parseFile(fileName string, out interface{}) error {
	L := lua.NewState()
	defer L.Close()
	L.OpenLibs()

	arg := &lua.LTable{}
	arg.Insert(0, lua.LString(fileName))
	L.SetGlobal("arg", arg)

	if err := L.DoFile(fileName); err != nil {
		return err
	}

	table, ok := L.Get(L.GetTop()).(*lua.LTable)
	if !ok {
		return errScriptMustReturnTable
	}

	mapper := gluamapper.Mapper{Option: gluamapper.Option{
		NameFunc: func(s string) string { return s },
		TagName:  "gluamapper",
	}}
	return mapper.Map(table, out)
}

// ensureAbsolute resolves filePath against directory if it is not
// already absolute.
func ensureAbsolute(directory, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}

// fileExists reports whether name can be stat'd.
func fileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

type configError string

func (e configError) Error() string { return string(e) }

var (
	errScriptMustReturnTable = configError("config: configuration script must return a table")
	errMissingDataDirectory  = configError("config: data_directory must not be empty")
	errDataDirectoryNotFound = configError("config: data_directory does not exist")
)
