// SPDX-License-Identifier: MPL-2.0

package config

import "sync/atomic"

// configDirOverride replaces the platform configuration directory when set.
var configDirOverride atomic.Pointer[string]

// SetConfigDirOverride makes ConfigDir return dir until the returned restore
// function runs. Intended for tests:
//
//	t.Cleanup(config.SetConfigDirOverride(t.TempDir()))
func SetConfigDirOverride(dir string) (restore func()) {
	prev := configDirOverride.Swap(&dir)
	return func() { configDirOverride.Store(prev) }
}

func overriddenConfigDir() (string, bool) {
	if p := configDirOverride.Load(); p != nil && *p != "" {
		return *p, true
	}
	return "", false
}
