// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// CaseSensitivePaths reports whether the default filesystem of goos compares
// path names case-sensitively. Windows and macOS default to case-insensitive
// volumes.
func CaseSensitivePaths(goos string) bool {
	switch goos {
	case Windows, Darwin:
		return false
	default:
		return true
	}
}

// HostCaseSensitivePaths is CaseSensitivePaths for the running system.
func HostCaseSensitivePaths() bool {
	return CaseSensitivePaths(runtime.GOOS)
}
