// SPDX-License-Identifier: MPL-2.0

// Package platform holds the operating-system facts the index needs when no
// configuration says otherwise.
package platform
