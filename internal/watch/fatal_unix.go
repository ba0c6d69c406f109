// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import "syscall"

// fatalErrnos are inotify resource exhaustion errors. After one of them the
// watcher silently misses events, so Run stops instead of limping on.
var fatalErrnos = []error{
	syscall.ENOSPC, // fs.inotify.max_user_watches reached
	syscall.EMFILE,
	syscall.ENFILE,
}
