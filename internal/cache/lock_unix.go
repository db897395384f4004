//go:build unix

package cache

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an advisory lock on the open file, shared for readers
// and exclusive for writers. The lock coordinates with other processes
// sharing the durable store directory.
func lockFile(f *os.File, exclusive bool) error {
	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	return unix.Flock(int(f.Fd()), how)
}

func unlockFile(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
