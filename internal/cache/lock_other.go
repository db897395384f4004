//go:build !unix

package cache

import "os"

// Advisory locking is best-effort; platforms without flock rely on the
// temp-file-plus-rename publish for consistency.
func lockFile(_ *os.File, _ bool) error { return nil }

func unlockFile(_ *os.File) {}
