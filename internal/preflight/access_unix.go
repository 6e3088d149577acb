//go:build !windows

package preflight

import "golang.org/x/sys/unix"

// accessReadWrite checks effective read/write/search permission on the
// directory without opening anything.
func accessReadWrite(path string) error {
	return unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK)
}
