//go:build unix
// +build unix

package trash

import "golang.org/x/sys/unix"

// sameDevice reports whether both paths live on the same filesystem, so a
// rename into the bin is possible without copying.
func sameDevice(a, b string) bool {
	var sa, sb unix.Stat_t
	if err := unix.Lstat(a, &sa); err != nil {
		return false
	}
	if err := unix.Stat(b, &sb); err != nil {
		return false
	}
	return sa.Dev == sb.Dev
}
