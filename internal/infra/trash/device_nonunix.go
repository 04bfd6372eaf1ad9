//go:build !unix
// +build !unix

package trash

// sameDevice pessimistically reports false on non-unix platforms; Discard
// falls back to copy+remove, which is always correct.
func sameDevice(a, b string) bool {
	_ = a
	_ = b
	return false
}
