// +build !linux

package vfs

// DF returns (total, used, free) bytes. Non-Linux builds report zeros
// rather than link in a platform-specific statfs binding; df is diagnostic
// only and no invariant in this package depends on real values.
func (fs *FS) DF() (total, used, free uint64, err error) {
	return 0, 0, 0, nil
}
