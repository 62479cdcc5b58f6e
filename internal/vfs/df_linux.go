// +build linux

package vfs

import "golang.org/x/sys/unix"

// DF returns (total, used, free) bytes of the host volume carrying
// fs_root, via the statfs(2) syscall.
func (fs *FS) DF() (total, used, free uint64, err error) {
	root := fs.Root()
	var st unix.Statfs_t
	if err := unix.Statfs(root, &st); err != nil {
		return 0, 0, 0, errorf("DF", err, "%q", root)
	}
	total = st.Blocks * uint64(st.Bsize)
	free = st.Bfree * uint64(st.Bsize)
	used = total - free
	return total, used, free, nil
}
