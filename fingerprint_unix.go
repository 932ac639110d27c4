//go:build unix

package ignoretree

import (
	"io/fs"
	"syscall"
)

// statIdentity extracts inode and ownership from a stat result. These
// are the fields that catch an inode reused by a fast delete-and-create
// even when size and mtime line up.
func statIdentity(info fs.FileInfo) (inode uint64, uid, gid uint32) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		// In-memory filesystems carry no identity beyond size/mtime/mode.
		return 0, 0, 0
	}
	return uint64(st.Ino), st.Uid, st.Gid
}
