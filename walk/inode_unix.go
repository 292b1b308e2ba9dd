//go:build !windows

// inode_unix.go - inode identity for duplicate-hardlink suppression
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package walk

import (
	"fmt"
	"os"
	"syscall"
)

func inodeKey(fi os.FileInfo) string {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d:%d", st.Dev, st.Ino)
}
