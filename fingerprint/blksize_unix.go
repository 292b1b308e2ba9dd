//go:build !windows

// blksize_unix.go - device block size via Stat_t
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package fingerprint

import (
	"golang.org/x/sys/unix"
)

// statBlksize reports path's preferred I/O block size via a direct
// unix.Stat call - os.FileInfo.Sys() yields a *syscall.Stat_t, not the
// x/sys/unix type, so we stat independently rather than type-assert.
func statBlksize(path string) int {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0
	}
	return int(st.Blksize)
}
