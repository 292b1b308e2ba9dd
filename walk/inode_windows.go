//go:build windows

// inode_windows.go - inode identity is unavailable cheaply on windows
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package walk

import "os"

func inodeKey(fi os.FileInfo) string {
	return ""
}
