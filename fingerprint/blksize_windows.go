//go:build windows

// blksize_windows.go - no cheap block-size hint on windows
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package fingerprint

func statBlksize(path string) int {
	return 0
}
