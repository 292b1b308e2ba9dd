// content.go - streaming content hash
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

// Package fingerprint implements spec §4.2: content hashing, SimHash
// similarity signatures, and schema signatures for structured files.
package fingerprint

import (
	"io"
	"os"

	"github.com/opencoff/fcmp"
	"golang.org/x/crypto/blake2b"
)

// defaultChunkSize bounds the read buffer used while streaming a
// file's content through the hasher, per §4.2: "constant memory,
// chunks no larger than 16 KiB". blksizeFor may return a smaller,
// device-informed size; it never exceeds this cap.
const defaultChunkSize = 16 << 10

// ContentHash streams path through a blake2b-256 hasher in
// device-block-sized chunks and returns its digest. Memory use is
// bounded by the chunk size regardless of file size.
func ContentHash(path string) (fcmp.ContentHash, error) {
	var zero fcmp.ContentHash

	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return zero, err
	}

	buf := make([]byte, blksizeFor(path))
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return zero, err
	}

	var sum fcmp.ContentHash
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// blksizeFor returns a chunk size informed by the underlying
// filesystem's preferred block size (via Stat_t.Blksize), clamped to
// defaultChunkSize. Falls back to defaultChunkSize if the block size
// cannot be determined or is unreasonable.
func blksizeFor(path string) int {
	bs := statBlksize(path)
	if bs <= 0 || bs > defaultChunkSize {
		return defaultChunkSize
	}
	return bs
}
