// fingerprint.go - parallel fingerprinting of indexed entries
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2

package fingerprint

import (
	"fmt"
	"sync/atomic"

	"github.com/opencoff/fcmp"
	"go.uber.org/zap"
)

// Options controls a fingerprinting pass.
type Options struct {
	TextNormalization  fcmp.TextNormalization
	MaxFingerprintSize int64
	Concurrency        int

	Progress func(done, total int64)
	Log      *zap.Logger
}

// Fingerprint computes, for every entry, a content hash and - for
// Text entries that pass the size gate, or Structured/Spreadsheet
// entries - the SimHash and/or schema signature named in §4.2. Work is
// fanned out across Options.Concurrency workers via fcmp.WorkPool, but
// entries are mutated in place so the slice's order is untouched: the
// caller sees a deterministic, input-order result regardless of which
// worker finished first.
//
// A per-file failure never aborts the pass - it is recorded on the
// entry's FingerprintErr field (§4.2: "fingerprinting failures are
// recorded per-file, never fatal").
func Fingerprint(entries []*fcmp.FileEntry, opt Options) {
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}

	total := int64(len(entries))
	var done atomic.Int64

	pool := fcmp.NewWorkPool(opt.Concurrency, func(_ int, idx int) error {
		fingerprintOne(entries[idx], opt)
		n := done.Add(1)
		if opt.Progress != nil {
			opt.Progress(n, total)
		}
		return nil
	})

	for i := range entries {
		pool.Submit(i)
	}
	pool.Close()
	_ = pool.Wait() // fingerprintOne never returns an error; panics are self-contained per entry
}

// fingerprintOne fills in the hash and, where applicable, the SimHash
// or schema signature for a single entry.
func fingerprintOne(fe *fcmp.FileEntry, opt Options) {
	defer func() {
		if r := recover(); r != nil {
			fe.FingerprintErr = &fcmp.Error{Op: "fingerprint-panic", PathA: fe.AbsPath, Err: panicErr(r)}
		}
	}()

	hash, err := ContentHash(fe.AbsPath)
	if err != nil {
		fe.FingerprintErr = err
		return
	}
	fe.Hash = hash

	if fe.Type == fcmp.Binary || fe.Type == fcmp.Unknown {
		return
	}

	if fe.Type == fcmp.Structured || fe.Type == fcmp.Spreadsheet {
		fe.Schema = SchemaSignature(fe.Columns)
		fe.HasSchema = true
	}

	// SimHash is a line-oriented signature: only Text and Structured
	// entries carry line content worth shingling. Spreadsheet rows are
	// matched on schema + cell equality instead (§4.2, §4.5).
	if fe.Type != fcmp.Text && fe.Type != fcmp.Structured {
		return
	}
	if opt.MaxFingerprintSize > 0 && fe.Size > opt.MaxFingerprintSize {
		return
	}

	sig, err := SimHash(fe.AbsPath, opt.TextNormalization, opt.MaxFingerprintSize)
	if err != nil {
		fe.FingerprintErr = err
		return
	}
	fe.Sig = sig
	fe.HasSig = true
}

func panicErr(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
