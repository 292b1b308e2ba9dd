// types.go - shared data model for the comparison engine
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package fcmp implements the core of a local file-comparison engine:
// directory indexing, content fingerprinting, pair generation and
// text/structured/binary comparison. It is meant to be driven by a thin
// CLI or desktop shell; this package has no knowledge of either.
package fcmp

import (
	"fmt"
)

// FileType classifies a discovered file. It is derived once during
// indexing (see the index package) and never re-derived downstream.
type FileType uint8

const (
	Unknown FileType = iota
	Text
	Structured
	Spreadsheet
	Binary
)

func (t FileType) String() string {
	switch t {
	case Text:
		return "text"
	case Structured:
		return "structured"
	case Spreadsheet:
		return "spreadsheet"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// Delimiter identifies the field separator of a Structured file.
type Delimiter byte

const (
	Comma Delimiter = ','
	Tab   Delimiter = '\t'
)

func (d Delimiter) String() string {
	if d == Tab {
		return "tab"
	}
	return "comma"
}

// HashSize is the width, in bytes, of the content hash attached to
// every FileEntry.
const HashSize = 32

// ContentHash is a fixed-width cryptographic digest over a file's raw
// bytes.
type ContentHash [HashSize]byte

// Hex8 returns the first 8 hex characters of the digest - used to build
// a Pair's link identifier.
func (h ContentHash) Hex8() string {
	return fmt.Sprintf("%02x%02x%02x%02x", h[0], h[1], h[2], h[3])
}

func (h ContentHash) String() string {
	return fmt.Sprintf("%x", [HashSize]byte(h))
}

// IsZero reports whether the hash was never computed.
func (h ContentHash) IsZero() bool {
	return h == ContentHash{}
}

// Signature is a 64-bit locality-sensitive (SimHash) signature.
// FileEntry.HasSig reports whether one was computed (it is not for a
// file over max_fingerprint_size or one that is not text-like).
type Signature uint64

// Hamming returns the Hamming distance between two signatures: a value
// in [0, 64].
func (s Signature) Hamming(o Signature) int {
	x := uint64(s) ^ uint64(o)
	n := 0
	for x != 0 {
		x &= x - 1
		n++
	}
	return n
}

// SchemaHash is a fixed-width digest of a tabular file's normalized
// column-header list.
type SchemaHash [HashSize]byte

func (h SchemaHash) IsZero() bool { return h == SchemaHash{} }

// FileEntry is one record per discovered file, shared read-only by
// every stage downstream of Fingerprint.
type FileEntry struct {
	AbsPath string
	RelPath string
	Size    int64

	Type      FileType
	Delimiter Delimiter // valid only when Type == Structured

	Hash      ContentHash
	HasSig    bool
	Sig       Signature
	HasSchema bool
	Schema    SchemaHash

	// Columns holds the detected header row for Structured/Spreadsheet
	// entries, in file order.
	Columns []string

	// FingerprintErr is set by the Fingerprinter when a per-file I/O
	// error occurred; such entries are skipped by Pair and reported as
	// Error results if they reach Compare directly.
	FingerprintErr error
}

func (e *FileEntry) String() string {
	return fmt.Sprintf("%s [%s %d bytes %s]", e.RelPath, e.Type, e.Size, e.Hash.Hex8())
}

// Pairing selects the strategy used by the pair generator.
type Pairing uint8

const (
	SamePath Pairing = iota
	SameName
	AllVsAll
)

func (p Pairing) String() string {
	switch p {
	case SameName:
		return "same-name"
	case AllVsAll:
		return "all-vs-all"
	default:
		return "same-path"
	}
}

// SimilarityAlgorithm selects the scorer used by the text comparator.
type SimilarityAlgorithm uint8

const (
	LineDiff SimilarityAlgorithm = iota
	HammingLines
	LongestCommonSubsequence
	JaccardTokens
	SorensenDiceBigrams
	CosineTermFreq
	TFIDFCosine
	RatcliffObershelp
	NgramTrigram
	Levenshtein
	DamerauLevenshtein
	SmithWaterman
	JaroWinkler
)

// TextNormalization is a bitflag set of line-normalization options.
type TextNormalization uint8

const (
	IgnoreEOL TextNormalization = 1 << iota
	IgnoreTrailingWhitespace
	IgnoreAllWhitespace
	IgnoreCase
	SkipEmptyLines
)

func (f TextNormalization) Has(bit TextNormalization) bool { return f&bit != 0 }

// Pair is a candidate (a, b) comparison unit emitted by the pair
// generator. LinkID is stable across runs: trunc(hash_a):trunc(hash_b).
type Pair struct {
	A, B   *FileEntry
	LinkID string
}

func NewLinkID(a, b ContentHash) string {
	return a.Hex8() + ":" + b.Hex8()
}

// FieldMismatchSample is one recorded example of a structured cell
// disagreement.
type FieldMismatchSample struct {
	Key     string
	ValueA  string
	ValueB  string
}

// FieldMismatch aggregates mismatches for one column.
type FieldMismatch struct {
	Column  string
	Count   int
	Samples []FieldMismatchSample
}

// ResultKind tags the variant held by a ComparisonResult.
type ResultKind uint8

const (
	KindText ResultKind = iota
	KindStructured
	KindHashOnly
	KindError
)

// ErrorKind enumerates the per-pair error kinds from §7 of the spec.
type ErrorKind uint8

const (
	ErrSchema ErrorKind = iota
	ErrIO
	ErrPanic
	ErrTypeMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSchema:
		return "Schema"
	case ErrIO:
		return "Io"
	case ErrPanic:
		return "Panic"
	case ErrTypeMismatch:
		return "TypeMismatch"
	default:
		return "Unknown"
	}
}

// ComparisonResult is a tagged variant over Text/Structured/HashOnly/Error.
// Exactly one of the embedded payloads is meaningful, selected by Kind.
type ComparisonResult struct {
	Kind   ResultKind
	LinkID string
	PathA  string
	PathB  string

	Text       *TextResult
	Structured *StructuredResult
	HashOnly   *HashOnlyResult
	Err        *ErrorResult
}

// TextResult is the payload of a KindText ComparisonResult.
type TextResult struct {
	LinesA, LinesB   int
	Common           int
	OnlyA, OnlyB     int
	Similarity       float64
	Identical        bool
	Algorithm        SimilarityAlgorithm
	AlgorithmFallback bool // true if a size-based substitution occurred, §4.4
	DetailedDiff      string
	DiffTruncated     bool
}

// StructuredResult is the payload of a KindStructured ComparisonResult.
type StructuredResult struct {
	RowsA, RowsB    int
	Common          int
	OnlyA, OnlyB    int
	Similarity      float64
	Identical       bool
	FieldMismatches []FieldMismatch
}

// HashOnlyResult is the payload of a KindHashOnly ComparisonResult.
type HashOnlyResult struct {
	SizeA, SizeB int64
	Identical    bool
}

// ErrorResult is the payload of a KindError ComparisonResult.
type ErrorResult struct {
	Kind    ErrorKind
	Message string
}

// Stage identifies a pipeline phase for progress reporting.
type Stage uint8

const (
	StageIndexing Stage = iota
	StageFingerprinting
	StageMatching
	StageComparing
	StageReporting
)

func (s Stage) String() string {
	switch s {
	case StageFingerprinting:
		return "fingerprinting"
	case StageMatching:
		return "matching"
	case StageComparing:
		return "comparing"
	case StageReporting:
		return "reporting"
	default:
		return "indexing"
	}
}

// ProgressEvent is emitted to the observer on stage transitions and
// per-stage progress.
type ProgressEvent struct {
	Stage      Stage
	Message    string
	Current    int64
	Total      int64
	Percentage float64
}

// Observer is a narrow write-only interface. Implementations must be
// reentrant: Accept is invoked from arbitrary worker goroutines and
// must not block the pipeline.
type Observer interface {
	Accept(ev ProgressEvent)
}

// NopObserver discards every event. It is the default when no observer
// is supplied to Run.
type NopObserver struct{}

func (NopObserver) Accept(ProgressEvent) {}

// Summary aggregates the outcome of a full Run.
type Summary struct {
	TotalA, TotalB int
	PairsCompared  int
	Identical      int
	Different      int
	Errors         int
	AvgSimilarity  float64
	Min, Max       float64
}
