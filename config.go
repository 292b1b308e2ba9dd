// config.go - process-wide comparison configuration
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

package fcmp

import (
	"fmt"
	"os"
	"runtime"

	"github.com/grafana/regexp"
	"github.com/grafana/regexp/syntax"
	"github.com/pelletier/go-toml/v2"
)

// CompareMode overrides the per-pair type resolution that Pair would
// otherwise derive from FileType.
type CompareMode uint8

const (
	ModeAuto CompareMode = iota
	ModeForceText
	ModeForceStructured
)

// regexCompiledCap and regexDFACap are the two safety caps from §4.4:
// a compiled-size cap and a DFA-size (program instruction count) cap,
// both 1 MiB.
const (
	regexCompiledCap = 1 << 20
	regexDFACap      = 1 << 20
)

// CompareConfig is process-wide, read-only configuration. It is shared
// by reference across every task in every phase once built; nothing
// downstream mutates it.
type CompareConfig struct {
	Mode    CompareMode `toml:"mode"`
	Pairing Pairing     `toml:"pairing"`

	TopK     int `toml:"top_k"`
	MaxPairs int `toml:"max_pairs"` // 0 means unbounded

	KeyColumns     []string `toml:"key_columns"`
	IgnoreColumns  []string `toml:"ignore_columns"`
	NumericTolerance float64 `toml:"numeric_tolerance"`

	SimilarityAlgorithm SimilarityAlgorithm `toml:"similarity_algorithm"`
	TextNormalization   TextNormalization   `toml:"text_normalization"`

	IgnoreRegexSrc string `toml:"ignore_regex"`
	// compiledIgnoreRegex is populated by Validate(); nil if unset or
	// degraded (too large, invalid syntax).
	compiledIgnoreRegex *regexp.Regexp

	ExcludePatterns []string `toml:"exclude_patterns"`

	MaxDiffBytes       int64 `toml:"max_diff_bytes"`
	MaxFingerprintSize int64 `toml:"max_fingerprint_size"`

	// SignatureLessConfidence scales the estimated-similarity score used
	// to rank all-vs-all candidates when neither side carries a
	// locality-sensitive signature (§9 open question: the literal 0.3
	// constant is retained as the default but made configurable).
	SignatureLessConfidence float64 `toml:"signatureless_confidence"`

	Concurrency int `toml:"concurrency"`
}

// IgnoreRegex returns the compiled ignore_regex, or nil if none was
// configured or it was degraded away by Validate.
func (c *CompareConfig) IgnoreRegex() *regexp.Regexp {
	return c.compiledIgnoreRegex
}

// Default returns the baseline configuration. Every numeric default
// matches the conservative reading of spec.md §3.
func Default() *CompareConfig {
	return &CompareConfig{
		Mode:                    ModeAuto,
		Pairing:                 SamePath,
		TopK:                    10,
		MaxPairs:                0,
		NumericTolerance:        0,
		SimilarityAlgorithm:     LineDiff,
		TextNormalization:       0,
		MaxDiffBytes:            1 << 20,
		MaxFingerprintSize:      64 << 20,
		SignatureLessConfidence: 0.3,
		Concurrency:             runtime.NumCPU(),
	}
}

// maxTopK is the clamp named in §3: "top_k ... clamped to a small
// maximum, e.g. 100".
const maxTopK = 100

// Validate normalizes and range-checks a config in place: clamps TopK,
// compiles (and safety-checks) IgnoreRegexSrc, and fills in zero-value
// fields with defaults. A warn func (may be nil) receives human
// readable degrade notices, matching the RegexInvalid/RegexTooLarge
// degrade policy in §7: compile failures never abort, they silently
// fall back to "no regex".
func (c *CompareConfig) Validate(warn func(string)) error {
	if warn == nil {
		warn = func(string) {}
	}

	if c.TopK <= 0 {
		c.TopK = 10
	}
	if c.TopK > maxTopK {
		c.TopK = maxTopK
	}
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.NumCPU()
	}
	if c.SignatureLessConfidence <= 0 {
		c.SignatureLessConfidence = 0.3
	}
	if c.MaxFingerprintSize <= 0 {
		c.MaxFingerprintSize = 64 << 20
	}
	if c.NumericTolerance < 0 {
		return fmt.Errorf("fcmp: numeric_tolerance must be >= 0, got %v", c.NumericTolerance)
	}

	if c.IgnoreRegexSrc != "" {
		re, err := compileSafeRegex(c.IgnoreRegexSrc)
		if err != nil {
			warn(fmt.Sprintf("ignore_regex degraded to no-regex: %s", err))
			c.compiledIgnoreRegex = nil
		} else {
			c.compiledIgnoreRegex = re
		}
	}

	return nil
}

// compileSafeRegex compiles src with the two caps from §4.4: a
// compiled-size cap (raw pattern length, a cheap proxy that rejects
// pathological input before it ever reaches the engine) and a DFA-size
// cap enforced by walking the parsed syntax tree and counting compiled
// program instructions via regexp/syntax - the same package grafana/regexp
// forks its engine from, so the instruction count it reports matches
// what grafana/regexp will actually run.
func compileSafeRegex(src string) (*regexp.Regexp, error) {
	if len(src) > regexCompiledCap {
		return nil, fmt.Errorf("pattern exceeds %d byte compiled-size cap", regexCompiledCap)
	}

	parsed, err := syntax.Parse(src, syntax.Perl)
	if err != nil {
		return nil, err
	}
	prog, err := syntax.Compile(parsed)
	if err != nil {
		return nil, err
	}
	if len(prog.Inst) > regexDFACap {
		return nil, fmt.Errorf("pattern compiles to %d instructions, exceeds %d DFA-size cap", len(prog.Inst), regexDFACap)
	}

	return regexp.Compile(src)
}

// Load reads a TOML-encoded CompareConfig from path and validates it.
func Load(path string) (*CompareConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{"config-read", path, "", err}
	}

	cfg := Default()
	if err := toml.Unmarshal(b, cfg); err != nil {
		return nil, &Error{"config-parse", path, "", err}
	}
	if err := cfg.Validate(nil); err != nil {
		return nil, &Error{"config-validate", path, "", err}
	}
	return cfg, nil
}
