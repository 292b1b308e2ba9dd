package fcmp

import "testing"

func TestNormalizeLineEOLFoldingIsGated(t *testing.T) {
	crlf := "hello\r"

	if got := NormalizeLine(crlf, 0); got != crlf {
		t.Fatalf("expected trailing \\r preserved without IgnoreEOL, got %q", got)
	}
	if got := NormalizeLine(crlf, IgnoreEOL); got != "hello" {
		t.Fatalf("expected trailing \\r folded with IgnoreEOL, got %q", got)
	}
}

func TestNormalizeLineWhitespaceAndCaseStillGated(t *testing.T) {
	line := "  Hello World  "

	if got := NormalizeLine(line, 0); got != line {
		t.Fatalf("expected no change without any flags, got %q", got)
	}
	if got := NormalizeLine(line, IgnoreTrailingWhitespace); got != "  Hello World" {
		t.Fatalf("expected only trailing whitespace trimmed, got %q", got)
	}
	if got := NormalizeLine(line, IgnoreCase); got != "  hello world  " {
		t.Fatalf("expected only case folded, got %q", got)
	}
}
