package wireparser

import "fmt"

// ParseError is the base error type for all wireparser errors.
type ParseError struct {
	Message string
	Pos     Position
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("line %d, col %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Cause }

// LexError represents a tokenizer-level error (unterminated string, bad
// escape, invalid character). Tokenization aborts on the first one.
type LexError struct{ ParseError }

// ParseResult is the outcome of Parse or Compile: the most complete document
// that could be built plus every error recorded along the way. Success is
// false whenever Errors is non-empty; Document may still be non-nil so callers
// can inspect the intact parts.
type ParseResult struct {
	Success  bool
	Document *WireDocument
	Errors   []*ParseError
}
