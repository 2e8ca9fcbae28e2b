package errors

import "fmt"

// ParseError wraps a specific error with context about where it occurred.
type ParseError struct {
	Source string
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: parse error at line %d: %v (record: %v)", e.Source, e.Line, e.Err, e.Record)
	}
	return fmt.Sprintf("parse error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Define specific error types for better error handling
var (
	ErrDuplicateHeader = fmt.Errorf("duplicate header")
	ErrInvalidScenario = fmt.Errorf("invalid scenario parameters")
	ErrUnknownField    = fmt.Errorf("unknown field")
	ErrUnknownFormat   = fmt.Errorf("unknown format")
	ErrCaseNotFound    = fmt.Errorf("case not found")
)
