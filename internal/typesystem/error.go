package typesystem

import "fmt"

// ParseError indicates a malformed type expression
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid type %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func NewParseError(input string, err error) *ParseError {
	return &ParseError{Input: input, Err: err}
}
