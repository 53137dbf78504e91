package engine

import (
	"errors"
	"fmt"
)

// ErrIncomplete is returned by Detector.Result before the scan reached End or
// a parse error.
var ErrIncomplete = errors.New("engine: scan has not completed")

// ParseError describes malformed input. Line and Column are 1-based and are
// only known once Locate has been called with the document bytes (0 otherwise).
// Offset is the byte offset reported by the tokenizer (-1 when unknown).
type ParseError struct {
	Message string
	Line    int
	Column  int
	Offset  int64
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s (line %d, column %d, offset %d)", e.Message, e.Line, e.Column, e.Offset)
	case e.Offset >= 0:
		return fmt.Sprintf("%s (offset %d)", e.Message, e.Offset)
	default:
		return e.Message
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// Locate fills Line and Column from the byte offset using data, the full
// document the offset refers to.
func (e *ParseError) Locate(data []byte) {
	if e == nil || e.Offset < 0 {
		return
	}
	e.Line, e.Column = position(data, e.Offset)
}

// position maps a tokenizer offset ("bytes consumed when the error was seen")
// to the line and column of the offending byte.
func position(data []byte, offset int64) (line, col int) {
	idx := int(offset) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(data) {
		idx = len(data)
	}
	line, lineStart := 1, 0
	for i := 0; i < idx; i++ {
		if data[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, idx - lineStart + 1
}

// toParseError normalizes tokenizer and limit errors into a ParseError.
func toParseError(err error, fallbackOffset int64) *ParseError {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe
	}
	var se *SyntaxError
	if errors.As(err, &se) {
		return &ParseError{Message: se.Msg, Offset: se.Offset, Err: err}
	}
	var le *LimitError
	if errors.As(err, &le) {
		return &ParseError{Message: le.Msg, Offset: le.Offset, Err: err}
	}
	return &ParseError{Message: err.Error(), Offset: fallbackOffset, Err: err}
}
