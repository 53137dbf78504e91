package dupkeys

import (
	"errors"
	"fmt"
	"strings"

	eng "github.com/reoring/dupkeys/internal/engine"
)

// Issue codes
const (
	CodeDuplicateKey = "duplicate_key"
	CodeParseError   = "parse_error"
	CodeTruncated    = "truncated"
)

// ParseError describes malformed input: a message plus line, column and byte
// offset when the tokenizer reports them.
type ParseError = eng.ParseError

// Issue represents a single detection entry.
type Issue struct {
	Path    string // dotted key path for duplicate_key; empty for parse errors.
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	Offset  int64 // Byte offset in the input source (-1 when unknown).
	Line    int
	Column  int
}

// Issues is a collection of detection entries that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		if it.Path == "" {
			b.WriteString(it.Code)
			continue
		}
		// e.g. duplicate_key at b.a
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Paths returns the paths of duplicate_key issues in order.
func (iss Issues) Paths() []string {
	var out []string
	for _, it := range iss {
		if it.Code == CodeDuplicateKey {
			out = append(out, it.Path)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// AsParseError extracts a ParseError from err.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IssueFromError maps a detection failure to an Issue; exceeded limits map to
// the truncated code.
func IssueFromError(err error) Issue {
	pe, ok := AsParseError(err)
	if !ok {
		return Issue{Code: CodeParseError, Message: err.Error(), Cause: err, Offset: -1}
	}
	code := CodeParseError
	var le *eng.LimitError
	if errors.As(pe, &le) {
		code = CodeTruncated
	}
	return Issue{Code: code, Message: pe.Error(), Cause: pe, Offset: pe.Offset, Line: pe.Line, Column: pe.Column}
}
