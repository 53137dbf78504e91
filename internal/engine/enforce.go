package engine

// Limits wrapper for TokenSource applying max depth checks and max bytes
// truncation in a streaming fashion.

// Limits controls runtime enforcement. Zero values disable a check.
type Limits struct {
	MaxDepth int
	MaxBytes int64
}

// Limit codes carried by LimitError.
const (
	LimitDepth = "max_depth"
	LimitBytes = "max_bytes"
)

// LimitError is returned when a configured limit is exceeded.
type LimitError struct {
	Code   string
	Msg    string
	Offset int64
}

func (e *LimitError) Error() string { return e.Msg }

// WrapWithLimits returns a TokenSource that enforces maximum nesting depth and
// maximum consumed bytes.
func WrapWithLimits(inner TokenSource, l Limits) TokenSource {
	return &limitingTokenSource{inner: inner, limits: l}
}

type limitingTokenSource struct {
	inner  TokenSource
	limits Limits
	depth  int
}

func (e *limitingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		e.depth++
		if e.limits.MaxDepth > 0 && e.depth > e.limits.MaxDepth {
			return Token{}, &LimitError{Code: LimitDepth, Msg: "max depth exceeded", Offset: tok.Offset}
		}
	case KindEndObject, KindEndArray:
		if e.depth > 0 {
			e.depth--
		}
	}

	if e.limits.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.limits.MaxBytes {
			return Token{}, &LimitError{Code: LimitBytes, Msg: "max bytes exceeded", Offset: off}
		}
	}

	return tok, nil
}

func (e *limitingTokenSource) Location() int64 { return e.inner.Location() }

// CheckSize rejects a complete document of n bytes that exceeds MaxBytes. It
// covers tokenizers that cannot report a location.
func (l Limits) CheckSize(n int64) *ParseError {
	if l.MaxBytes <= 0 || n <= l.MaxBytes {
		return nil
	}
	le := &LimitError{Code: LimitBytes, Msg: "max bytes exceeded", Offset: l.MaxBytes + 1}
	return &ParseError{Message: le.Msg, Offset: le.Offset, Err: le}
}
