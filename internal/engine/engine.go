package engine

import "fmt"

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindBeginObject:
		return "begin_object"
	case KindEndObject:
		return "end_object"
	case KindBeginArray:
		return "begin_array"
	case KindEndArray:
		return "end_array"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// isScalar reports whether the kind is a leaf value.
func (k Kind) isScalar() bool {
	switch k {
	case KindString, KindNumber, KindBool, KindNull:
		return true
	}
	return false
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
// NextToken returns io.EOF once the input is exhausted.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// SyntaxError is returned by token sources for malformed input. Offset is the
// number of bytes consumed when the error was detected (-1 when unknown).
type SyntaxError struct {
	Msg    string
	Offset int64
}

func (e *SyntaxError) Error() string { return e.Msg }
