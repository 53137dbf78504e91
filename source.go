package dupkeys

import (
	"io"
	"sync"

	eng "github.com/reoring/dupkeys/internal/engine"
	jsonsrc "github.com/reoring/dupkeys/source/json"
)

// TokenKind enumerates token kinds delivered by a Source.
type TokenKind = eng.Kind

const (
	TokenBeginObject TokenKind = eng.KindBeginObject
	TokenEndObject   TokenKind = eng.KindEndObject
	TokenBeginArray  TokenKind = eng.KindBeginArray
	TokenEndArray    TokenKind = eng.KindEndArray
	TokenKey         TokenKind = eng.KindKey
	TokenString      TokenKind = eng.KindString
	TokenNumber      TokenKind = eng.KindNumber
	TokenBool        TokenKind = eng.KindBool
	TokenNull        TokenKind = eng.KindNull
)

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token = eng.Token

// SyntaxError is the error custom sources return for malformed input so that
// the offset reaches the ParseError.
type SyntaxError = eng.SyntaxError

// Source abstracts over tokenizers. NextToken returns io.EOF at end of input.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// Driver converts raw input into a Source. The default implementation is based
// on encoding/json and may be swapped with SetDriver.
type Driver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	driverMu      sync.RWMutex
	currentDriver Driver = defaultDriver{}
)

// SetDriver replaces the global driver; nil values are ignored.
func SetDriver(d Driver) {
	if d == nil {
		return
	}
	driverMu.Lock()
	currentDriver = d
	driverMu.Unlock()
}

// UseDefaultDriver restores the default encoding/json-backed driver.
func UseDefaultDriver() {
	driverMu.Lock()
	currentDriver = defaultDriver{}
	driverMu.Unlock()
}

// CurrentDriver returns the global driver.
func CurrentDriver() Driver {
	driverMu.RLock()
	d := currentDriver
	driverMu.RUnlock()
	return d
}

// DefaultDriver returns the encoding/json-backed driver.
func DefaultDriver() Driver { return defaultDriver{} }

type defaultDriver struct{}

func (defaultDriver) NewReader(r io.Reader) Source { return jsonsrc.NewReader(r) }
func (defaultDriver) NewBytes(b []byte) Source     { return jsonsrc.NewBytes(b) }
func (defaultDriver) Name() string                 { return "json" }

// JSONReader wraps an io.Reader as a Source using the current driver.
func JSONReader(r io.Reader) Source { return CurrentDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a Source using the current driver.
func JSONBytes(b []byte) Source { return CurrentDriver().NewBytes(b) }
