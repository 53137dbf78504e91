// Package gojson provides a token source and Driver backed by goccy/go-json.
package gojson

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	dupkeys "github.com/reoring/dupkeys"
	eng "github.com/reoring/dupkeys/internal/engine"
)

// Driver returns a dupkeys.Driver backed by goccy/go-json.
func Driver() dupkeys.Driver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) NewReader(r io.Reader) dupkeys.Source { return NewReader(r) }
func (driverGoJSON) NewBytes(b []byte) dupkeys.Source     { return NewBytes(b) }
func (driverGoJSON) Name() string                         { return "gojson" }

// ---- engine.TokenSource implementation using go-json Decoder ----

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type source struct {
	r       io.Reader
	dec     *j.Decoder
	stack   []frame
	checked bool
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
// go-json's Token does not check separators, so the input is read in full and
// its first value validated before any token is returned.
func NewReader(r io.Reader) eng.TokenSource {
	return &source{r: r}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

// prepare validates the first value and positions a token decoder at the start.
func (s *source) prepare() error {
	s.checked = true
	data, err := io.ReadAll(s.r)
	if err != nil {
		return err
	}
	check := j.NewDecoder(bytes.NewReader(data))
	var v any
	switch err := check.Decode(&v); {
	case errors.Is(err, io.EOF):
	case err != nil:
		return syntaxError(err)
	default:
		// Token skips stray separators, so trailing bytes are checked here.
		off := check.InputOffset()
		rest := data[off:]
		if trimmed := bytes.TrimLeft(rest, " \t\r\n"); len(trimmed) > 0 {
			at := off + int64(len(rest)-len(trimmed))
			return &eng.SyntaxError{Msg: fmt.Sprintf("invalid character %q after top-level value", trimmed[0]), Offset: at + 1}
		}
	}
	s.dec = j.NewDecoder(bytes.NewReader(data))
	s.dec.UseNumber()
	return nil
}

// syntaxError converts go-json decode errors, whose offsets point at the
// offending byte, into engine errors whose offsets point just past it.
func syntaxError(err error) error {
	var se *j.SyntaxError
	if errors.As(err, &se) {
		return &eng.SyntaxError{Msg: se.Error(), Offset: se.Offset + 1}
	}
	var te *j.UnmarshalTypeError
	if errors.As(err, &te) {
		return &eng.SyntaxError{Msg: "invalid " + te.Value + " where a value or key was expected", Offset: te.Offset + 1}
	}
	return err
}

func (s *source) NextToken() (eng.Token, error) {
	if !s.checked {
		if err := s.prepare(); err != nil {
			return eng.Token{}, err
		}
	}
	if s.dec == nil {
		return eng.Token{}, io.EOF
	}
	tok, err := s.dec.Token()
	if err != nil {
		if err == io.EOF {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, syntaxError(err)
	}
	if s.expectingKey() {
		if _, ok := tok.(string); !ok && tok != j.Delim('}') {
			return eng.Token{}, &eng.SyntaxError{Msg: fmt.Sprintf("expected object key, found %v", tok), Offset: -1}
		}
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return eng.Token{Kind: eng.KindBeginObject, Offset: -1}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return eng.Token{Kind: eng.KindBeginArray, Offset: -1}, nil
		case '}':
			s.pop()
			return eng.Token{Kind: eng.KindEndObject, Offset: -1}, nil
		case ']':
			s.pop()
			return eng.Token{Kind: eng.KindEndArray, Offset: -1}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return eng.Token{Kind: eng.KindKey, String: v, Offset: -1}, nil
			}
		}
		s.valueDone()
		return eng.Token{Kind: eng.KindString, String: v, Offset: -1}, nil
	case bool:
		s.valueDone()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: -1}, nil
	case j.Number:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: -1}, nil
	case float64:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: -1}, nil
	}
	s.valueDone()
	return eng.Token{Kind: eng.KindNull, Offset: -1}, nil
}

// Location is unknown for go-json tokens; syntax errors still carry offsets.
func (s *source) Location() int64 { return -1 }

func (s *source) expectingKey() bool {
	n := len(s.stack)
	return n > 0 && s.stack[n-1].kind == kindObject && s.stack[n-1].expectingKey
}

func (s *source) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

func (s *source) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}
