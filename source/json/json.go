// Package json provides the default encoding/json-backed token source.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	eng "github.com/reoring/dupkeys/internal/engine"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type jsonSource struct {
	dec        *json.Decoder
	stack      []frame
	lastOffset int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if err == io.EOF {
			return eng.Token{}, io.EOF
		}
		var se *json.SyntaxError
		if errors.As(err, &se) {
			return eng.Token{}, &eng.SyntaxError{Msg: se.Error(), Offset: s.errorOffset(se)}
		}
		return eng.Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return s.token(eng.KindBeginObject), nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return s.token(eng.KindBeginArray), nil
		case '}':
			s.pop()
			return s.token(eng.KindEndObject), nil
		case ']':
			s.pop()
			return s.token(eng.KindEndArray), nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				t := s.token(eng.KindKey)
				t.String = v
				return t, nil
			}
		}
		s.valueDone()
		t := s.token(eng.KindString)
		t.String = v
		return t, nil
	case bool:
		s.valueDone()
		t := s.token(eng.KindBool)
		t.Bool = v
		return t, nil
	case json.Number:
		s.valueDone()
		t := s.token(eng.KindNumber)
		t.Number = string(v)
		return t, nil
	case float64:
		s.valueDone()
		t := s.token(eng.KindNumber)
		t.Number = strconv.FormatFloat(v, 'g', -1, 64)
		return t, nil
	}

	s.valueDone()
	return s.token(eng.KindNull), nil
}

func (s *jsonSource) Location() int64 { return s.lastOffset }

func (s *jsonSource) token(k eng.Kind) eng.Token {
	return eng.Token{Kind: k, Offset: s.lastOffset}
}

// pop closes the innermost container; the enclosing object then expects a key.
func (s *jsonSource) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

// valueDone marks the pending member value of the enclosing object as read.
func (s *jsonSource) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

// tokenOnlyContexts are the messages the Decoder emits for a misplaced
// delimiter or value; the offending byte is the next unread one.
var tokenOnlyContexts = []string{
	" after array element",
	" looking for beginning of object key string",
	" after object key",
	" after object key:value pair",
}

// errorOffset returns the document offset just past the byte that caused se.
// Decoder.Token reports scanner errors relative to an internal counter, so the
// failing value is rescanned from the Decoder's read position instead.
func (s *jsonSource) errorOffset(se *json.SyntaxError) int64 {
	at := s.dec.InputOffset()
	rest, _ := io.ReadAll(s.dec.Buffered())
	if len(rest) == 0 || strings.IndexByte("{}[],:", rest[0]) >= 0 {
		return at + 1
	}
	for _, ctx := range tokenOnlyContexts {
		if strings.HasSuffix(se.Error(), ctx) {
			return at + 1
		}
	}
	var re *json.SyntaxError
	if errors.As(json.Unmarshal(rest, new(json.RawMessage)), &re) {
		return at + re.Offset
	}
	return at + 1
}
