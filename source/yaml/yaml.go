// Package yaml provides a token source and Driver for YAML documents.
//
// Documents are decoded into yaml.Node trees, which keep every mapping entry
// in input order (including repeated keys), and then replayed as tokens. A
// stream holding more than one document is reported as trailing content by the
// detector.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	dupkeys "github.com/reoring/dupkeys"
	eng "github.com/reoring/dupkeys/internal/engine"
)

// Driver returns a dupkeys.Driver that reads YAML.
func Driver() dupkeys.Driver { return driverYAML{} }

type driverYAML struct{}

func (driverYAML) NewReader(r io.Reader) dupkeys.Source { return NewReader(r) }
func (driverYAML) NewBytes(b []byte) dupkeys.Source     { return NewBytes(b) }
func (driverYAML) Name() string                         { return "yaml" }

type source struct {
	dec    *yaml.Decoder
	tokens []eng.Token
	idx    int
	eof    bool
}

// NewReader wraps an io.Reader into an engine.TokenSource for YAML.
func NewReader(r io.Reader) eng.TokenSource {
	return &source{dec: yaml.NewDecoder(r)}
}

// NewBytes wraps a byte slice into an engine.TokenSource for YAML.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	for s.idx >= len(s.tokens) {
		if s.eof {
			return eng.Token{}, io.EOF
		}
		if err := s.decodeNext(); err != nil {
			return eng.Token{}, err
		}
	}
	t := s.tokens[s.idx]
	s.idx++
	return t, nil
}

func (s *source) Location() int64 { return -1 }

func (s *source) decodeNext() error {
	var root yaml.Node
	if err := s.dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			s.eof = true
			return nil
		}
		return &eng.SyntaxError{Msg: err.Error(), Offset: -1}
	}
	r := replay{
		out:    s.tokens[:0],
		active: make(map[*yaml.Node]bool),
		limit:  max(minExpansion, expansionRatio*countTokens(&root)),
	}
	if err := r.node(&root); err != nil {
		return err
	}
	s.tokens = r.out
	s.idx = 0
	return nil
}

// Alias expansion may grow a document to at most expansionRatio times its
// literal token count, with a floor of minExpansion tokens.
const (
	expansionRatio = 10
	minExpansion   = 100_000
)

// replay flattens a node tree into tokens, expanding aliases in place.
type replay struct {
	out    []eng.Token
	active map[*yaml.Node]bool // containers being replayed
	limit  int
}

func (r *replay) emit(t eng.Token) error {
	if len(r.out) >= r.limit {
		return &eng.SyntaxError{Msg: "yaml: alias expansion exceeds size limit", Offset: -1}
	}
	r.out = append(r.out, t)
	return nil
}

func (r *replay) node(n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			if err := r.node(c); err != nil {
				return err
			}
		}
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil
		}
		if r.active[n.Alias] {
			return &eng.SyntaxError{Msg: "yaml: alias *" + n.Value + " refers to itself", Offset: -1}
		}
		r.active[n.Alias] = true
		err := r.node(n.Alias)
		delete(r.active, n.Alias)
		return err
	case yaml.MappingNode:
		// an anchored mapping may reach itself through an alias below it
		r.active[n] = true
		defer delete(r.active, n)
		if err := r.emit(eng.Token{Kind: eng.KindBeginObject, Offset: -1}); err != nil {
			return err
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			if err := r.emit(eng.Token{Kind: eng.KindKey, String: n.Content[i].Value, Offset: -1}); err != nil {
				return err
			}
			if err := r.node(n.Content[i+1]); err != nil {
				return err
			}
		}
		return r.emit(eng.Token{Kind: eng.KindEndObject, Offset: -1})
	case yaml.SequenceNode:
		r.active[n] = true
		defer delete(r.active, n)
		if err := r.emit(eng.Token{Kind: eng.KindBeginArray, Offset: -1}); err != nil {
			return err
		}
		for _, c := range n.Content {
			if err := r.node(c); err != nil {
				return err
			}
		}
		return r.emit(eng.Token{Kind: eng.KindEndArray, Offset: -1})
	case yaml.ScalarNode:
		return r.emit(scalarToken(n))
	}
	return nil
}

// countTokens counts the tokens of n without following aliases.
func countTokens(n *yaml.Node) int {
	c := 1
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		c++
	}
	for _, ch := range n.Content {
		c += countTokens(ch)
	}
	return c
}

func scalarToken(n *yaml.Node) eng.Token {
	switch n.ShortTag() {
	case "!!null":
		return eng.Token{Kind: eng.KindNull, Offset: -1}
	case "!!bool":
		return eng.Token{Kind: eng.KindBool, Bool: strings.EqualFold(n.Value, "true"), Offset: -1}
	case "!!int", "!!float":
		return eng.Token{Kind: eng.KindNumber, Number: n.Value, Offset: -1}
	default:
		return eng.Token{Kind: eng.KindString, String: n.Value, Offset: -1}
	}
}
