package engine

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource replays a fixed token sequence, then io.EOF (or err).
type sliceSource struct {
	toks []Token
	idx  int
	err  error
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.idx >= len(s.toks) {
		if s.err != nil {
			return Token{}, s.err
		}
		return Token{}, io.EOF
	}
	t := s.toks[s.idx]
	s.idx++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.idx) }

func obj() Token { return Token{Kind: KindBeginObject} }
func end() Token { return Token{Kind: KindEndObject} }
func arr() Token { return Token{Kind: KindBeginArray} }
func endArr() Token { return Token{Kind: KindEndArray} }
func key(k string) Token { return Token{Kind: KindKey, String: k} }
func num(n string) Token { return Token{Kind: KindNumber, Number: n} }
func toks(t ...Token) []Token { return t }

func TestDetector_KeyStatusTransitions(t *testing.T) {
	d := NewDetector()
	d.Apply(Event{Kind: EventStartObject})
	for i := 0; i < 4; i++ {
		d.Apply(Event{Kind: EventKey, Name: "a"})
	}
	assert.Equal(t, SeenMultiple, d.stack[0].seen["a"])
	assert.Equal(t, Unseen, d.stack[0].seen["b"])
	d.Apply(Event{Kind: EventEndObject})
	require.True(t, d.Apply(Event{Kind: EventEnd}))

	paths, err := d.Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, paths)
}

func TestDetector_ResultBeforeEnd(t *testing.T) {
	d := NewDetector()
	d.Apply(Event{Kind: EventStartObject})
	_, err := d.Result()
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestDetector_BundledFirstKey(t *testing.T) {
	d := NewDetector()
	d.Apply(Event{Kind: EventStartObject, Name: "a", HasName: true})
	d.Apply(Event{Kind: EventValue})
	d.Apply(Event{Kind: EventKey, Name: "a"})
	d.Apply(Event{Kind: EventValue})
	d.Apply(Event{Kind: EventEndObject})
	d.Apply(Event{Kind: EventEnd})

	paths, err := d.Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, paths)
}

func TestDetector_ParseErrorDropsPartialResult(t *testing.T) {
	d := NewDetector()
	d.Apply(Event{Kind: EventStartObject})
	d.Apply(Event{Kind: EventKey, Name: "a"})
	d.Apply(Event{Kind: EventKey, Name: "a"})
	pe := &ParseError{Message: "boom", Offset: 7}
	require.True(t, d.Apply(Event{Kind: EventParseError, Err: pe}))
	// later events are ignored
	d.Apply(Event{Kind: EventEnd})

	paths, err := d.Result()
	assert.Nil(t, paths)
	require.ErrorIs(t, err, pe)
}

func TestDetector_EventsAfterOutcomeIgnored(t *testing.T) {
	d := NewDetector()
	d.Apply(Event{Kind: EventStartObject})
	d.Apply(Event{Kind: EventEndObject})
	d.Apply(Event{Kind: EventEnd})
	d.Apply(Event{Kind: EventParseError, Err: &ParseError{Message: "late"}})

	paths, err := d.Result()
	require.NoError(t, err)
	assert.Empty(t, paths)
	assert.NotNil(t, paths)
}

func TestScan_Tokens(t *testing.T) {
	tests := []struct {
		name string
		toks []Token
		want []string
	}{
		{
			name: "sibling objects are independent",
			toks: toks(obj(), key("x"), obj(), key("a"), num("1"), end(), key("y"), obj(), key("a"), num("1"), end(), end()),
			want: []string{},
		},
		{
			name: "same name at different depths",
			toks: toks(obj(), key("a"), obj(), key("a"), num("1"), end(), end()),
			want: []string{},
		},
		{
			name: "deep path",
			toks: toks(obj(), key("x"), obj(), key("y"), obj(), key("z"), num("1"), key("z"), num("2"), end(), end(), end()),
			want: []string{"x.y.z"},
		},
		{
			name: "second array element inherits the array key",
			toks: toks(obj(), key("b"), arr(), obj(), key("x"), num("1"), end(), obj(), key("a"), num("1"), key("a"), num("2"), end(), endArr(), end()),
			want: []string{"b.a"},
		},
		{
			name: "nested object in earlier element does not leak its key",
			toks: toks(obj(), key("b"), arr(), obj(), key("p"), obj(), end(), end(), obj(), key("a"), num("1"), key("a"), num("2"), end(), endArr(), end()),
			want: []string{"b.a"},
		},
		{
			name: "root array contributes no segment",
			toks: toks(arr(), obj(), key("a"), num("1"), key("a"), num("2"), end(), obj(), key("k"), obj(), key("q"), num("1"), key("q"), num("1"), end(), end(), endArr()),
			want: []string{"a", "k.q"},
		},
		{
			name: "elements under one key collapse to one path",
			toks: toks(obj(), key("b"), arr(), obj(), key("a"), num("1"), key("a"), num("2"), end(), obj(), key("a"), num("1"), key("a"), num("2"), end(), endArr(), end()),
			want: []string{"b.a"},
		},
		{
			name: "order of detection not alphabetical",
			toks: toks(obj(), key("z"), num("1"), key("m"), num("1"), key("m"), num("1"), key("z"), num("1"), end()),
			want: []string{"m", "z"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, bundle := range []bool{false, true} {
				got, err := Scan(&sliceSource{toks: tt.toks}, ScanOptions{BundleFirstKey: bundle})
				require.NoError(t, err, "bundle=%v", bundle)
				assert.Equal(t, tt.want, got, "bundle=%v", bundle)
			}
		})
	}
}

func TestPosition(t *testing.T) {
	data := []byte("{\n  \"a\": x\n}")
	line, col := position(data, 10)
	assert.Equal(t, 2, line)
	assert.Equal(t, 8, col)

	line, col = position([]byte("i am not json"), 1)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
}
