package json

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eng "github.com/reoring/dupkeys/internal/engine"
)

func collect(t *testing.T, src eng.TokenSource) []eng.Token {
	t.Helper()
	var out []eng.Token
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, tok)
	}
}

func TestSource_KeysAndValues(t *testing.T) {
	toks := collect(t, NewBytes([]byte(`{"a":"x","b":[true,null,1.5],"c":{"d":"e"}}`)))

	var got []eng.Kind
	for _, tk := range toks {
		got = append(got, tk.Kind)
	}
	assert.Equal(t, []eng.Kind{
		eng.KindBeginObject,
		eng.KindKey, eng.KindString,
		eng.KindKey, eng.KindBeginArray, eng.KindBool, eng.KindNull, eng.KindNumber, eng.KindEndArray,
		eng.KindKey, eng.KindBeginObject, eng.KindKey, eng.KindString, eng.KindEndObject,
		eng.KindEndObject,
	}, got)
	assert.Equal(t, "a", toks[1].String)
	assert.Equal(t, "x", toks[2].String)
	assert.Equal(t, "1.5", toks[7].Number)
	assert.Equal(t, "d", toks[11].String)
}

func TestSource_StringValueEqualToKeyIsNotAKey(t *testing.T) {
	toks := collect(t, NewBytes([]byte(`{"a":"a"}`)))
	require.Len(t, toks, 4)
	assert.Equal(t, eng.KindKey, toks[1].Kind)
	assert.Equal(t, eng.KindString, toks[2].Kind)
}

func TestSource_Offsets(t *testing.T) {
	src := NewBytes([]byte(`{"a":1}`))
	tok, err := src.NextToken()
	require.NoError(t, err)
	assert.Equal(t, int64(1), tok.Offset)
	assert.Equal(t, int64(1), src.Location())
}

func TestSource_SyntaxErrorOffset(t *testing.T) {
	_, err := NewBytes([]byte("i am not json")).NextToken()
	var se *eng.SyntaxError
	require.True(t, errors.As(err, &se), "err=%v", err)
	assert.Equal(t, int64(1), se.Offset)
	assert.Contains(t, se.Msg, "invalid character")
}

func TestSource_SyntaxErrorOffsetIsAbsolute(t *testing.T) {
	tests := []struct {
		input string
		want  int64 // one past the offending byte
	}{
		{"{}x", 3},
		{"{\n  \"a\": 1\n}\n\nx", 15},
		{"[\n\"\xff\", 1, @]", 11},
		{`{"a" 1}`, 6},
		{`[1 2]`, 4},
		{`{"a":1,}`, 8},
		{`[1x]`, 3},
		{`{"a":tru}`, 9},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			src := NewBytes([]byte(tt.input))
			var err error
			for err == nil {
				_, err = src.NextToken()
			}
			var se *eng.SyntaxError
			require.True(t, errors.As(err, &se), "err=%v", err)
			assert.Equal(t, tt.want, se.Offset, se.Msg)
		})
	}
}
