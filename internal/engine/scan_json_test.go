package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eng "github.com/reoring/dupkeys/internal/engine"
	jsonsrc "github.com/reoring/dupkeys/source/json"
)

func TestScan_JSONSource(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`{ "a":1 }`, []string{}},
		{`{ "a":1, "a":2 }`, []string{"a"}},
		{`{ "a":1, "a":2, "a":3 }`, []string{"a"}},
		{`{ "a":1, "a":2, "a":3, "a":4 }`, []string{"a"}},
		{`{ "b":{ "a":1 } }`, []string{}},
		{`{ "b":{ "a":1, "a":2 } }`, []string{"b.a"}},
		{`{ "b":{ "a":1, "a":2, "a":3, "a":4 } }`, []string{"b.a"}},
		{`{ "c":0, "b":{ "a":1, "a":2 } }`, []string{"b.a"}},
		{`{ "c":0, "b":[ { "a":1 } ] }`, []string{}},
		{`{ "c":0, "b":[ { "a":1, "a":2 } ] }`, []string{"b.a"}},
		{`{ "c":0, "b":[ { "a":1, "a":2, "a":3, "a":4 } ] }`, []string{"b.a"}},
		{`{ "s":"a", "a":"s" }`, []string{}},
		{`{ "k":{"a":[1,{"x":1}],"a":null}, "k":true }`, []string{"k.a", "k"}},
		{`[ {"a":1}, {"a":1, "a":1} ]`, []string{"a"}},
		{`42`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			for _, bundle := range []bool{false, true} {
				got, err := eng.Scan(jsonsrc.NewBytes([]byte(tt.input)), eng.ScanOptions{BundleFirstKey: bundle})
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestScan_JSONSource_ParseErrors(t *testing.T) {
	for _, input := range []string{
		"i am not json",
		"{}x",
		"{} {}",
		`{"a":1`,
		`{"a" 1}`,
		`{"a":1,}`,
		"",
		"   ",
	} {
		t.Run(input, func(t *testing.T) {
			got, err := eng.Scan(jsonsrc.NewBytes([]byte(input)), eng.ScanOptions{})
			assert.Nil(t, got)
			var pe *eng.ParseError
			require.True(t, errors.As(err, &pe), "err=%v", err)
			assert.NotEmpty(t, pe.Message)
		})
	}
}
