package gojson_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dupkeys "github.com/reoring/dupkeys"
	"github.com/reoring/dupkeys/source/gojson"
)

func TestDriver_MatchesDefault(t *testing.T) {
	inputs := []string{
		`{ "a":1 }`,
		`{ "a":1, "a":2, "a":3 }`,
		`{ "b":{ "a":1, "a":2 } }`,
		`{ "c":0, "b":[ { "a":1, "a":2 } ] }`,
		`{ "x":[{"y":{"z":1,"z":2}}], "x":{} }`,
	}
	drv := gojson.Driver()
	assert.Equal(t, "gojson", drv.Name())
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			want, err := dupkeys.Detect([]byte(in), dupkeys.Options{Driver: dupkeys.DefaultDriver()})
			require.NoError(t, err)
			got, err := dupkeys.Detect([]byte(in), dupkeys.Options{Driver: drv})
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDriver_RejectsNonJSON(t *testing.T) {
	_, err := dupkeys.Detect([]byte("i am not json"), dupkeys.Options{Driver: gojson.Driver()})
	_, ok := dupkeys.AsParseError(err)
	require.True(t, ok, "err=%v", err)
}

func TestDriver_RejectsMalformedLikeDefault(t *testing.T) {
	inputs := []string{
		`{"a":1,}`,
		`{"a" 1}`,
		`{"a":1 "b":2}`,
		`[1,]`,
		`[1 2]`,
		`{,"a":1}`,
		`{"a":1,"a":2,}`,
		`{null:1}`,
		`{1:2}`,
		`{"a":1},`,
		`{}x`,
		`{"a":[1,2}`,
		`{"a":`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := dupkeys.Detect([]byte(in), dupkeys.Options{Driver: dupkeys.DefaultDriver()})
			_, ok := dupkeys.AsParseError(err)
			require.True(t, ok, "default driver err=%v", err)

			got, err := dupkeys.Detect([]byte(in), dupkeys.Options{Driver: gojson.Driver()})
			assert.Nil(t, got)
			_, ok = dupkeys.AsParseError(err)
			assert.True(t, ok, "gojson err=%v", err)
		})
	}
}

func TestDriver_ErrorOffsetPointsAtOffendingByte(t *testing.T) {
	_, err := dupkeys.Detect([]byte("{\"a\":1,\n}"), dupkeys.Options{Driver: gojson.Driver()})
	pe, ok := dupkeys.AsParseError(err)
	require.True(t, ok, "err=%v", err)
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, 1, pe.Column)
}
