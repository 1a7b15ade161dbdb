package vocab

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/afcarl/gemini/internal/gemerr"
)

func TestLoadRoundTrip(t *testing.T) {
	src := `{"docs":10,"tokens":["a","b","c"],"df":{"a":1,"b":5,"c":10}}`

	d, err := Load([]byte(src))
	require.NoError(t, err)
	require.Equal(t, 10, d.Docs())
	require.Equal(t, 3, d.Len())

	dumped, err := d.Dump()
	require.NoError(t, err)

	var want, got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(src), &want))
	require.NoError(t, json.Unmarshal(dumped, &got))
	require.Equal(t, want, got)

	d2, err := Load(dumped)
	require.NoError(t, err)
	dumped2, err := d2.Dump()
	require.NoError(t, err)
	require.JSONEq(t, string(dumped), string(dumped2))
}

func TestTokenIndexAndWeight(t *testing.T) {
	d, err := Load([]byte(`{"docs":4,"tokens":["x","y"],"df":{"x":1,"y":4}}`))
	require.NoError(t, err)

	idx, ok := d.TokenIndex("x")
	require.True(t, ok)
	require.Equal(t, 0, idx)

	_, ok = d.TokenIndex("absent")
	require.False(t, ok)

	// log(4/1) = log(4)
	require.InDelta(t, 1.3862943611, d.Weight("x"), 1e-9)
	// log(4/4) = 0
	require.InDelta(t, 0.0, d.Weight("y"), 1e-9)
}

func TestMalformedVocabulary(t *testing.T) {
	cases := map[string]string{
		"token missing from df":  `{"docs":2,"tokens":["a","b"],"df":{"a":1}}`,
		"df key missing token":   `{"docs":2,"tokens":["a"],"df":{"a":1,"b":1}}`,
		"count below one":        `{"docs":2,"tokens":["a"],"df":{"a":0}}`,
		"count above docs":       `{"docs":2,"tokens":["a"],"df":{"a":3}}`,
		"invalid json":           `not json`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load([]byte(src))
			require.Error(t, err)
			require.True(t, errors.Is(err, gemerr.ErrMalformedVocabulary))
		})
	}
}

func TestNewSortsTokens(t *testing.T) {
	d, err := New(3, map[string]int{"zebra": 1, "apple": 2, "mango": 3})
	require.NoError(t, err)
	require.Equal(t, []string{"apple", "mango", "zebra"}, d.tokens)
}
