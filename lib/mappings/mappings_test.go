package mappings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		encoded  string
		expected Mappings
	}{
		{name: "empty", encoded: "", expected: Mappings{nil}},
		{name: "sourceless", encoded: "A", expected: Mappings{{{0}}}},
		{name: "single", encoded: "AAAA", expected: Mappings{{{0, 0, 0, 0}}}},
		{name: "named", encoded: "AAAAK", expected: Mappings{{{0, 0, 0, 0, 5}}}},
		{name: "relative columns", encoded: "AAAA,CAAC", expected: Mappings{{{0, 0, 0, 0}, {1, 0, 0, 1}}}},
		{name: "negative", encoded: "AAIA,CADA", expected: Mappings{{{0, 0, 4, 0}, {1, 0, 3, 0}}}},
		{name: "multi char", encoded: "gBAAA", expected: Mappings{{{16, 0, 0, 0}}}},
		{
			name:     "lines reset generated column only",
			encoded:  "EAEE;EAAC",
			expected: Mappings{{{2, 0, 2, 2}}, {{2, 0, 2, 3}}},
		},
		{name: "empty lines", encoded: ";;AAAA", expected: Mappings{nil, nil, {{0, 0, 0, 0}}}},
		{name: "two field segment dropped", encoded: "AA,AAAA", expected: Mappings{{{0, 0, 0, 0}}}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			decoded, err := Decode(tc.encoded)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, decoded)
		})
	}
}

func TestDecodeInvalid(t *testing.T) {
	t.Parallel()

	_, err := Decode("AA!A")
	require.ErrorIs(t, err, ErrInvalidCharacter)
	assert.Contains(t, err.Error(), "offset 2")

	_, err = Decode("AAAg")
	require.ErrorIs(t, err, ErrInvalidCharacter)

	_, err = Decode("gggggggA")
	require.ErrorIs(t, err, ErrValueOverflow)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	for _, encoded := range []string{
		"AAAA",
		"AAAA,CAAC",
		"AAAAK,EAAE;;AACA",
		"A,CAAA,EAAA",
		"gBAAA,CCCCC;ADDDD",
		";;;",
	} {
		encoded := encoded
		t.Run(encoded, func(t *testing.T) {
			t.Parallel()
			decoded, err := Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, encoded, Encode(decoded))
		})
	}

	t.Run("skips empty segments", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "AAAA,CAAC", Encode(Mappings{{{}, {0, 0, 0, 0}, {1, 0, 0, 1}}}))
	})
}

func TestSort(t *testing.T) {
	t.Parallel()

	t.Run("sorted input is returned as is", func(t *testing.T) {
		t.Parallel()
		m := Mappings{{{0}, {3}}, {{1}}}
		assert.Equal(t, m, Sort(m, false))
	})

	t.Run("not owned", func(t *testing.T) {
		t.Parallel()
		m := Mappings{{{0}}, {{5, 0, 0, 0}, {1, 0, 0, 1}, {5, 0, 0, 2}}}
		sorted := Sort(m, false)
		assert.Equal(t, Mappings{{{0}}, {{1, 0, 0, 1}, {5, 0, 0, 0}, {5, 0, 0, 2}}}, sorted)
		assert.Equal(t, Segment{5, 0, 0, 0}, m[1][0], "input must not be modified")
	})

	t.Run("owned", func(t *testing.T) {
		t.Parallel()
		m := Mappings{{{2}, {1}}}
		sorted := Sort(m, true)
		assert.Equal(t, Mappings{{{1}, {2}}}, sorted)
		assert.Equal(t, Segment{1}, m[0][0])
	})
}

func TestSegment(t *testing.T) {
	t.Parallel()

	assert.False(t, Segment{1}.HasSource())
	assert.True(t, Segment{1, 0, 0, 0}.HasSource())
	assert.False(t, Segment{1, 0, 0, 0}.HasName())
	assert.True(t, Segment{1, 0, 0, 0, 0}.HasName())
}
