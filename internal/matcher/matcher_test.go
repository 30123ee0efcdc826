package matcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storedKeys = []string{"key1", "key2", "key3", "another_key"}

func TestRegexpFilter(t *testing.T) {
	cases := []struct {
		pattern string
		want    []string
	}{
		{`^key\d+$`, []string{"key1", "key2", "key3"}},
		{`.*_key$`, []string{"another_key"}},
		{`key`, []string{"key1", "key2", "key3"}},
		{`_key`, []string{}},
		{`.*`, storedKeys},
		{`key[12]`, []string{"key1", "key2"}},
		{`a|key1`, []string{"key1", "another_key"}},
	}

	for _, tc := range cases {
		t.Run(tc.pattern, func(t *testing.T) {
			got, err := Filter(Regexp, tc.pattern, storedKeys)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.want, got)
		})
	}
}

func TestInvalidPattern(t *testing.T) {
	_, err := Filter(Regexp, `key(`, storedKeys)
	assert.Error(t, err)
}

func TestMatcherFunc(t *testing.T) {
	prefix := MatcherFunc(func(pattern string) (func(string) bool, error) {
		return func(key string) bool { return strings.HasPrefix(key, pattern) }, nil
	})

	got, err := Filter(prefix, "an", storedKeys)
	require.NoError(t, err)
	assert.Equal(t, []string{"another_key"}, got)
}
