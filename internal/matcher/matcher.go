// Package matcher decides which keys a KEYS pattern selects.
package matcher

import (
	"fmt"
	"regexp"
)

// Matcher compiles a pattern into a key predicate.
type Matcher interface {
	Compile(pattern string) (func(key string) bool, error)
}

type MatcherFunc func(pattern string) (func(key string) bool, error)

func (f MatcherFunc) Compile(pattern string) (func(key string) bool, error) {
	return f(pattern)
}

// Regexp matches a regular expression at the start of the key. The end is
// not anchored: "key" selects "key1" and "keyring" but not "mykey".
var Regexp Matcher = MatcherFunc(compileRegexp)

func compileRegexp(pattern string) (func(key string) bool, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re.MatchString, nil
}

// Filter returns the keys the pattern selects, keeping their order.
func Filter(m Matcher, pattern string, keys []string) ([]string, error) {
	match, err := m.Compile(pattern)
	if err != nil {
		return nil, err
	}

	matched := make([]string, 0, len(keys))
	for _, key := range keys {
		if match(key) {
			matched = append(matched, key)
		}
	}
	return matched, nil
}
