package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/shlex"

	"txkv/internal/common"
)

var ErrEmptyInput = errors.New("invalid input")

// StringParser splits a line with shell quoting rules:
// `insert "a b" 'c d'` -> INSERT ["a b", "c d"].
type StringParser struct{}

func NewStringParser() *StringParser {
	return &StringParser{}
}

func (p *StringParser) Parse(data []byte) (*common.Command, error) {
	parts, err := shlex.Split(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if len(parts) == 0 {
		return nil, ErrEmptyInput
	}

	return &common.Command{
		Operation: strings.ToUpper(parts[0]),
		Args:      parts[1:],
	}, nil
}
