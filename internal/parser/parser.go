package parser

import "txkv/internal/common"

// Parser turns one request line into a command.
type Parser interface {
	Parse(data []byte) (*common.Command, error)
}
