package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Parser reads the first worksheet of a spreadsheet format into string rows.
// The first row is the header.
type Parser interface {
	CanParse(filename string) bool
	Parse(content []byte) ([][]string, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported spreadsheet format")

// ErrEmptySheet indicates the first worksheet has no header row.
var ErrEmptySheet = errors.New("worksheet is empty")

// Supported reports whether some registered parser accepts filename.
func Supported(filename string) bool {
	for _, p := range registry {
		if p.CanParse(filename) {
			return true
		}
	}
	return false
}

// ParseFile reads path from disk and parses it by extension.
func ParseFile(path string) (*RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseBytes(filepath.Base(path), data)
}

// ParseBytes selects a parser based on filename and returns the raw table.
func ParseBytes(filename string, data []byte) (*RawTable, error) {
	for _, p := range registry {
		if !p.CanParse(filename) {
			continue
		}
		rows, err := p.Parse(data)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, ErrEmptySheet
		}
		return NewRawTable(rows)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filename))
}

func init() {
	Register(xlsxParser{})
	Register(xlsParser{})
	Register(csvParser{})
}
