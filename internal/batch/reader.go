package batch

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Code is one code read from an input, with its origin.
type Code struct {
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
	Value  string `json:"code" yaml:"code"`
}

// codeColumns are header names that select the code column of a CSV file.
var codeColumns = []string{"code", "barcode", "gtin", "ean", "upc"}

// ReadCodes reads codes from r. Plain text input carries one code per line
// with blank lines and '#' comments ignored; surrounding whitespace is
// trimmed. Lines have no length limit, so an oversized line is decoded (and
// rejected) like any other code. When csvInput is set the first column is
// used, or the column whose header names a code.
func ReadCodes(r io.Reader, source string, csvInput bool) ([]Code, error) {
	if csvInput {
		return readCSVCodes(r, source)
	}

	var codes []Code
	reader := bufio.NewReader(r)
	line := 0
	for {
		raw, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read %s: %w", source, err)
		}
		if raw == "" && err != nil {
			break
		}

		line++
		text := strings.TrimSpace(raw)
		if text != "" && !strings.HasPrefix(text, "#") {
			codes = append(codes, Code{Source: source, Line: line, Value: text})
		}
		if err != nil {
			break
		}
	}
	return codes, nil
}

func readCSVCodes(r io.Reader, source string) ([]Code, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	var codes []Code
	column := 0
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV %s: %w", source, err)
		}
		line, _ := reader.FieldPos(0)

		if first {
			first = false
			if idx := headerColumn(record); idx >= 0 {
				column = idx
				continue
			}
		}

		if column >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[column])
		if value == "" {
			continue
		}
		codes = append(codes, Code{Source: source, Line: line, Value: value})
	}
	return codes, nil
}

func headerColumn(record []string) int {
	for i, cell := range record {
		name := strings.ToLower(strings.TrimSpace(cell))
		for _, c := range codeColumns {
			if name == c {
				return i
			}
		}
	}
	return -1
}

// ReadCodeFile reads codes from a file path, or from stdin for StdinPath.
// Files with a .csv extension are parsed as CSV.
func ReadCodeFile(path string, stdin io.Reader) ([]Code, error) {
	if path == StdinPath {
		return ReadCodes(stdin, "stdin", false)
	}

	f, err := os.Open(path) //nolint:gosec // path comes from CLI arguments
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return ReadCodes(f, path, strings.EqualFold(filepath.Ext(path), ".csv"))
}
