// Package annotation reads gene and transcription unit annotation tables
// into validated model records.
package annotation

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-operon/internal/genome"
)

// column binds a header name to the index field it resolves.
type column struct {
	name  string
	index *int
}

// table reads a tab-delimited file with a header row.
type table struct {
	name       string
	reader     *bufio.Reader
	lineNumber int
	minFields  int
}

// openTable reads the header of r and resolves every column in cols.
// A missing column is a *SchemaError.
func openTable(name string, r io.Reader, cols []column) (*table, error) {
	t := &table{name: name, reader: bufio.NewReader(r)}

	header, err := t.readLine()
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, &MalformedInputError{Table: name, Line: t.lineNumber, Message: "no header line found"}
	}

	positions := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := positions[h]; !dup {
			positions[h] = i
		}
	}

	for _, c := range cols {
		i, ok := positions[c.name]
		if !ok {
			return nil, &SchemaError{Table: name, Column: c.name}
		}
		*c.index = i
		if i+1 > t.minFields {
			t.minFields = i + 1
		}
	}

	return t, nil
}

// next returns the fields of the next non-empty row, or nil at end of input.
func (t *table) next() ([]string, error) {
	for {
		fields, err := t.readLine()
		if err != nil || fields == nil {
			return nil, err
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if len(fields) < t.minFields {
			return nil, t.malformed("", fmt.Sprintf("expected at least %d columns, found %d", t.minFields, len(fields)))
		}
		return fields, nil
	}
}

func (t *table) readLine() ([]string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %s table: %w", t.name, err)
	}
	if err == io.EOF && line == "" {
		return nil, nil
	}
	t.lineNumber++
	line = strings.TrimRight(line, "\r\n")
	return strings.Split(line, "\t"), nil
}

func (t *table) malformed(record, msg string) *MalformedInputError {
	return &MalformedInputError{Table: t.name, Line: t.lineNumber, Record: record, Message: msg}
}

// parseInt parses a coordinate field of the current row.
func (t *table) parseInt(record, field, value string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, t.malformed(record, fmt.Sprintf("invalid %s: %q", field, value))
	}
	return n, nil
}

// parseSense maps a brin_DNA field to +1 or -1. Only the integer 1 is forward.
func parseSense(value string) int8 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return genome.Reverse
	}
	return genome.SenseFromColumn(n)
}

// splitNames parses a comma-separated name list. Blank entries are dropped.
func splitNames(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
