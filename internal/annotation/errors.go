package annotation

import "fmt"

// SchemaError reports a required column missing from a table header.
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s table: required column %q not found in header", e.Table, e.Column)
}

// MalformedInputError reports a row that cannot be turned into a model
// entity. It aborts the whole load.
type MalformedInputError struct {
	Table   string
	Line    int
	Record  string // record name, empty if it could not be read
	Message string
}

func (e *MalformedInputError) Error() string {
	if e.Record == "" {
		return fmt.Sprintf("%s table line %d: %s", e.Table, e.Line, e.Message)
	}
	return fmt.Sprintf("%s table line %d (%s): %s", e.Table, e.Line, e.Record, e.Message)
}
