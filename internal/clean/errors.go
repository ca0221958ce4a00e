package clean

import "fmt"

// SchemaError reports a raw file whose header matches none of the accepted
// spellings for a required field. Cleaning cannot proceed for that file.
type SchemaError struct {
	File  string
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("clean: %s: no column found for required field %q", e.File, e.Field)
}
