package snapshot

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed season_snapshot.schema.json
var schemaSrc string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("season_snapshot.schema.json", schemaSrc)
	})
	return schema, schemaErr
}

// Validate checks a raw snapshot body against the schema before any field is
// trusted.
func Validate(body []byte) error {
	s, err := compiled()
	if err != nil {
		return fmt.Errorf("snapshot schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("snapshot is not valid JSON: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("snapshot schema violation: %w", err)
	}
	return nil
}
