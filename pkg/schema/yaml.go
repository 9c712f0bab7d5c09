package schema

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Document is the on-disk representation of a Schema.
type Document struct {
	Entities []Entity `json:"entities"`
}

// Parse decodes a YAML (or JSON) schema document and builds a Schema from it.
func Parse(data []byte) (*Schema, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return New(doc.Entities...)
}

// ParseFile reads and parses the schema file at path.
func ParseFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// Marshal encodes s as a YAML document. Defaulted keys are written out
// explicitly, so the output round-trips through Parse unchanged.
func Marshal(s *Schema) ([]byte, error) {
	return yaml.Marshal(Document{Entities: s.Entities()})
}
