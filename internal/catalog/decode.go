package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-questions/internal/question"
)

//go:embed schema.json
var schemaJSON string

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
})

// DecodeJSON validates and decodes a JSON catalog document.
func DecodeJSON(data []byte) ([]question.Record, error) {
	if err := validate(gojsonschema.NewBytesLoader(data)); err != nil {
		return nil, err
	}

	var records []question.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if err := checkIDs(records); err != nil {
		return nil, err
	}
	return records, nil
}

// DecodeYAML validates and decodes a YAML catalog document.
func DecodeYAML(data []byte) ([]question.Record, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := validate(gojsonschema.NewGoLoader(doc)); err != nil {
		return nil, err
	}

	var records []question.Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := checkIDs(records); err != nil {
		return nil, err
	}
	return records, nil
}

func validate(doc gojsonschema.JSONLoader) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	result, err := schema.Validate(doc)
	if err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("catalog does not match schema: %s", strings.Join(msgs, "; "))
}
