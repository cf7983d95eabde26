package installable

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/instctl/instctl/pkg/errors"
	"github.com/instctl/instctl/schemas"
)

// Loader parses and validates installables documents.
type Loader struct {
	schema    *jsonschema.Schema
	validator *Validator
}

// NewLoader creates a loader using the embedded default schema.
func NewLoader() (*Loader, error) {
	return newLoader(schemas.Installables, "installables.schema.json")
}

// NewLoaderWithSchema creates a loader validating against the schema at path.
func NewLoaderWithSchema(path string) (*Loader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ParseError(path, err)
	}
	return newLoader(data, path)
}

func newLoader(schemaData []byte, source string) (*Loader, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(source, bytes.NewReader(schemaData)); err != nil {
		return nil, errors.ParseError(source, err)
	}
	schema, err := compiler.Compile(source)
	if err != nil {
		return nil, errors.ParseError(source, err)
	}
	return &Loader{schema: schema, validator: NewValidator()}, nil
}

// Load parses the document at path, validates it against the JSON Schema and
// the structural validator, and returns the typed document. Validation runs
// before any graph or substitution work, so a malformed document never reaches
// an executor.
func (l *Loader) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ParseError(path, err)
	}

	doc, err := l.LoadBytes(data, path)
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.ParseError(path, err)
	}
	doc.BaseDir = filepath.Dir(absPath)

	return doc, nil
}

// LoadBytes parses and validates a document from memory. The source path is
// only used in error messages; BaseDir is left for the caller to set.
func (l *Loader) LoadBytes(data []byte, source string) (*Document, error) {
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, errors.ParseError(source, err)
	}

	if err := l.validateSchema(generic, source); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.ParseError(source, err)
	}

	var raw struct {
		Installables []map[string]interface{} `yaml:"installables"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.ParseError(source, err)
	}
	for i, inst := range doc.Installables {
		inst.Raw = raw.Installables[i]
	}

	if errs := l.validator.Validate(&doc); len(errs) > 0 {
		return nil, errors.ValidationError(errs[0].Error(), map[string]interface{}{
			"file":   source,
			"errors": len(errs),
		})
	}

	return &doc, nil
}

// validateSchema checks the decoded document against the JSON Schema. The YAML
// tree is round-tripped through JSON so scalar types match what the schema
// library expects.
func (l *Loader) validateSchema(doc interface{}, source string) error {
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return errors.ParseError(source, err)
	}

	var jsonDoc interface{}
	if err := json.Unmarshal(jsonData, &jsonDoc); err != nil {
		return errors.ParseError(source, err)
	}

	if err := l.schema.Validate(jsonDoc); err != nil {
		var ve *jsonschema.ValidationError
		if stderrors.As(err, &ve) {
			leaf := firstLeaf(ve)
			return errors.ValidationError(
				fmt.Sprintf("schema violation at %s: %s", instanceLocation(leaf), leaf.Message),
				map[string]interface{}{
					"file":     source,
					"location": leaf.InstanceLocation,
				})
		}
		return errors.Wrap(errors.ErrCodeValidation, "schema validation failed", err)
	}
	return nil
}

// firstLeaf descends to the first most-specific cause of a validation error.
func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

func instanceLocation(ve *jsonschema.ValidationError) string {
	if ve.InstanceLocation == "" {
		return "document root"
	}
	return ve.InstanceLocation
}
