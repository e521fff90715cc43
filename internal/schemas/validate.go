// Package schemas provides JSON Schema validation for seed fixtures.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed fixture.schema.json
var fixtureSchemaSource string

// FixtureSchemaName identifies the embedded seed fixture schema in errors
const FixtureSchemaName = "fixture.schema.json"

var fixtureSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(fixtureSchemaSource))
})

// FieldError is one schema violation. Field is a dotted path such as
// "users.0.capabilities.1", or "(root)" for the document itself.
type FieldError struct {
	Field   string
	Rule    string // failing keyword, e.g. "enum" or "required"
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// SchemaError reports a schema that could not be compiled or applied.
type SchemaError struct {
	Name string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s: %v", e.Name, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ValidateFixture validates a decoded fixture document (maps, slices and
// scalars as produced by a YAML or JSON decoder) against the embedded schema.
func ValidateFixture(document any) error {
	schema, err := fixtureSchema()
	if err != nil {
		return &SchemaError{Name: FixtureSchemaName, Err: err}
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return &SchemaError{Name: FixtureSchemaName, Err: err}
	}
	return violations(result)
}

// ValidateJSONString validates a JSON document against a JSON schema, both given as text.
func ValidateJSONString(schemaContent, jsonContent string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaContent),
		gojsonschema.NewStringLoader(jsonContent),
	)
	if err != nil {
		return &SchemaError{Name: "(inline)", Err: err}
	}
	return violations(result)
}

func violations(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{}
	for _, re := range result.Errors() {
		field := re.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{
			Field:   field,
			Rule:    re.Type(),
			Message: re.Description(),
		})
	}
	return verr
}
