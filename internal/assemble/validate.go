package assemble

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dgallion1/resumeforge/internal/resume"
)

// Validator checks records against the canonical schema. Compile it once
// and share it; validation is safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource("resume.json", bytes.NewReader(resume.Schema)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	s, err := c.Compile("resume.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate reports the first schema violation of rec as a schema_violation
// error carrying the JSON pointer of the offending value.
func (v *Validator) Validate(rec resume.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return v.ValidateJSON(b)
}

// ValidateJSON validates an already encoded record.
func (v *Validator) ValidateJSON(doc []byte) error {
	var inst any
	if err := json.Unmarshal(doc, &inst); err != nil {
		return &resume.Error{Kind: resume.KindSchemaViolation, Detail: "record is not valid JSON", Err: err}
	}
	err := v.schema.Validate(inst)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &resume.Error{Kind: resume.KindSchemaViolation, Detail: err.Error(), Err: err}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	path := leaf.InstanceLocation
	if path == "" {
		path = "/"
	}
	return &resume.Error{
		Kind:   resume.KindSchemaViolation,
		Detail: leaf.Message,
		Path:   path,
	}
}

// Assemble merges, normalizes and validates in one step.
func Assemble(local resume.Record, payload map[string]any, v *Validator) (resume.Record, error) {
	rec := Normalize(Merge(local, payload))
	if err := v.Validate(rec); err != nil {
		return resume.Record{}, err
	}
	return rec, nil
}
