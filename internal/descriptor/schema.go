package descriptor

import (
	"embed"
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

// Validator checks raw descriptor records against the embedded closed
// #FileDescriptor schema. Flat legacy records fail here because their
// top-level fields are not part of the schema.
type Validator struct {
	ctx        *cue.Context
	descriptor cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	data, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(data, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	def := schema.LookupPath(cue.ParsePath("#FileDescriptor"))
	if !def.Exists() {
		return nil, fmt.Errorf("schema has no #FileDescriptor definition")
	}

	return &Validator{ctx: ctx, descriptor: def}, nil
}

// Validate checks one raw record. The error lists every violation.
func (v *Validator) Validate(record map[string]any) error {
	val := v.ctx.Encode(stringKeys(record))
	if val.Err() != nil {
		return fmt.Errorf("encoding descriptor: %w", val.Err())
	}
	unified := v.descriptor.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{Name: nameOf(record), Details: details(err)}
	}
	return nil
}

// SchemaError lists the schema violations of one descriptor record.
type SchemaError struct {
	Name    string
	Details []string
}

func (e *SchemaError) Error() string {
	name := e.Name
	if name == "" {
		name = "<unnamed>"
	}
	if len(e.Details) == 1 {
		return fmt.Sprintf("descriptor %s: %s", name, e.Details[0])
	}
	return fmt.Sprintf("descriptor %s: %d schema violations: %v", name, len(e.Details), e.Details)
}

func details(err error) []string {
	var out []string
	for _, e := range cueerrors.Errors(err) {
		out = append(out, e.Error())
	}
	sort.Strings(out)
	return out
}

func nameOf(record map[string]any) string {
	if n, ok := record["name"].(string); ok {
		return n
	}
	return ""
}

// stringKeys converts map[any]any nodes (YAML with non-string keys) to
// map[string]any so the record can be encoded.
func stringKeys(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = stringKeys(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = stringKeys(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = stringKeys(e)
		}
		return out
	default:
		return v
	}
}
