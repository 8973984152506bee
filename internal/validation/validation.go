// Package validation implements the declarative per-entity rule sets applied
// before any write reaches the store. Each rule set is compiled into a JSON
// Schema; failures are flattened into apperr violations.
package validation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"

	"github.com/Harshul8824/BIM/internal/apperr"
)

// Mode selects how required rules are interpreted.
type Mode int

const (
	// Full checks a complete record (create): every required field must be present.
	Full Mode = iota
	// Partial checks a patch (update): only the fields it carries are checked.
	Partial
)

// Type 字段的 JSON 类型
type Type int

const (
	// Any accepts every JSON value.
	Any Type = iota
	String
	Number
	// Date is a time.Time on the Go side and an RFC3339 string in the schema.
	Date
	// IDs is a list of opaque entity ids.
	IDs
)

// Rule 单个字段的校验规则
type Rule struct {
	Type     Type
	Required bool
	// Message overrides the default required message.
	Message string
	Enum    []string
	Default func() any
}

// Field 有序的字段规则，保证错误信息顺序稳定
type Field struct {
	Name string
	Rule Rule
}

// Schema 实体的规则集合及其编译后的 JSON Schema
type Schema struct {
	Entity string
	Fields []Field

	full     *jsonschema.Schema
	partial  *jsonschema.Schema
	messages map[string]string
}

// Compile builds the entity's JSON Schema twice: once with the required list
// for Full mode and once without it for Partial mode.
func Compile(entity string, fields ...Field) (*Schema, error) {
	s := &Schema{Entity: entity, Fields: fields, messages: map[string]string{}}
	for _, f := range fields {
		if f.Rule.Message != "" {
			s.messages[f.Name] = f.Rule.Message
		}
	}

	c := jsonschema.NewCompiler()
	base := strings.ToLower(entity)
	fullURL, partialURL := base+".json", base+".partial.json"
	if err := c.AddResource(fullURL, s.document(Full)); err != nil {
		return nil, fmt.Errorf("add %s schema: %w", entity, err)
	}
	if err := c.AddResource(partialURL, s.document(Partial)); err != nil {
		return nil, fmt.Errorf("add %s partial schema: %w", entity, err)
	}

	var err error
	if s.full, err = c.Compile(fullURL); err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", entity, err)
	}
	if s.partial, err = c.Compile(partialURL); err != nil {
		return nil, fmt.Errorf("compile %s partial schema: %w", entity, err)
	}
	return s, nil
}

// MustCompile is Compile for package-level rule sets.
func MustCompile(entity string, fields ...Field) *Schema {
	s, err := Compile(entity, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// document renders the rule set as a JSON Schema object.
func (s *Schema) document(mode Mode) map[string]any {
	props := make(map[string]any, len(s.Fields))
	var required []any
	for _, f := range s.Fields {
		props[f.Name] = f.Rule.schema()
		if f.Rule.Required {
			required = append(required, f.Name)
		}
	}

	doc := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if mode == Full && len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func (r Rule) schema() map[string]any {
	prop := map[string]any{}
	switch r.Type {
	case String, Date:
		prop["type"] = "string"
		if r.Required {
			prop["minLength"] = 1
		}
	case Number:
		prop["type"] = "number"
	case IDs:
		prop["type"] = "array"
		prop["items"] = map[string]any{"type": "string"}
		if r.Required {
			prop["minItems"] = 1
		}
	}
	if len(r.Enum) > 0 {
		enum := make([]any, len(r.Enum))
		for i, v := range r.Enum {
			enum[i] = v
		}
		prop["enum"] = enum
	}
	return prop
}

// Rule 按字段名查找规则
func (s *Schema) Rule(name string) (Rule, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Rule, true
		}
	}
	return Rule{}, false
}

// ApplyDefaults fills every absent field that declares a default.
func (s *Schema) ApplyDefaults(doc Document) {
	for _, f := range s.Fields {
		if f.Rule.Default == nil {
			continue
		}
		if _, ok := doc[f.Name]; !ok {
			doc[f.Name] = f.Rule.Default()
		}
	}
}

// Validate checks doc against the schema and returns an *apperr.ValidationError
// listing every violated rule, or nil.
func (s *Schema) Validate(doc Document, mode Mode) error {
	sch := s.full
	if mode == Partial {
		sch = s.partial
	}

	err := sch.Validate(s.instance(doc))
	if err == nil {
		return nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("validate %s: %w", s.Entity, err)
	}

	var violations []apperr.Violation
	for _, leaf := range leaves(verr) {
		violations = append(violations, s.violations(leaf)...)
	}
	violations = s.ordered(violations)
	if len(violations) == 0 {
		return nil
	}
	return &apperr.ValidationError{Entity: s.Entity, Violations: violations}
}

// instance converts doc into plain JSON values. A nil optional field counts as
// absent; a nil required field is kept so the type check reports it.
func (s *Schema) instance(doc Document) map[string]any {
	out := make(map[string]any, len(doc))
	for key, value := range doc {
		rule, known := s.Rule(key)
		if value == nil && (!known || !rule.Required) {
			continue
		}
		out[key] = jsonValue(value)
	}
	return out
}

func jsonValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(time.RFC3339Nano)
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = jsonValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonValue(item)
		}
		return out
	default:
		return v
	}
}

func leaves(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var out []*jsonschema.ValidationError
	for _, c := range err.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}

// violations maps one leaf cause onto the fields it names.
func (s *Schema) violations(leaf *jsonschema.ValidationError) []apperr.Violation {
	if k, ok := leaf.ErrorKind.(*kind.Required); ok {
		out := make([]apperr.Violation, 0, len(k.Missing))
		for _, name := range k.Missing {
			out = append(out, s.required(name))
		}
		return out
	}

	if len(leaf.InstanceLocation) == 0 {
		return []apperr.Violation{{Kind: "invalid", Message: leaf.Error()}}
	}
	field := leaf.InstanceLocation[0]
	rule, _ := s.Rule(field)

	switch k := leaf.ErrorKind.(type) {
	case *kind.MinLength, *kind.MinItems:
		return []apperr.Violation{s.required(field)}
	case *kind.Type:
		if k.Got == "null" && rule.Required {
			return []apperr.Violation{s.required(field)}
		}
		return []apperr.Violation{{
			Field:   field,
			Kind:    "cast",
			Message: fmt.Sprintf("Cast to %s failed for value of type %s at path %q", strings.Join(k.Want, "|"), k.Got, field),
		}}
	case *kind.Enum:
		return []apperr.Violation{{
			Field:   field,
			Kind:    "enum",
			Message: fmt.Sprintf("`%v` is not a valid enum value for path `%s`.", k.Got, field),
		}}
	default:
		return []apperr.Violation{{Field: field, Kind: "invalid", Message: leaf.Error()}}
	}
}

func (s *Schema) required(field string) apperr.Violation {
	msg, ok := s.messages[field]
	if !ok {
		msg = fmt.Sprintf("Path `%s` is required.", field)
	}
	return apperr.Violation{Field: field, Kind: "required", Message: msg}
}

// ordered sorts violations by field declaration order and keeps the first one
// per field, required before anything else.
func (s *Schema) ordered(in []apperr.Violation) []apperr.Violation {
	index := func(field string) int {
		return slices.IndexFunc(s.Fields, func(f Field) bool { return f.Name == field })
	}
	slices.SortStableFunc(in, func(a, b apperr.Violation) int {
		if d := index(a.Field) - index(b.Field); d != 0 {
			return d
		}
		return boolRank(b.Kind == "required") - boolRank(a.Kind == "required")
	})

	out := in[:0]
	seen := map[string]bool{}
	for _, v := range in {
		if v.Field != "" && seen[v.Field] {
			continue
		}
		seen[v.Field] = true
		out = append(out, v)
	}
	return out
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
