package domain

import "sort"

// JSON-schema primitive type names used in output schemas.
const (
	TypeNull    = "null"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeObject  = "object"
)

// Property is one field of an output schema. Type is a set of legal JSON
// types; every property admits null, reflecting that any field may be absent
// from the actual API responses.
type Property struct {
	Type []string `json:"type" yaml:"type"`
}

// Nullable reports whether the property's type set admits null.
func (p *Property) Nullable() bool {
	for _, t := range p.Type {
		if t == TypeNull {
			return true
		}
	}
	return false
}

// Schema is the resolved output schema of one table: an object schema with a
// properties map and an ordered list of key-property names. Computed once per
// table per run, never mutated after construction.
type Schema struct {
	Type          string               `json:"type" yaml:"type"`
	Properties    map[string]*Property `json:"properties" yaml:"properties"`
	KeyProperties []string             `json:"key_properties,omitempty" yaml:"key_properties,omitempty"`
}

// PropertyNames returns the schema's property names in sorted order.
func (s *Schema) PropertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SchemaBuilder assembles an output schema field by field. Every field starts
// from the nullable-string base type; concrete types are added on top, so no
// shared base object is ever mutated.
type SchemaBuilder struct {
	props map[string]*Property
	keys  []string
}

// NewSchemaBuilder creates an empty schema builder.
func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{props: make(map[string]*Property)}
}

// AddField registers a field with the nullable-string base type. Adding an
// already-present field is a no-op.
func (b *SchemaBuilder) AddField(name string) *SchemaBuilder {
	if _, ok := b.props[name]; !ok {
		b.props[name] = &Property{Type: []string{TypeNull, TypeString}}
	}
	return b
}

// AddType appends a concrete type to a field's type set, registering the
// field first if needed. Duplicate types are not added twice.
func (b *SchemaBuilder) AddType(name, typ string) *SchemaBuilder {
	b.AddField(name)
	p := b.props[name]
	for _, t := range p.Type {
		if t == typ {
			return b
		}
	}
	p.Type = append(p.Type, typ)
	return b
}

// SetTypes replaces a field's type set outright. Used for fields whose shape
// is fixed rather than inferred, such as the metrics schema properties.
func (b *SchemaBuilder) SetTypes(name string, types ...string) *SchemaBuilder {
	b.props[name] = &Property{Type: append([]string(nil), types...)}
	return b
}

// AddKey appends a key-property name, preserving order and skipping
// duplicates.
func (b *SchemaBuilder) AddKey(names ...string) *SchemaBuilder {
	for _, name := range names {
		if !containsString(b.keys, name) {
			b.keys = append(b.keys, name)
		}
	}
	return b
}

// Build produces the finished schema. The builder must not be reused after.
func (b *SchemaBuilder) Build() *Schema {
	return &Schema{Type: TypeObject, Properties: b.props, KeyProperties: b.keys}
}

// Widen returns a copy of s in which every property admits null and any
// property with an empty type set gets the nullable-string base. This
// completes user-supplied partial schemas without touching the input.
func (s *Schema) Widen() *Schema {
	b := NewSchemaBuilder()
	for name, p := range s.Properties {
		if p == nil || len(p.Type) == 0 {
			b.AddField(name)
			continue
		}
		types := p.Type
		if !p.Nullable() {
			types = append([]string{TypeNull}, types...)
		}
		b.SetTypes(name, types...)
	}
	b.AddKey(s.KeyProperties...)
	out := b.Build()
	if s.Type != "" {
		out.Type = s.Type
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
