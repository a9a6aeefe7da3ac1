package domain

// IndexDefinition describes one search index and the record classes it
// includes. Order is significant: class matching stops at the first hit.
type IndexDefinition struct {
	// Name is the index name on the search backend.
	Name string

	// IncludeClasses lists the classes considered for this index.
	IncludeClasses []ClassInclusion
}

// ClassInclusion pairs a class name with its spec.
// A nil Spec is an explicit exclusion of the class.
type ClassInclusion struct {
	Class string
	Spec  *ClassSpec
}

// Excluded reports whether the class is explicitly excluded.
func (c ClassInclusion) Excluded() bool {
	return c.Spec == nil
}

// ClassSpec holds the field mapping for a class within an index.
//
// A nil Fields slice means the class declared no fields table and is ignored by
// field resolution. A non-nil empty slice is a declared, empty field table.
type ClassSpec struct {
	Fields []FieldInclusion
}

// Empty reports whether no field table was declared at all.
func (s *ClassSpec) Empty() bool {
	return s == nil || s.Fields == nil
}

// FieldInclusion pairs a search field name with its spec.
// A nil Spec excludes the field.
type FieldInclusion struct {
	Name string
	Spec *FieldSpec
}

// FieldSpec configures how a search field is sourced.
type FieldSpec struct {
	// Property is the record property feeding the field.
	// Empty means the field name itself.
	Property string

	// Options are passed through untouched to document rendering.
	Options map[string]any
}

// Field is a resolved search field for a class.
type Field struct {
	// Name is the field name in the search index.
	Name string

	// Property is the record property the value is read from.
	Property string

	// Options are arbitrary rendering options.
	Options map[string]any
}

// NewField resolves a field from its name and optional spec.
func NewField(name string, spec *FieldSpec) Field {
	f := Field{Name: name, Property: name, Options: map[string]any{}}
	if spec == nil {
		return f
	}
	if spec.Property != "" {
		f.Property = spec.Property
	}
	for k, v := range spec.Options {
		f.Options[k] = v
	}
	return f
}
