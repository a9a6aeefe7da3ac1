package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewField_DefaultsPropertyToName(t *testing.T) {
	f := NewField("title", nil)
	assert.Equal(t, "title", f.Name)
	assert.Equal(t, "title", f.Property)
	assert.Empty(t, f.Options)
}

func TestNewField_WithSpec(t *testing.T) {
	spec := &FieldSpec{Property: "Content", Options: map[string]any{"boost": 2}}
	f := NewField("content", spec)
	assert.Equal(t, "Content", f.Property)
	assert.Equal(t, 2, f.Options["boost"])

	// Options are copied, not shared.
	spec.Options["boost"] = 3
	assert.Equal(t, 2, f.Options["boost"])
}

func TestClassSpec_Empty(t *testing.T) {
	var nilSpec *ClassSpec
	assert.True(t, nilSpec.Empty())
	assert.True(t, (&ClassSpec{}).Empty())
	assert.False(t, (&ClassSpec{Fields: []FieldInclusion{}}).Empty())
}

func TestClassInclusion_Excluded(t *testing.T) {
	assert.True(t, ClassInclusion{Class: "LegacyPage"}.Excluded())
	assert.False(t, ClassInclusion{Class: "Page", Spec: &ClassSpec{}}.Excluded())
}
