package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaBuilderBaseType(t *testing.T) {
	s := NewSchemaBuilder().AddField("host").Build()

	require.Contains(t, s.Properties, "host")
	assert.Equal(t, []string{TypeNull, TypeString}, s.Properties["host"].Type)
	assert.Equal(t, TypeObject, s.Type)
}

func TestSchemaBuilderAddType(t *testing.T) {
	s := NewSchemaBuilder().
		AddType("count", TypeInteger).
		AddType("count", TypeInteger). // duplicate is not added twice
		AddType("latency", TypeNumber).
		Build()

	assert.Equal(t, []string{TypeNull, TypeString, TypeInteger}, s.Properties["count"].Type)
	assert.Equal(t, []string{TypeNull, TypeString, TypeNumber}, s.Properties["latency"].Type)
}

func TestSchemaBuilderKeysPreserveOrder(t *testing.T) {
	s := NewSchemaBuilder().
		AddKey("b", "a").
		AddKey("b", "c").
		Build()

	assert.Equal(t, []string{"b", "a", "c"}, s.KeyProperties)
}

func TestSchemaWiden(t *testing.T) {
	partial := &Schema{
		Properties: map[string]*Property{
			"host":  {Type: []string{TypeString}}, // missing null
			"count": {Type: []string{TypeNull, TypeInteger}},
			"blank": {},
		},
		KeyProperties: []string{"host"},
	}

	widened := partial.Widen()

	assert.Equal(t, []string{TypeNull, TypeString}, widened.Properties["host"].Type)
	assert.Equal(t, []string{TypeNull, TypeInteger}, widened.Properties["count"].Type)
	assert.Equal(t, []string{TypeNull, TypeString}, widened.Properties["blank"].Type)
	assert.Equal(t, []string{"host"}, widened.KeyProperties)
	assert.Equal(t, TypeObject, widened.Type)

	// input is untouched
	assert.Equal(t, []string{TypeString}, partial.Properties["host"].Type)
}

func TestSchemaWidenEveryPropertyNullable(t *testing.T) {
	widened := (&Schema{
		Properties: map[string]*Property{
			"a": {Type: []string{TypeInteger}},
			"b": {Type: []string{TypeString, TypeNumber}},
		},
	}).Widen()

	for name, p := range widened.Properties {
		assert.True(t, p.Nullable(), "property %s must admit null", name)
	}
}

func TestPropertyNamesSorted(t *testing.T) {
	s := NewSchemaBuilder().AddField("zeta").AddField("alpha").AddField("mid").Build()
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, s.PropertyNames())
}
