package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSchema(t *testing.T) {
	tests := []struct {
		in    string
		want  Schema
		valid bool
	}{
		{"primary", SchemaPrimary, true},
		{" Alternative ", SchemaAlternative, true},
		{"", "", false},
		{"xlsx", SchemaUnknown, false},
		{"unknown", SchemaUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseSchema(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, got.Valid())
		})
	}
}

func TestSchemaResolver(t *testing.T) {
	r := DefaultSchemaResolver()

	tests := []struct {
		filename string
		want     Schema
	}{
		{"Coverage Lps.xlsx", SchemaPrimary},
		{"coverage lps.CSV", SchemaPrimary},
		{"/uploads/Coverage Lps.csv", SchemaPrimary},
		{`C:\Users\ops\updated_agency.xlsx`, SchemaAlternative},
		{"updated_agency.csv", SchemaAlternative},
		{"coverage.csv", SchemaUnknown},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.filename))
		})
	}
}

func TestSchemaResolverCustom(t *testing.T) {
	r := NewSchemaResolver(map[Schema][]string{
		SchemaAlternative: {"google.json", " "},
	})
	assert.Equal(t, SchemaAlternative, r.Resolve("data/GOOGLE.json"))
	assert.Equal(t, SchemaUnknown, r.Resolve("Coverage Lps.csv"))
}

func TestFields(t *testing.T) {
	for _, s := range Schemas() {
		fm, ok := Fields(s)
		assert.True(t, ok, s)
		assert.Equal(t, "agency name", fm.AgencyName)
	}
	_, ok := Fields(SchemaUnknown)
	assert.False(t, ok)
}
