package coverage

import (
	"path"
	"strings"
)

// Schema tags the shape of an uploaded coverage table.
type Schema string

const (
	// SchemaPrimary is the "license plate" / "agency state" layout.
	SchemaPrimary Schema = "primary"
	// SchemaAlternative is the "license_plate" / "STATE_GOOGLE" layout.
	SchemaAlternative Schema = "alternative"
	// SchemaUnknown marks a table whose shape could not be identified.
	SchemaUnknown Schema = "unknown"
)

// ParseSchema parses a schema tag case-insensitively. An empty tag stays
// empty; anything unrecognised becomes SchemaUnknown.
func ParseSchema(tag string) Schema {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "":
		return ""
	case string(SchemaPrimary):
		return SchemaPrimary
	case string(SchemaAlternative):
		return SchemaAlternative
	default:
		return SchemaUnknown
	}
}

// Valid reports whether the tag names a schema with a field map.
func (s Schema) Valid() bool {
	_, ok := fieldMaps[s]
	return ok
}

// String implements fmt.Stringer.
func (s Schema) String() string {
	return string(s)
}

// FieldMap names the source columns of the canonical fields that differ
// between schemas.
type FieldMap struct {
	Plate        string
	ClaimedState string
	AgencyName   string
}

// fieldMaps is the schema -> column table. Adding a schema is a new entry here.
var fieldMaps = map[Schema]FieldMap{
	SchemaPrimary: {
		Plate:        "license plate",
		ClaimedState: "agency state",
		AgencyName:   "agency name",
	},
	SchemaAlternative: {
		Plate:        "license_plate",
		ClaimedState: "STATE_GOOGLE",
		AgencyName:   "agency name",
	},
}

// Fields returns the field map for a schema.
func Fields(s Schema) (FieldMap, bool) {
	fm, ok := fieldMaps[s]
	return fm, ok
}

// Schemas lists the recognised schema tags.
func Schemas() []Schema {
	return []Schema{SchemaPrimary, SchemaAlternative}
}

// SchemaResolver maps an uploaded file's name to its schema tag.
type SchemaResolver struct {
	names map[string]Schema
}

// DefaultFilenames are the file names recognised when no override is configured.
var DefaultFilenames = map[Schema][]string{
	SchemaPrimary:     {"Coverage Lps.xlsx", "Coverage Lps.csv"},
	SchemaAlternative: {"updated_agency.xlsx", "updated_agency.csv"},
}

// NewSchemaResolver creates a resolver from schema -> file name lists.
// Names are matched case-insensitively on their base name.
func NewSchemaResolver(filenames map[Schema][]string) *SchemaResolver {
	r := &SchemaResolver{names: make(map[string]Schema)}
	for schema, names := range filenames {
		for _, name := range names {
			if key := baseName(name); key != "" {
				r.names[key] = schema
			}
		}
	}
	return r
}

// DefaultSchemaResolver returns a resolver over DefaultFilenames.
func DefaultSchemaResolver() *SchemaResolver {
	return NewSchemaResolver(DefaultFilenames)
}

// Resolve returns the schema for filename. An empty name yields an empty
// tag; a name that is not configured yields SchemaUnknown.
func (r *SchemaResolver) Resolve(filename string) Schema {
	key := baseName(filename)
	if key == "" {
		return ""
	}
	if schema, ok := r.names[key]; ok {
		return schema
	}
	return SchemaUnknown
}

// baseName strips directories of either separator style and lower-cases.
func baseName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return strings.ToLower(base)
}
