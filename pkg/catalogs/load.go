package catalogs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agentstation/platemap/internal/tabular"
	"github.com/agentstation/platemap/pkg/errors"
)

// Catalog column headers as they appear in the sub-agency spreadsheet.
const (
	ColumnAgency       = "AGENCY"
	ColumnAbbreviation = "ABBV"
	ColumnState        = "Agency STATE"
)

// columnAliases lists accepted headers per field, preferred header first.
// Matching is case-insensitive.
var columnAliases = []struct {
	field   string
	headers []string
}{
	{field: ColumnAgency, headers: []string{ColumnAgency, "agency name"}},
	{field: ColumnAbbreviation, headers: []string{ColumnAbbreviation, "abbreviation"}},
	{field: ColumnState, headers: []string{ColumnState, "state"}},
}

// Load reads a catalog file. The format follows the extension: .csv, .json,
// .yaml, .yml or .xlsx. Any failure is fatal for callers: a missing or malformed
// catalog cannot serve queries.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return nil, errors.NewConfigError("catalog", "catalog path is required", nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	return decodeNamed(f, filepath.Base(path))
}

// LoadFS reads a catalog file from a filesystem, e.g. an embed.FS or
// fstest.MapFS.
func LoadFS(fsys fs.FS, name string) (*Catalog, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, errors.WrapIO("open", name, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	return decodeNamed(f, name)
}

// Decode reads a catalog in the given table format.
func Decode(r io.Reader, format tabular.Format, source string) (*Catalog, error) {
	table, err := tabular.Decode(r, format, source)
	if err != nil {
		return nil, err
	}
	return FromTable(table, source)
}

// FromTable builds a catalog from a decoded table. All three catalog columns
// must be present, so a file with no header at all is rejected. A header
// with no rows is an empty catalog.
func FromTable(table *tabular.Table, source string) (*Catalog, error) {
	resolved := make(map[string]string, len(columnAliases))
	var missing []string
	for _, alias := range columnAliases {
		found := false
		for _, header := range alias.headers {
			if col, ok := table.Column(header); ok {
				resolved[alias.field] = col
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, alias.field)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewColumnError(source, missing...)
	}

	entries := make([]Entry, 0, len(table.Rows))
	for _, row := range table.Rows {
		entries = append(entries, Entry{
			Agency:       row[resolved[ColumnAgency]],
			Abbreviation: row[resolved[ColumnAbbreviation]],
			State:        row[resolved[ColumnState]],
		})
	}
	return New(entries...), nil
}

func decodeNamed(r io.Reader, name string) (*Catalog, error) {
	format, ok := tabular.FormatFromName(name)
	if !ok {
		return nil, errors.NewValidationError("catalog", name, "unsupported catalog file type "+filepath.Ext(name))
	}
	return Decode(r, format, name)
}
