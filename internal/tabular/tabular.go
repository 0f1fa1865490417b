// Package tabular decodes uploaded or on-disk tables into column-keyed rows.
// CSV files and workbooks use their first record as the header; JSON and YAML
// files hold a sequence of objects keyed by column name. Cell values are coerced to
// strings so downstream code sees one representation regardless of format.
package tabular

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/platemap/pkg/errors"
)

// Format identifies an encoding of tabular data.
type Format string

const (
	// FormatCSV is comma separated values with a header row.
	FormatCSV Format = "csv"
	// FormatJSON is an array of objects.
	FormatJSON Format = "json"
	// FormatYAML is a sequence of mappings.
	FormatYAML Format = "yaml"
	// FormatXLSX is an Excel workbook; only the first sheet is read.
	FormatXLSX Format = "xlsx"
)

// Row is one decoded record keyed by column name.
type Row map[string]string

// Table is a decoded table.
type Table struct {
	// Columns lists column names: header order for CSV, sorted for JSON/YAML.
	Columns []string
	Rows    []Row
}

// FormatFromName picks a format from a file name's extension.
func FormatFromName(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, true
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".xlsx":
		return FormatXLSX, true
	default:
		return "", false
	}
}

// Decode reads a table in the given format. source names the input in errors.
func Decode(r io.Reader, format Format, source string) (*Table, error) {
	switch format {
	case FormatCSV:
		return DecodeCSV(r, source)
	case FormatJSON:
		return DecodeJSON(r, source)
	case FormatYAML:
		return DecodeYAML(r, source)
	case FormatXLSX:
		return DecodeXLSX(r, source)
	default:
		return nil, errors.NewValidationError("format", format, "unsupported table format "+string(format))
	}
}

// DecodeCSV reads a CSV table whose first record is the header. Rows that are
// entirely blank are skipped.
func DecodeCSV(r io.Reader, source string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, errors.WrapParse("csv", source, err)
	}
	table := newTable(header)
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &errors.ParseError{Format: "csv", File: source, Line: line, Message: err.Error(), Err: err}
		}
		table.add(rec)
	}
	return table, nil
}

// DecodeXLSX reads the first sheet of a workbook. The first row is the
// header and entirely blank rows are skipped.
func DecodeXLSX(r io.Reader, source string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.WrapParse("xlsx", source, err)
	}
	defer f.Close() //nolint:errcheck // in-memory workbook

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.WrapParse("xlsx", source, err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	table := newTable(rows[0])
	for _, rec := range rows[1:] {
		table.add(rec)
	}
	return table, nil
}

// newTable starts a table from a header record.
func newTable(header []string) *Table {
	columns := make([]string, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		columns[i] = strings.TrimSpace(col)
	}
	return &Table{Columns: columns}
}

// add appends a positional record. Short records pad missing cells with ""
// and blank records are dropped.
func (t *Table) add(rec []string) {
	if blank(rec) {
		return
	}
	row := make(Row, len(t.Columns))
	for i, col := range t.Columns {
		if col == "" {
			continue
		}
		if i < len(rec) {
			row[col] = strings.TrimSpace(rec[i])
		} else {
			row[col] = ""
		}
	}
	t.Rows = append(t.Rows, row)
}

// DecodeJSON reads a JSON array of objects.
func DecodeJSON(r io.Reader, source string) (*Table, error) {
	var records []map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		if err == io.EOF {
			return &Table{}, nil
		}
		return nil, errors.WrapParse("json", source, err)
	}
	return FromRecords(records), nil
}

// DecodeYAML reads a YAML sequence of mappings.
func DecodeYAML(r io.Reader, source string) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", source, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &Table{}, nil
	}
	var records []map[string]any
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, errors.WrapParse("yaml", source, err)
	}
	return FromRecords(records), nil
}

// FromRecords builds a table from loosely typed records, coercing each cell
// to its string form. Columns are the sorted union of all record keys.
func FromRecords(records []map[string]any) *Table {
	seen := make(map[string]struct{})
	table := &Table{Rows: make([]Row, 0, len(records))}
	for _, rec := range records {
		row := make(Row, len(rec))
		for key, value := range rec {
			col := strings.TrimSpace(key)
			row[col] = Cell(value)
			if _, ok := seen[col]; !ok {
				seen[col] = struct{}{}
				table.Columns = append(table.Columns, col)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	sort.Strings(table.Columns)
	return table
}

// Cell renders a loosely typed value as a trimmed string. Nil becomes "".
func Cell(value any) string {
	if n, ok := value.(json.Number); ok {
		return n.String()
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// Column resolves name against the table's columns: an exact match wins,
// then a case-insensitive match ignoring surrounding spaces.
func (t *Table) Column(name string) (string, bool) {
	return ResolveColumn(t.Columns, name)
}

// ResolveColumn finds name in columns, exact first, then case-insensitively.
func ResolveColumn(columns []string, name string) (string, bool) {
	for _, col := range columns {
		if col == name {
			return col, true
		}
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, col := range columns {
		if strings.ToLower(strings.TrimSpace(col)) == want {
			return col, true
		}
	}
	return "", false
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
