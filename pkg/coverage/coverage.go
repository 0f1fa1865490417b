// Package coverage normalizes uploaded plate coverage tables into one
// canonical record shape.
//
// Two table layouts exist in the wild. They differ only in the column names
// used for the plate and the claimed state; the mapping lives in a small
// per-schema table (see Fields) rather than in branching code.
package coverage

import (
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/platemap/internal/tabular"
	"github.com/agentstation/platemap/pkg/errors"
)

// Columns carried through unchanged by both schemas.
const (
	ColumnLifecycleState         = "lifecycle state"
	ColumnAbbreviation           = "abbreviation"
	ColumnExistsInAAP            = "exists in aap"
	ColumnWasInAAP               = "was in aap"
	ColumnAccountsInLPManagement = "Accounts_In_LP_Magement"
	ColumnRecommendedAccount     = "AGENCY RECOMMENDED ACCOUNT"
)

// RawRecord is one uploaded row keyed by column name.
type RawRecord map[string]string

// Record is a coverage row after normalization. Flag and account fields hold
// the raw cell text.
type Record struct {
	Plate                  string `json:"plate" yaml:"plate"`
	AgencyName             string `json:"agency_name" yaml:"agency_name"`
	ClaimedState           string `json:"claimed_state" yaml:"claimed_state"`
	LifecycleState         string `json:"lifecycle_state,omitempty" yaml:"lifecycle_state,omitempty"`
	Abbreviation           string `json:"abbreviation,omitempty" yaml:"abbreviation,omitempty"`
	ExistsInAAP            string `json:"exists_in_aap,omitempty" yaml:"exists_in_aap,omitempty"`
	WasInAAP               string `json:"was_in_aap,omitempty" yaml:"was_in_aap,omitempty"`
	AccountsInLPManagement string `json:"accounts_in_lp_management,omitempty" yaml:"accounts_in_lp_management,omitempty"`
	RecommendedAccount     string `json:"recommended_account,omitempty" yaml:"recommended_account,omitempty"`
}

// passThrough lists the optional columns copied by name.
var passThrough = []struct {
	column string
	set    func(*Record, string)
}{
	{ColumnLifecycleState, func(r *Record, v string) { r.LifecycleState = v }},
	{ColumnAbbreviation, func(r *Record, v string) { r.Abbreviation = v }},
	{ColumnExistsInAAP, func(r *Record, v string) { r.ExistsInAAP = v }},
	{ColumnWasInAAP, func(r *Record, v string) { r.WasInAAP = v }},
	{ColumnAccountsInLPManagement, func(r *Record, v string) { r.AccountsInLPManagement = v }},
	{ColumnRecommendedAccount, func(r *Record, v string) { r.RecommendedAccount = v }},
}

// FromTable converts a decoded table into raw records.
func FromTable(table *tabular.Table) []RawRecord {
	if table == nil {
		return nil
	}
	out := make([]RawRecord, len(table.Rows))
	for i, row := range table.Rows {
		out[i] = RawRecord(row)
	}
	return out
}

// Decode reads a coverage table whose format follows filename's extension
// (.csv, .json, .yaml, .yml or .xlsx). Other types fail with a
// ValidationError.
func Decode(r io.Reader, filename string) ([]RawRecord, error) {
	format, ok := tabular.FormatFromName(filename)
	if !ok {
		return nil, errors.NewValidationError("file", filename, "unsupported coverage file type "+filepath.Ext(filename))
	}
	table, err := tabular.Decode(r, format, filename)
	if err != nil {
		return nil, err
	}
	return FromTable(table), nil
}

// Normalize maps rows of the given schema into canonical records. Plates are
// upper-cased. It fails with an UnsupportedSchemaError for a tag without a
// field map and with a ColumnError when the plate, state or agency column is
// absent. Column names match exactly first, then case-insensitively.
func Normalize(rows []RawRecord, schema Schema) ([]Record, error) {
	fm, ok := Fields(schema)
	if !ok {
		return nil, errors.NewUnsupportedSchemaError(string(schema))
	}
	out := make([]Record, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	columns := columnsOf(rows)
	var missing []string
	resolve := func(name string) string {
		col, ok := tabular.ResolveColumn(columns, name)
		if !ok {
			missing = append(missing, name)
		}
		return col
	}
	plateCol := resolve(fm.Plate)
	stateCol := resolve(fm.ClaimedState)
	agencyCol := resolve(fm.AgencyName)
	if len(missing) > 0 {
		return nil, errors.NewColumnError(string(schema)+" coverage table", missing...)
	}

	extra := make([]string, len(passThrough))
	for i, p := range passThrough {
		extra[i], _ = tabular.ResolveColumn(columns, p.column)
	}

	for _, row := range rows {
		rec := Record{
			Plate:        NormalizePlate(row[plateCol]),
			AgencyName:   strings.TrimSpace(row[agencyCol]),
			ClaimedState: strings.TrimSpace(row[stateCol]),
		}
		for i, p := range passThrough {
			if extra[i] != "" {
				p.set(&rec, strings.TrimSpace(row[extra[i]]))
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// NormalizePlate trims and upper-cases a plate for comparison.
func NormalizePlate(plate string) string {
	// cases.Caser keeps state; one per call keeps this goroutine safe.
	return cases.Upper(language.Und).String(strings.TrimSpace(plate))
}

// FlagSet reports whether a raw flag cell holds the value 1. Numeric text
// ("1", "1.0") and booleans are accepted; anything else is unset.
func FlagSet(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if f, err := cast.ToFloat64E(raw); err == nil {
		return f == 1
	}
	b, err := cast.ToBoolE(raw)
	return err == nil && b
}

func columnsOf(rows []RawRecord) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range rows {
		for col := range row {
			if _, ok := seen[col]; !ok {
				seen[col] = struct{}{}
				cols = append(cols, col)
			}
		}
	}
	sort.Strings(cols)
	return cols
}
