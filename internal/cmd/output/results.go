package output

import (
	"io"
	"strconv"

	"github.com/agentstation/platemap"
	"github.com/agentstation/platemap/pkg/summary"
)

// FormatResult writes a query result. Tables show the message followed by
// the covered states and the summary; other formats encode the result as is.
func FormatResult(w io.Writer, format Format, res platemap.Result) error {
	formatter := NewFormatter(format)
	if !format.IsTable() {
		return formatter.Format(w, res)
	}
	return formatter.Format(w, ResultTables(res, format == FormatWide))
}

// ResultTables converts a result to table data. A result without coverage
// yields only its message.
func ResultTables(res platemap.Result, wide bool) []Data {
	if !res.Status.Found() {
		return []Data{{Title: res.Message}}
	}

	counts := Data{
		Title:           res.Message,
		Headers:         []string{"State", "Count"},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
	for _, c := range res.StateCounts {
		counts.Rows = append(counts.Rows, []string{c.State, strconv.Itoa(c.Count)})
	}

	return []Data{counts, SummaryTable(res.Summaries, wide)}
}

// SummaryTable converts summary records to table data. The narrow form
// leaves out lifecycle and account columns.
func SummaryTable(records []summary.Record, wide bool) Data {
	headers := []string{"Key", "Covered States", "Agency Names", "LP State", "Exists In AAP", "Was In AAP"}
	if wide {
		headers = append(headers, "Lifecycle States", "Accounts In LP Management", "Recommended Account")
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := []string{
			rec.Key,
			summary.Join(rec.CoveredStates),
			summary.Join(rec.AgencyNames),
			summary.Join(rec.Abbreviations),
			flag(rec.ExistsInAAP),
			flag(rec.WasInAAP),
		}
		if wide {
			row = append(row,
				summary.Join(rec.LifecycleStates),
				summary.Join(rec.AccountsInLPManagement),
				summary.Join(rec.RecommendedAccounts),
			)
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
