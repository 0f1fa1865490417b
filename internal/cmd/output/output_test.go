package output

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/platemap"
	"github.com/agentstation/platemap/pkg/catalogs"
)

func agencyResult(t *testing.T) platemap.Result {
	t.Helper()
	pm, err := platemap.New(platemap.WithCatalog(catalogs.TestCatalog(t)))
	require.NoError(t, err)
	return pm.Query(context.Background(), platemap.Request{Agencies: []string{"DOT"}})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", "", false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"wide", FormatWide, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML))
	assert.Equal(t, &TableFormatter{Wide: true}, NewFormatter(FormatWide))
	assert.Equal(t, &TableFormatter{}, NewFormatter("unknown"))
}

func TestResultTables(t *testing.T) {
	res := agencyResult(t)

	tables := ResultTables(res, false)
	require.Len(t, tables, 2)
	assert.Equal(t, "Heatmap for Agencies: DOT", tables[0].Title)
	assert.Equal(t, [][]string{{"CA", "1"}, {"NV", "1"}}, tables[0].Rows)

	require.Len(t, tables[1].Rows, 1)
	assert.Equal(t, []string{"DOT", "CA, NV", "Department of Transportation", "DOT", "0", "0"}, tables[1].Rows[0])

	wide := ResultTables(res, true)
	assert.Len(t, wide[1].Headers, 9)
	assert.Len(t, wide[1].Rows[0], 9)
}

func TestResultTablesWithoutCoverage(t *testing.T) {
	tables := ResultTables(platemap.Result{Status: platemap.StatusNoInput, Message: "No search input"}, false)
	assert.Equal(t, []Data{{Title: "No search input"}}, tables)

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, tables))
	assert.Equal(t, "No search input\n", buf.String())
}

func TestFormatResult(t *testing.T) {
	res := agencyResult(t)

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, FormatResult(&buf, FormatTable, res))
		out := buf.String()
		assert.Contains(t, out, "Heatmap for Agencies: DOT")
		assert.Contains(t, out, "NV")
		assert.Contains(t, out, "Department of Transportation")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, FormatResult(&buf, FormatJSON, res))
		assert.Contains(t, buf.String(), `"status": "ok"`)
		assert.Contains(t, buf.String(), `"covered_states": [`)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, FormatResult(&buf, FormatYAML, res))
		assert.Contains(t, buf.String(), "message:")
		assert.Contains(t, buf.String(), "Heatmap for Agencies: DOT")
	})
}

func TestTableFormatterStructSlice(t *testing.T) {
	data := structSliceToTableData(catalogs.TestCatalog(t).Entries())
	require.NotNil(t, data)
	assert.Equal(t, []string{"Agency", "Abbreviation", "State"}, data.Headers)
	assert.Equal(t, []string{"Florida Highway Patrol", "FHP", "FL"}, data.Rows[4])

	assert.Nil(t, structSliceToTableData([]catalogs.Entry{}))
	assert.Nil(t, structSliceToTableData("text"))
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"count": 2}))
	assert.JSONEq(t, `{"count": 2}`, buf.String())
}
