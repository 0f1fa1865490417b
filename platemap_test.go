package platemap

import (
	"context"
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/platemap/pkg/catalogs"
	"github.com/agentstation/platemap/pkg/coverage"
	"github.com/agentstation/platemap/pkg/errors"
	"github.com/agentstation/platemap/pkg/logging"
	"github.com/agentstation/platemap/pkg/states"
)

const dot = "Department of Transportation"

func newTestPlatemap(t *testing.T) Platemap {
	t.Helper()
	pm, err := New(WithCatalog(catalogs.TestCatalog(t)), WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	return pm
}

func primaryRow(plate, agency, state, exists string) coverage.RawRecord {
	return coverage.RawRecord{
		"license plate":              plate,
		"agency name":                agency,
		"agency state":               state,
		"exists in aap":              exists,
		"was in aap":                 "0",
		"lifecycle state":            "Active",
		"abbreviation":               "DOT",
		"Accounts_In_LP_Magement":    "acct-1",
		"AGENCY RECOMMENDED ACCOUNT": "rec-1",
	}
}

// alternativeRow is primaryRow in the alternative column layout.
func alternativeRow(plate, agency, state, exists string) coverage.RawRecord {
	row := primaryRow(plate, agency, state, exists)
	delete(row, "license plate")
	delete(row, "agency state")
	row["license_plate"] = plate
	row["STATE_GOOGLE"] = state
	return row
}

func primaryTable() []coverage.RawRecord {
	return []coverage.RawRecord{
		primaryRow("abc123", dot, "CA", "0"),
		primaryRow("ABC123", dot, "NV", "1"),
		primaryRow("abc123", "California Highway Patrol", "CA", "0"),
		primaryRow("ZZZ999", "Florida Highway Patrol", "FL", "1"),
		primaryRow("MISMATCH", dot, "TX", "1"),
		primaryRow("MISMATCH", "Florida Highway Patrol", "CA", "1"),
	}
}

func alternativeTable() []coverage.RawRecord {
	var rows []coverage.RawRecord
	for _, r := range primaryTable() {
		rows = append(rows, alternativeRow(r["license plate"], r["agency name"], r["agency state"], r["exists in aap"]))
	}
	return rows
}

func TestQuery(t *testing.T) {
	pm := newTestPlatemap(t)

	tests := []struct {
		name       string
		req        Request
		wantStatus Status
		wantStates []states.Count
		wantMsg    string
	}{
		{
			name:       "agency abbreviation resolves to distinct first-seen states",
			req:        Request{Agencies: []string{"DOT"}},
			wantStatus: StatusOK,
			wantStates: []states.Count{{State: "CA", Count: 1}, {State: "NV", Count: 1}},
			wantMsg:    "Heatmap for Agencies: DOT",
		},
		{
			name:       "agencies take priority over plate input",
			req:        Request{Agencies: []string{"FHP"}, Plate: "ABC123", Rows: primaryTable(), Schema: coverage.SchemaPrimary},
			wantStatus: StatusOK,
			wantStates: []states.Count{{State: "FL", Count: 1}},
			wantMsg:    "Heatmap for Agencies: FHP",
		},
		{
			name:       "agencies take priority over an invalid file",
			req:        Request{Agencies: []string{"CHP"}, Plate: "ABC123", Rows: primaryTable(), Schema: coverage.SchemaUnknown},
			wantStatus: StatusOK,
			wantStates: []states.Count{{State: "CA", Count: 1}},
		},
		{
			name:       "unknown agencies",
			req:        Request{Agencies: []string{"NOPE"}},
			wantStatus: StatusNoDataForAgencies,
			wantMsg:    "No data found for the selected agencies",
		},
		{
			name:       "blank agencies are no selection",
			req:        Request{Agencies: []string{" ", ""}},
			wantStatus: StatusNoInput,
			wantMsg:    "No search input",
		},
		{
			name:       "plate search primary",
			req:        Request{Plate: "abc123", Rows: primaryTable(), Schema: coverage.SchemaPrimary},
			wantStatus: StatusOK,
			wantStates: []states.Count{{State: "CA", Count: 1}, {State: "NV", Count: 1}},
			wantMsg:    "Heatmap for License Plate: ABC123",
		},
		{
			name:       "plate search alternative",
			req:        Request{Plate: "ABC123", Rows: alternativeTable(), Schema: coverage.SchemaAlternative},
			wantStatus: StatusOK,
			wantStates: []states.Count{{State: "CA", Count: 1}, {State: "NV", Count: 1}},
		},
		{
			name:       "every row contradicts the catalog",
			req:        Request{Plate: "MISMATCH", Rows: primaryTable(), Schema: coverage.SchemaPrimary},
			wantStatus: StatusNoDataForPlate,
			wantMsg:    "No data found for License Plate: MISMATCH",
		},
		{
			name:       "plate absent from table",
			req:        Request{Plate: "NOTHERE", Rows: primaryTable(), Schema: coverage.SchemaPrimary},
			wantStatus: StatusNoDataForPlate,
		},
		{
			name:       "empty table",
			req:        Request{Plate: "ABC123", Rows: []coverage.RawRecord{}, Schema: coverage.SchemaPrimary},
			wantStatus: StatusNoDataForPlate,
		},
		{
			name:       "unknown schema",
			req:        Request{Plate: "ABC123", Rows: primaryTable(), Schema: coverage.SchemaUnknown},
			wantStatus: StatusInvalidFile,
			wantMsg:    "Invalid file",
		},
		{
			name:       "missing schema tag",
			req:        Request{Plate: "ABC123", Rows: primaryTable()},
			wantStatus: StatusInvalidFile,
		},
		{
			name:       "columns do not fit the schema",
			req:        Request{Plate: "ABC123", Rows: primaryTable(), Schema: coverage.SchemaAlternative},
			wantStatus: StatusInvalidFile,
		},
		{
			name:       "nothing at all",
			req:        Request{},
			wantStatus: StatusNoInput,
		},
		{
			name:       "table without plate",
			req:        Request{Rows: primaryTable(), Schema: coverage.SchemaPrimary},
			wantStatus: StatusNoInput,
		},
		{
			name:       "unknown table without plate",
			req:        Request{Rows: primaryTable(), Schema: coverage.SchemaUnknown},
			wantStatus: StatusNoInput,
		},
		{
			name:       "plate without table",
			req:        Request{Plate: "ABC123", Schema: coverage.SchemaPrimary},
			wantStatus: StatusNoInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := pm.Query(context.Background(), tt.req)
			assert.Equal(t, tt.wantStatus, res.Status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, res.Message)
			}

			require.NotNil(t, res.StateCounts)
			require.NotNil(t, res.Summaries)
			assert.Equal(t, len(res.StateCounts) > 0, len(res.Summaries) > 0, "counts and summaries must agree")
			assert.Equal(t, res.Status == StatusOK, len(res.StateCounts) > 0)

			if tt.wantStates == nil {
				assert.Empty(t, res.StateCounts)
			} else {
				assert.Equal(t, tt.wantStates, res.StateCounts)
			}
			seen := map[string]bool{}
			for _, c := range res.StateCounts {
				assert.Equal(t, 1, c.Count)
				assert.False(t, seen[c.State])
				seen[c.State] = true
			}
		})
	}
}

func TestQuerySchemaTransparency(t *testing.T) {
	pm := newTestPlatemap(t)

	primary := pm.Query(context.Background(), Request{Plate: "ABC123", Rows: primaryTable(), Schema: coverage.SchemaPrimary})
	alternative := pm.Query(context.Background(), Request{Plate: "ABC123", Rows: alternativeTable(), Schema: coverage.SchemaAlternative})

	require.Equal(t, StatusOK, primary.Status)
	if diff := cmp.Diff(primary.Summaries, alternative.Summaries); diff != "" {
		t.Errorf("summaries differ between schemas (-primary +alternative):\n%s", diff)
	}
}

func TestQueryPlateSummary(t *testing.T) {
	pm := newTestPlatemap(t)

	res := pm.Query(context.Background(), Request{Plate: "abc123", Rows: primaryTable(), Schema: coverage.SchemaPrimary})
	require.Len(t, res.Summaries, 1)

	rec := res.Summaries[0]
	assert.Equal(t, "ABC123", rec.Key)
	assert.Equal(t, []string{"CA", "NV"}, rec.CoveredStates)
	assert.True(t, rec.ExistsInAAP, "one row with the flag set is enough")
	assert.False(t, rec.WasInAAP)
	assert.Equal(t, []string{dot, "California Highway Patrol"}, rec.AgencyNames)
	assert.Equal(t, []string{"DOT"}, rec.Abbreviations)
	assert.Empty(t, res.Entries)
}

func TestQueryAgencySummary(t *testing.T) {
	pm := newTestPlatemap(t)

	res := pm.Query(context.Background(), Request{Agencies: []string{" DOT ", "California Highway Patrol"}})
	require.Equal(t, StatusOK, res.Status)
	require.Len(t, res.Summaries, 1)
	assert.Equal(t, "DOT, California Highway Patrol", res.Summaries[0].Key)
	assert.Len(t, res.Entries, 4)
	assert.Equal(t, "Heatmap for Agencies: DOT, California Highway Patrol", res.Message)

	res = pm.Query(context.Background(), Request{Agencies: []string{"DOT", " DOT", "CHP", "DOT "}})
	require.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "DOT, CHP", res.Summaries[0].Key, "repeated selections collapse")
	assert.Equal(t, "Heatmap for Agencies: DOT, CHP", res.Message)
}

func TestQueryHooksAndLogging(t *testing.T) {
	logger := logging.NewTestLogger(t)
	pm, err := New(WithCatalog(catalogs.TestCatalog(t)), WithLogger(logger.Logger))
	require.NoError(t, err)

	var got []Status
	pm.OnQuery(func(_ Request, res Result) { got = append(got, res.Status) })
	pm.OnQuery(nil)

	pm.Query(context.Background(), Request{Agencies: []string{"DOT"}})
	pm.Query(context.Background(), Request{})

	assert.Equal(t, []Status{StatusOK, StatusNoInput}, got)
	logger.AssertContains(t, "Query dispatched")
	logger.AssertContains(t, `"status":"no_input"`)
}

func TestQueryUsesContextLogger(t *testing.T) {
	pm := newTestPlatemap(t)
	logger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), logger.Logger)
	pm.Query(ctx, Request{Plate: "X", Rows: primaryTable()})

	logger.AssertContains(t, `"status":"invalid_file"`)
}

func TestNew(t *testing.T) {
	t.Run("requires a catalog", func(t *testing.T) {
		_, err := New()
		var cfgErr *errors.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("nil catalog option", func(t *testing.T) {
		_, err := New(WithCatalog(nil))
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("catalog from filesystem", func(t *testing.T) {
		fsys := fstest.MapFS{"agencies.csv": {Data: []byte("AGENCY,ABBV,Agency STATE\nHighway Patrol,HP,OR\n")}}
		pm, err := New(WithCatalogFS(fsys, "agencies.csv"))
		require.NoError(t, err)
		assert.Equal(t, 1, pm.Catalog().Len())
	})

	t.Run("malformed catalog is fatal", func(t *testing.T) {
		fsys := fstest.MapFS{"agencies.csv": {Data: []byte("AGENCY,ABBV\nHighway Patrol,HP\n")}}
		_, err := New(WithCatalogFS(fsys, "agencies.csv"))
		assert.True(t, errors.IsMissingColumn(err))
	})

	t.Run("custom schema resolver", func(t *testing.T) {
		pm, err := New(
			WithCatalog(catalogs.TestCatalog(t)),
			WithSchemaResolver(coverage.NewSchemaResolver(map[coverage.Schema][]string{
				coverage.SchemaPrimary: {"plates.csv"},
			})),
		)
		require.NoError(t, err)
		assert.Equal(t, coverage.SchemaPrimary, pm.ResolveSchema("/tmp/plates.csv"))
		assert.Equal(t, coverage.SchemaUnknown, pm.ResolveSchema("Coverage Lps.csv"))
	})
}

func TestStatusText(t *testing.T) {
	for status, name := range statusNames {
		data, err := json.Marshal(status)
		require.NoError(t, err)
		assert.Equal(t, `"`+name+`"`, string(data))

		var back Status
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, status, back)
	}

	var s Status
	assert.Error(t, s.UnmarshalText([]byte("bogus")))
	_, err := Status(99).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "status(99)", Status(99).String())
}

func TestResultJSON(t *testing.T) {
	pm := newTestPlatemap(t)
	data, err := json.Marshal(pm.Query(context.Background(), Request{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"no_input","message":"No search input","state_counts":[],"summaries":[]}`, string(data))
}

func TestRequestPath(t *testing.T) {
	rows := []coverage.RawRecord{}
	assert.Equal(t, PathAgency, Request{Agencies: []string{"DOT"}, Plate: "A", Rows: rows}.Path())
	assert.Equal(t, PathPlate, Request{Agencies: []string{" "}, Plate: "A", Rows: rows}.Path())
	assert.Equal(t, PathNone, Request{Plate: "A"}.Path())
	assert.Equal(t, PathNone, Request{Rows: rows}.Path())
}
