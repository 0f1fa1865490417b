package platemap

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/platemap/pkg/catalogs"
	"github.com/agentstation/platemap/pkg/coverage"
	"github.com/agentstation/platemap/pkg/logging"
	"github.com/agentstation/platemap/pkg/reconcile"
	"github.com/agentstation/platemap/pkg/states"
	"github.com/agentstation/platemap/pkg/summary"
)

// Request is one search. Selected agencies take priority over a plate
// search; a plate search needs Plate, Rows and a recognised Schema.
type Request struct {
	// Agencies are agency names or abbreviations, mixed freely.
	Agencies []string `json:"agencies,omitempty" yaml:"agencies,omitempty"`
	// Plate is the license plate to search for, any case.
	Plate string `json:"plate,omitempty" yaml:"plate,omitempty"`
	// Rows is the decoded coverage table. A nil slice means no table; an
	// empty one is a table without rows.
	Rows []coverage.RawRecord `json:"rows,omitempty" yaml:"rows,omitempty"`
	// Schema tags the layout of Rows.
	Schema coverage.Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Search paths a request can take.
const (
	PathAgency = "agency"
	PathPlate  = "plate"
	PathNone   = "none"
)

// Path reports which search path the request takes.
func (r Request) Path() string {
	switch {
	case len(identifiers(r.Agencies)) > 0:
		return PathAgency
	case coverage.NormalizePlate(r.Plate) != "" && r.Rows != nil:
		return PathPlate
	default:
		return PathNone
	}
}

// Result is the outcome of a query. StateCounts and Summaries are never nil
// and are either both empty or both non-empty.
type Result struct {
	Status      Status           `json:"status" yaml:"status"`
	Message     string           `json:"message" yaml:"message"`
	StateCounts []states.Count   `json:"state_counts" yaml:"state_counts"`
	Summaries   []summary.Record `json:"summaries" yaml:"summaries"`
	// Entries are the catalog rows matched by an agency search.
	Entries []catalogs.Entry `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// Display messages per outcome.
const (
	msgAgencies          = "Heatmap for Agencies: "
	msgPlate             = "Heatmap for License Plate: "
	msgNoDataForAgencies = "No data found for the selected agencies"
	msgNoDataForPlate    = "No data found for License Plate: "
	msgInvalidFile       = "Invalid file"
	msgNoInput           = "No search input"
)

// Query dispatches req:
//
//  1. any selected agency: catalog lookup, plate and table ignored
//  2. a plate and a table whose schema is missing, unknown, or whose
//     columns do not fit it: StatusInvalidFile
//  3. a plate, a table and a recognised schema: plate search
//  4. otherwise: StatusNoInput
//
// Expected outcomes are reported through Result.Status, never as errors.
func (p *platemap) Query(ctx context.Context, req Request) Result {
	logger := logging.FromContextOr(ctx, p.logger)

	var res Result
	agencies := identifiers(req.Agencies)
	plate := coverage.NormalizePlate(req.Plate)
	switch req.Path() {
	case PathAgency:
		res = p.queryAgencies(agencies)
	case PathPlate:
		res = p.queryPlate(logger, plate, req.Rows, req.Schema)
	default:
		res = empty(StatusNoInput, msgNoInput)
	}

	logger.Debug().
		Strs("agencies", agencies).
		Str("plate", plate).
		Str("schema", req.Schema.String()).
		Int("rows", len(req.Rows)).
		Stringer("status", res.Status).
		Int("states", len(res.StateCounts)).
		Msg("Query dispatched")

	p.hooks.triggerQuery(req, res)
	return res
}

func (p *platemap) queryAgencies(agencies []string) Result {
	entries := p.catalog.Lookup(agencies...)
	if len(entries) == 0 {
		return empty(StatusNoDataForAgencies, msgNoDataForAgencies)
	}
	key := summary.Join(agencies)
	rec, err := summary.FromEntries(key, entries)
	if err != nil {
		return empty(StatusNoDataForAgencies, msgNoDataForAgencies)
	}
	return Result{
		Status:      StatusOK,
		Message:     msgAgencies + key,
		StateCounts: states.Counts(rec.CoveredStates),
		Summaries:   []summary.Record{rec},
		Entries:     entries,
	}
}

func (p *platemap) queryPlate(logger *zerolog.Logger, plate string, rows []coverage.RawRecord, schema coverage.Schema) Result {
	if !schema.Valid() {
		return empty(StatusInvalidFile, msgInvalidFile)
	}
	records, err := coverage.Normalize(rows, schema)
	if err != nil {
		logger.Debug().Err(err).Str("schema", schema.String()).Msg("Coverage table rejected")
		return empty(StatusInvalidFile, msgInvalidFile)
	}

	matches := reconcile.Reconcile(records, plate, p.catalog)
	if len(matches) == 0 {
		return empty(StatusNoDataForPlate, msgNoDataForPlate+plate)
	}
	rec, err := summary.Aggregate(plate, matches)
	if err != nil {
		return empty(StatusNoDataForPlate, msgNoDataForPlate+plate)
	}
	return Result{
		Status:      StatusOK,
		Message:     msgPlate + plate,
		StateCounts: states.Counts(rec.CoveredStates),
		Summaries:   []summary.Record{rec},
	}
}

func empty(status Status, message string) Result {
	return Result{
		Status:      status,
		Message:     message,
		StateCounts: []states.Count{},
		Summaries:   []summary.Record{},
	}
}

// identifiers trims the selected agencies, drops blanks and collapses
// repeats to their first occurrence.
func identifiers(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
