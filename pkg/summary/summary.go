// Package summary collapses a group of reconciled rows into one summary
// record per search key.
//
// Each output field is produced by a reducer listed in a table: string
// fields take the distinct values in first-seen order, flag fields are true
// when any contributing row has the flag set. Both coverage schemas reach
// this package as the same canonical record, so they aggregate identically.
package summary

import (
	"strings"

	"github.com/agentstation/platemap/pkg/catalogs"
	"github.com/agentstation/platemap/pkg/coverage"
	"github.com/agentstation/platemap/pkg/errors"
	"github.com/agentstation/platemap/pkg/reconcile"
)

// Separator joins distinct values for display.
const Separator = ", "

// Record is one summary row.
type Record struct {
	Key                    string   `json:"key" yaml:"key"`
	CoveredStates          []string `json:"covered_states" yaml:"covered_states"`
	ExistsInAAP            bool     `json:"exists_in_aap" yaml:"exists_in_aap"`
	WasInAAP               bool     `json:"was_in_aap" yaml:"was_in_aap"`
	AgencyNames            []string `json:"agency_names" yaml:"agency_names"`
	LifecycleStates        []string `json:"lifecycle_states" yaml:"lifecycle_states"`
	Abbreviations          []string `json:"lp_state" yaml:"lp_state"`
	AccountsInLPManagement []string `json:"accounts_in_lp_management" yaml:"accounts_in_lp_management"`
	RecommendedAccounts    []string `json:"recommended_account" yaml:"recommended_account"`
}

type unionReducer struct {
	value func(reconcile.Match) string
	field func(*Record) *[]string
}

type flagReducer struct {
	value func(reconcile.Match) string
	field func(*Record) *bool
}

var unionReducers = []unionReducer{
	{
		value: func(m reconcile.Match) string { return m.Entry.State },
		field: func(r *Record) *[]string { return &r.CoveredStates },
	},
	{
		value: func(m reconcile.Match) string { return m.Record.AgencyName },
		field: func(r *Record) *[]string { return &r.AgencyNames },
	},
	{
		value: func(m reconcile.Match) string { return m.Record.LifecycleState },
		field: func(r *Record) *[]string { return &r.LifecycleStates },
	},
	{
		value: func(m reconcile.Match) string { return m.Record.Abbreviation },
		field: func(r *Record) *[]string { return &r.Abbreviations },
	},
	{
		value: func(m reconcile.Match) string { return m.Record.AccountsInLPManagement },
		field: func(r *Record) *[]string { return &r.AccountsInLPManagement },
	},
	{
		value: func(m reconcile.Match) string { return m.Record.RecommendedAccount },
		field: func(r *Record) *[]string { return &r.RecommendedAccounts },
	},
}

var flagReducers = []flagReducer{
	{
		value: func(m reconcile.Match) string { return m.Record.ExistsInAAP },
		field: func(r *Record) *bool { return &r.ExistsInAAP },
	},
	{
		value: func(m reconcile.Match) string { return m.Record.WasInAAP },
		field: func(r *Record) *bool { return &r.WasInAAP },
	},
}

// Aggregate folds the matches of a single plate into one record. An empty
// key defaults to the plate. The group must be non-empty and share one plate.
func Aggregate(key string, matches []reconcile.Match) (Record, error) {
	if len(matches) == 0 {
		return Record{}, errors.NewValidationError("matches", 0, "cannot aggregate an empty group")
	}
	plate := coverage.NormalizePlate(matches[0].Record.Plate)
	for _, m := range matches[1:] {
		if p := coverage.NormalizePlate(m.Record.Plate); p != plate {
			return Record{}, errors.NewValidationError("matches", p, "group mixes plates "+plate+" and "+p)
		}
	}
	if key == "" {
		key = plate
	}

	rec := newRecord(key)
	for _, r := range unionReducers {
		field := r.field(&rec)
		for _, m := range matches {
			*field = appendDistinct(*field, r.value(m))
		}
	}
	for _, r := range flagReducers {
		field := r.field(&rec)
		for _, m := range matches {
			*field = *field || coverage.FlagSet(r.value(m))
		}
	}

	if len(rec.CoveredStates) == 0 {
		return Record{}, errors.NewValidationError("covered_states", plate, "no covered state in group")
	}
	return rec, nil
}

// FromEntries summarizes catalog entries matched by an agency search. Only
// the catalog-derived fields are filled; flags stay false.
func FromEntries(key string, entries []catalogs.Entry) (Record, error) {
	rec := newRecord(key)
	for _, e := range entries {
		rec.CoveredStates = appendDistinct(rec.CoveredStates, e.State)
		rec.AgencyNames = appendDistinct(rec.AgencyNames, e.Agency)
		rec.Abbreviations = appendDistinct(rec.Abbreviations, e.Abbreviation)
	}
	if len(rec.CoveredStates) == 0 {
		return Record{}, errors.NewValidationError("covered_states", key, "no covered state in entries")
	}
	return rec, nil
}

// Join renders distinct values as one display string.
func Join(values []string) string {
	return strings.Join(values, Separator)
}

func newRecord(key string) Record {
	return Record{
		Key:                    key,
		CoveredStates:          []string{},
		AgencyNames:            []string{},
		LifecycleStates:        []string{},
		Abbreviations:          []string{},
		AccountsInLPManagement: []string{},
		RecommendedAccounts:    []string{},
	}
}

func appendDistinct(values []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return values
	}
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
