// Package reconcile joins normalized coverage records against the agency
// catalog.
//
// A record survives only if its plate matches the search, its agency name
// is in the catalog, and the state it claims equals the state the catalog
// records for that agency. The last check is a consistency filter: a record
// whose claimed state contradicts the catalog is discarded.
package reconcile

import (
	"strings"

	"github.com/agentstation/platemap/pkg/catalogs"
	"github.com/agentstation/platemap/pkg/coverage"
)

// Catalog is the part of the agency catalog the join needs.
type Catalog interface {
	ByAgency(name string) []catalogs.Entry
}

// Match is a coverage record joined to one catalog entry.
type Match struct {
	Record coverage.Record `json:"record" yaml:"record"`
	Entry  catalogs.Entry  `json:"entry" yaml:"entry"`
}

// Reconcile filters records to plate, joins each survivor to every catalog
// entry with the same agency name, and keeps the joined rows whose claimed
// state equals the entry's state. Plate comparison is case-insensitive and
// exact. An empty result is the "no data" condition, not an error.
func Reconcile(records []coverage.Record, plate string, catalog Catalog) []Match {
	plate = coverage.NormalizePlate(plate)
	out := make([]Match, 0)
	if plate == "" || catalog == nil {
		return out
	}

	for _, rec := range records {
		if coverage.NormalizePlate(rec.Plate) != plate {
			continue
		}
		claimed := strings.TrimSpace(rec.ClaimedState)
		if claimed == "" {
			continue
		}
		for _, entry := range catalog.ByAgency(rec.AgencyName) {
			if entry.State == claimed {
				out = append(out, Match{Record: rec, Entry: entry})
			}
		}
	}
	return out
}

// Group is the matches for one plate.
type Group struct {
	Plate   string
	Matches []Match
}

// GroupByPlate splits matches by plate in first-seen order, for callers that
// reconcile several plates and aggregate each one separately.
func GroupByPlate(matches []Match) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, m := range matches {
		plate := coverage.NormalizePlate(m.Record.Plate)
		i, ok := index[plate]
		if !ok {
			i = len(groups)
			index[plate] = i
			groups = append(groups, Group{Plate: plate})
		}
		groups[i].Matches = append(groups[i].Matches, m)
	}
	return groups
}
