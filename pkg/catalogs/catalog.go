// Package catalogs provides the reference catalog of sub-agencies and their
// parent agencies and states.
//
// A Catalog is built once, usually at process start via Load, and is
// immutable afterwards: there are no setters and every accessor returns a
// copy. It is therefore safe to share between concurrent requests without
// locking.
//
// Agency names are not unique across entries (an agency may own several
// sub-agency rows), so lookups return zero, one or many entries.
package catalogs

import "strings"

// Entry is one row of the reference catalog.
type Entry struct {
	Agency       string `json:"agency" yaml:"agency"`             // Parent agency name
	Abbreviation string `json:"abbreviation" yaml:"abbreviation"` // Parent agency abbreviation
	State        string `json:"state" yaml:"state"`               // Two-letter agency state code
}

// Catalog is an immutable reference table.
type Catalog struct {
	entries  []Entry
	byAgency map[string][]int
	byAbbrev map[string][]int
}

// New creates a catalog from entries. Surrounding whitespace is trimmed and
// entries without an agency name are dropped; order is otherwise preserved.
func New(entries ...Entry) *Catalog {
	cat := &Catalog{
		entries:  make([]Entry, 0, len(entries)),
		byAgency: make(map[string][]int),
		byAbbrev: make(map[string][]int),
	}
	for _, e := range entries {
		e = Entry{
			Agency:       strings.TrimSpace(e.Agency),
			Abbreviation: strings.TrimSpace(e.Abbreviation),
			State:        strings.TrimSpace(e.State),
		}
		if e.Agency == "" {
			continue
		}
		idx := len(cat.entries)
		cat.entries = append(cat.entries, e)
		cat.byAgency[e.Agency] = append(cat.byAgency[e.Agency], idx)
		if e.Abbreviation != "" {
			cat.byAbbrev[e.Abbreviation] = append(cat.byAbbrev[e.Abbreviation], idx)
		}
	}
	return cat
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns every entry whose agency name or abbreviation equals one of
// the identifiers. Identifiers may mix names and abbreviations. Each entry is
// returned at most once, in catalog order. No match yields an empty slice.
func (c *Catalog) Lookup(identifiers ...string) []Entry {
	hit := make(map[int]struct{})
	for _, id := range identifiers {
		id = strings.TrimSpace(id)
		for _, idx := range c.byAgency[id] {
			hit[idx] = struct{}{}
		}
		for _, idx := range c.byAbbrev[id] {
			hit[idx] = struct{}{}
		}
	}

	out := make([]Entry, 0, len(hit))
	for idx, e := range c.entries {
		if _, ok := hit[idx]; ok {
			out = append(out, e)
		}
	}
	return out
}

// ByAgency returns the entries recorded for an agency name, in catalog order.
func (c *Catalog) ByAgency(name string) []Entry {
	idxs := c.byAgency[strings.TrimSpace(name)]
	out := make([]Entry, len(idxs))
	for i, idx := range idxs {
		out[i] = c.entries[idx]
	}
	return out
}

// Options lists the selectable agency identifiers: every distinct agency
// name in catalog order followed by every distinct abbreviation.
func (c *Catalog) Options() []string {
	seen := make(map[string]struct{}, len(c.entries)*2)
	out := make([]string, 0, len(c.entries)*2)
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, e := range c.entries {
		add(e.Agency)
	}
	for _, e := range c.entries {
		add(e.Abbreviation)
	}
	return out
}

// Agencies returns the distinct agency names in catalog order.
func (c *Catalog) Agencies() []string {
	return c.distinct(func(e Entry) string { return e.Agency })
}

// States returns the distinct agency states in catalog order.
func (c *Catalog) States() []string {
	return c.distinct(func(e Entry) string { return e.State })
}

func (c *Catalog) distinct(field func(Entry) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range c.entries {
		v := field(e)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
