package catalogs

import "testing"

// TestCatalog returns a small fixture catalog. DOT has two California
// sub-agency rows and one Nevada row; CHP is California only; FHP is Florida.
func TestCatalog(t testing.TB) *Catalog {
	t.Helper()
	return New(
		Entry{Agency: "Department of Transportation", Abbreviation: "DOT", State: "CA"},
		Entry{Agency: "Department of Transportation", Abbreviation: "DOT", State: "CA"},
		Entry{Agency: "Department of Transportation", Abbreviation: "DOT", State: "NV"},
		Entry{Agency: "California Highway Patrol", Abbreviation: "CHP", State: "CA"},
		Entry{Agency: "Florida Highway Patrol", Abbreviation: "FHP", State: "FL"},
	)
}
