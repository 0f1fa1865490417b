package handlers

import (
	"net/http"

	"github.com/agentstation/platemap/internal/server/response"
)

// AgenciesResponse lists the selectable agency identifiers.
type AgenciesResponse struct {
	// Options holds every agency name followed by every abbreviation.
	Options  []string `json:"options"`
	Agencies []string `json:"agencies"`
	States   []string `json:"states"`
	Count    int      `json:"count"`
}

// HandleAgencies handles GET /api/v1/agencies.
func (h *Handlers) HandleAgencies(w http.ResponseWriter, _ *http.Request) {
	catalog := h.platemap.Catalog()
	options := catalog.Options()
	response.OK(w, AgenciesResponse{
		Options:  options,
		Agencies: nonNil(catalog.Agencies()),
		States:   nonNil(catalog.States()),
		Count:    len(options),
	})
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
