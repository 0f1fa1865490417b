package platemap

import (
	"fmt"
	"strings"
)

// Status is the outcome of a query.
type Status int

const (
	// StatusOK means coverage was found.
	StatusOK Status = iota
	// StatusNoDataForAgencies means no catalog entry matched the selected agencies.
	StatusNoDataForAgencies
	// StatusNoDataForPlate means no consistent coverage row matched the plate.
	StatusNoDataForPlate
	// StatusInvalidFile means the coverage table could not be interpreted.
	StatusInvalidFile
	// StatusNoInput means neither search path had enough input.
	StatusNoInput
)

var statusNames = map[Status]string{
	StatusOK:                "ok",
	StatusNoDataForAgencies: "no_data_for_agencies",
	StatusNoDataForPlate:    "no_data_for_plate",
	StatusInvalidFile:       "invalid_file",
	StatusNoInput:           "no_input",
}

// String returns the wire name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for status, n := range statusNames {
		if n == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(text))
}

// Found reports whether the status carries results.
func (s Status) Found() bool {
	return s == StatusOK
}
