package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/platemap"
	"github.com/agentstation/platemap/pkg/catalogs"
)

// Mock is an Application backed by optional function fields. Unset fields
// fall back to harmless defaults.
type Mock struct {
	PlatemapFunc func(opts ...platemap.Option) (platemap.Platemap, error)
	LoggerFunc   func() *zerolog.Logger
	Format       string
}

var _ Application = (*Mock)(nil)

// Catalog returns the catalog of the mock's platemap instance.
func (m *Mock) Catalog() (*catalogs.Catalog, error) {
	pm, err := m.Platemap()
	if err != nil {
		return nil, err
	}
	return pm.Catalog(), nil
}

// Platemap calls PlatemapFunc, or builds an instance from opts.
func (m *Mock) Platemap(opts ...platemap.Option) (platemap.Platemap, error) {
	if m.PlatemapFunc != nil {
		return m.PlatemapFunc(opts...)
	}
	return platemap.New(opts...)
}

// Logger calls LoggerFunc, or returns a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns Format, defaulting to table.
func (m *Mock) OutputFormat() string {
	if m.Format == "" {
		return "table"
	}
	return m.Format
}

// Version returns a fixed test version.
func (m *Mock) Version() string { return "test" }

// Commit returns a fixed test commit.
func (m *Mock) Commit() string { return "test-commit" }

// Date returns a fixed test date.
func (m *Mock) Date() string { return "test-date" }

// BuiltBy returns a fixed builder name.
func (m *Mock) BuiltBy() string { return "test" }
