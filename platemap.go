// Package platemap answers coverage questions about license plates and
// agencies.
//
// A query either selects agencies, which are looked up directly in the
// agency catalog, or searches one plate within an uploaded coverage table.
// The plate search normalizes the table, joins it to the catalog with a
// state-consistency check, and folds the surviving rows into one summary.
// Both paths return the distinct covered states for the map view together
// with the summary rows for the table view.
//
// The catalog is loaded once by New and never changes afterwards, so a
// Platemap is safe for concurrent use.
package platemap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agentstation/platemap/pkg/catalogs"
	"github.com/agentstation/platemap/pkg/coverage"
	"github.com/agentstation/platemap/pkg/errors"
	"github.com/agentstation/platemap/pkg/logging"
)

// Platemap runs coverage queries against a fixed agency catalog.
type Platemap interface {
	// Query dispatches a request to the agency or plate search path.
	Query(ctx context.Context, req Request) Result

	// Catalog returns the agency catalog.
	Catalog() *catalogs.Catalog

	// ResolveSchema maps an uploaded file name to a schema tag.
	ResolveSchema(filename string) coverage.Schema

	// OnQuery registers a callback fired after every query.
	OnQuery(QueryHook)
}

// platemap is the default implementation of Platemap.
type platemap struct {
	catalog  *catalogs.Catalog
	resolver *coverage.SchemaResolver
	logger   *zerolog.Logger
	hooks    *hooks
}

// New creates a Platemap. A catalog is required, either built (WithCatalog)
// or loaded (WithCatalogPath, WithCatalogFS); a catalog that fails to load
// is an error.
func New(opts ...Option) (Platemap, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	catalog := cfg.catalog
	if catalog == nil {
		var err error
		switch {
		case cfg.catalogFS != nil:
			catalog, err = catalogs.LoadFS(cfg.catalogFS, cfg.catalogPath)
		case cfg.catalogPath != "":
			catalog, err = catalogs.Load(cfg.catalogPath)
		default:
			return nil, errors.NewConfigError("platemap", "no catalog configured", nil)
		}
		if err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
	}

	resolver := cfg.resolver
	if resolver == nil {
		resolver = coverage.DefaultSchemaResolver()
	}
	logger := cfg.logger
	if logger == nil {
		logger = logging.Default()
	}

	return &platemap{
		catalog:  catalog,
		resolver: resolver,
		logger:   logger,
		hooks:    newHooks(),
	}, nil
}

// Catalog returns the agency catalog.
func (p *platemap) Catalog() *catalogs.Catalog {
	return p.catalog
}

// ResolveSchema maps an uploaded file name to a schema tag.
func (p *platemap) ResolveSchema(filename string) coverage.Schema {
	return p.resolver.Resolve(filename)
}

// OnQuery registers a callback fired after every query.
func (p *platemap) OnQuery(fn QueryHook) {
	p.hooks.OnQuery(fn)
}
