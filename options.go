package platemap

import (
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/agentstation/platemap/pkg/catalogs"
	"github.com/agentstation/platemap/pkg/coverage"
	"github.com/agentstation/platemap/pkg/errors"
)

// config holds the settings applied by options.
type config struct {
	catalog     *catalogs.Catalog
	catalogPath string
	catalogFS   fs.FS
	resolver    *coverage.SchemaResolver
	logger      *zerolog.Logger
}

// Option is a function that configures a Platemap instance.
type Option func(*config) error

// WithCatalog uses an already built catalog.
func WithCatalog(catalog *catalogs.Catalog) Option {
	return func(c *config) error {
		if catalog == nil {
			return &errors.ValidationError{Field: "catalog", Message: "cannot be nil"}
		}
		c.catalog = catalog
		return nil
	}
}

// WithCatalogPath loads the catalog from a file when the instance is created.
func WithCatalogPath(path string) Option {
	return func(c *config) error {
		if path == "" {
			return &errors.ValidationError{Field: "catalog_path", Message: "cannot be empty"}
		}
		c.catalogPath = path
		return nil
	}
}

// WithCatalogFS loads the catalog from name within fsys, e.g. an embed.FS.
func WithCatalogFS(fsys fs.FS, name string) Option {
	return func(c *config) error {
		if fsys == nil || name == "" {
			return &errors.ValidationError{Field: "catalog_fs", Message: "filesystem and name are required"}
		}
		c.catalogFS = fsys
		c.catalogPath = name
		return nil
	}
}

// WithSchemaResolver sets how upload file names map to schema tags.
func WithSchemaResolver(resolver *coverage.SchemaResolver) Option {
	return func(c *config) error {
		if resolver == nil {
			return &errors.ValidationError{Field: "schema_resolver", Message: "cannot be nil"}
		}
		c.resolver = resolver
		return nil
	}
}

// WithLogger sets the logger used when a request context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
