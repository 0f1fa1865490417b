// Package application provides the application interface for platemap
// commands and the HTTP server.
//
// Commands and handlers accept an Application rather than the concrete App
// from cmd/platemap/app, so they can be tested against a Mock holding a
// fixture catalog:
//
//	mock := &application.Mock{
//	    PlatemapFunc: func(...platemap.Option) (platemap.Platemap, error) {
//	        return platemap.New(platemap.WithCatalog(catalogs.TestCatalog(t)))
//	    },
//	}
//	cmd := query.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/platemap"
	"github.com/agentstation/platemap/pkg/catalogs"
)

// Application provides what commands need from the running program.
//
// Thread Safety: all methods must be safe for concurrent access.
type Application interface {
	// Catalog returns the agency catalog of the default platemap instance.
	// The catalog is immutable and may be shared freely.
	Catalog() (*catalogs.Catalog, error)

	// Platemap returns the platemap instance. Without options the default
	// instance is returned, loaded once on first use; with options a new
	// instance is created.
	Platemap(opts ...platemap.Option) (platemap.Platemap, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
