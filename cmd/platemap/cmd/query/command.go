// Package query provides the query command for the platemap CLI.
package query

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/platemap"
	"github.com/agentstation/platemap/cmd/application"
	"github.com/agentstation/platemap/internal/cmd/output"
	"github.com/agentstation/platemap/pkg/coverage"
	"github.com/agentstation/platemap/pkg/errors"
	"github.com/agentstation/platemap/pkg/logging"
)

// Flags holds the query command flags.
type Flags struct {
	Agencies []string
	Plate    string
	File     string
	Schema   string
}

// NewCommand creates the query command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "query",
		GroupID: "core",
		Short:   "Show the states covered by agencies or a license plate",
		Long: `Query runs one coverage search.

With --agency the catalog is searched for the given agency names or
abbreviations. Otherwise --plate is looked up in the coverage table given by
--file. The table's layout is recognised from its file name (Coverage Lps.csv,
updated_agency.csv) unless --schema names it.

Outcomes such as "no data" or "invalid file" are printed, not returned as
errors.`,
		Example: `  platemap query --agency DOT --agency "California Highway Patrol"
  platemap query --plate ABC123 --file "Coverage Lps.csv"
  platemap query --plate ABC123 --file export.json --schema alternative -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.Agencies, "agency", "a", nil, "Agency name or abbreviation (repeatable)")
	cmd.Flags().StringVarP(&flags.Plate, "plate", "p", "", "License plate to look up")
	cmd.Flags().StringVarP(&flags.File, "file", "f", "", "Coverage table (csv, json, yaml, xlsx)")
	cmd.Flags().StringVar(&flags.Schema, "schema", "", "Coverage table layout: primary, alternative")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, flags *Flags) error {
	pm, err := app.Platemap()
	if err != nil {
		return err
	}

	req, err := BuildRequest(pm, flags)
	if err != nil {
		return err
	}

	ctx := logging.WithOperation(logging.WithLogger(cmd.Context(), app.Logger()), "query")
	if req.Plate != "" {
		ctx = logging.WithPlate(ctx, req.Plate)
	}
	if len(req.Agencies) > 0 {
		ctx = logging.WithAgencies(ctx, req.Agencies)
	}
	if req.Schema != "" {
		ctx = logging.WithSchema(ctx, req.Schema.String())
	}

	res := pm.Query(ctx, req)
	return output.FormatResult(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), res)
}

// BuildRequest turns command flags into a query request. A file that exists
// but cannot be decoded becomes an unknown-schema table, reported as an
// invalid file; a file that cannot be opened is an error.
func BuildRequest(pm platemap.Platemap, flags *Flags) (platemap.Request, error) {
	req := platemap.Request{
		Agencies: flags.Agencies,
		Plate:    flags.Plate,
	}
	if flags.File == "" {
		return req, nil
	}

	f, err := os.Open(flags.File)
	if err != nil {
		return req, errors.WrapIO("open", flags.File, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	if strings.TrimSpace(flags.Schema) != "" {
		req.Schema = coverage.ParseSchema(flags.Schema)
	} else {
		req.Schema = pm.ResolveSchema(filepath.Base(flags.File))
	}

	rows, err := coverage.Decode(f, filepath.Base(flags.File))
	if err != nil {
		req.Schema = coverage.SchemaUnknown
		req.Rows = []coverage.RawRecord{}
		return req, nil
	}
	req.Rows = rows
	return req, nil
}
