// Package catalog provides catalog management commands for the platemap CLI.
package catalog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/platemap/cmd/application"
	"github.com/agentstation/platemap/internal/cmd/output"
	"github.com/agentstation/platemap/pkg/catalogs"
)

// NewCommand creates the catalog command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "catalog",
		GroupID: "management",
		Short:   "Inspect and validate the sub-agency catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newValidateCommand(app))
	return cmd
}

// Report describes a loaded catalog.
type Report struct {
	Source   string `json:"source" yaml:"source"`
	Entries  int    `json:"entries" yaml:"entries"`
	Agencies int    `json:"agencies" yaml:"agencies"`
	States   int    `json:"states" yaml:"states"`
	// Unabbreviated counts entries without an abbreviation; they can only
	// be selected by agency name.
	Unabbreviated int `json:"unabbreviated" yaml:"unabbreviated"`
}

func newValidateCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Load a catalog file and report what it contains",
		Long: `Validate loads a catalog file (the configured one when no file is given)
and fails if it cannot be read or lacks one of the AGENCY, ABBV or
Agency STATE columns.`,
		Example: `  platemap catalog validate
  platemap catalog validate testdata/agencies.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				catalog *catalogs.Catalog
				source  = "configured catalog"
				err     error
			)
			if len(args) == 1 {
				source = args[0]
				catalog, err = catalogs.Load(source)
			} else {
				catalog, err = app.Catalog()
			}
			if err != nil {
				return err
			}

			report := NewReport(source, catalog)
			app.Logger().Debug().
				Str("source", source).
				Int("entries", report.Entries).
				Msg("Catalog validated")

			format := output.DetectFormat(app.OutputFormat())
			if format.IsTable() {
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "✓ %s: %d entries, %d agencies, %d states\n", source, report.Entries, report.Agencies, report.States)
				if report.Unabbreviated > 0 {
					fmt.Fprintf(w, "  %d entries have no abbreviation\n", report.Unabbreviated)
				}
				return nil
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), report)
		},
	}
}

// NewReport summarizes catalog.
func NewReport(source string, catalog *catalogs.Catalog) Report {
	report := Report{
		Source:   source,
		Entries:  catalog.Len(),
		Agencies: len(catalog.Agencies()),
		States:   len(catalog.States()),
	}
	for _, e := range catalog.Entries() {
		if e.Abbreviation == "" {
			report.Unabbreviated++
		}
	}
	return report
}
