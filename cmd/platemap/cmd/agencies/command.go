// Package agencies provides the agencies command for the platemap CLI.
package agencies

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/platemap/cmd/application"
	"github.com/agentstation/platemap/internal/cmd/output"
)

// NewCommand creates the agencies command.
func NewCommand(app application.Application) *cobra.Command {
	var options bool

	cmd := &cobra.Command{
		Use:     "agencies",
		Aliases: []string{"agency"},
		GroupID: "core",
		Short:   "List the sub-agency catalog",
		Long: `Agencies prints the sub-agency catalog: one row per sub-agency with its
parent agency name, abbreviation and state.

With --options only the selectable identifiers are printed: every agency
name followed by every abbreviation, as accepted by "query --agency".`,
		Example: `  platemap agencies
  platemap agencies --options -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := app.Catalog()
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			w := cmd.OutOrStdout()

			if !options {
				return output.NewFormatter(format).Format(w, catalog.Entries())
			}

			if !format.IsTable() {
				return output.NewFormatter(format).Format(w, catalog.Options())
			}
			for _, opt := range catalog.Options() {
				if _, err := fmt.Fprintln(w, opt); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&options, "options", false, "Print selectable agency identifiers only")
	return cmd
}
