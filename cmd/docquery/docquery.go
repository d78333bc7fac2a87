// Package docquerycmder
package docquerycmder

import (
	askcmder "github.com/docqueryco/docquery/cmd/docquery/ask"
	servecmder "github.com/docqueryco/docquery/cmd/docquery/serve"
	versioncmder "github.com/docqueryco/docquery/cmd/docquery/version"
	"github.com/spf13/cobra"
)

const docqueryLongDesc string = `DocQuery answers questions about your documents.

Point it at a PDF, text, or markdown file and ask questions in plain
language. Answers are grounded in the document's own text and cite the
pages they came from.

  docquery ask report.pdf "What was the Q3 revenue?"
  docquery serve`

const docqueryShortDesc string = "DocQuery - Grounded document question answering"

func NewDocqueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docquery",
		Short: docqueryShortDesc,
		Long:  docqueryLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory containing the .docquery config dir (default: current dir, then home)")

	// Add subcommands
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
