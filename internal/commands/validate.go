package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/saft/internal/report"
	"github.com/cleared-dev/saft/internal/validate"
)

// Report output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatXLSX = "xlsx"
)

func newValidateCommand() *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate an audit file against the structural and arithmetic checks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			rep := validate.Document(data)
			if err := writeReport(cmd.OutOrStdout(), out, format, filepath.Base(args[0]), rep); err != nil {
				return err
			}
			if rep.HasFailures() {
				return fmt.Errorf("%w: %d of %d", ErrChecksFailed, rep.Failed, rep.TotalTests)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "report format: text, json or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "report file (default stdout)")

	return cmd
}

// writeReport renders rep to path, or to stdout when path is empty.
func writeReport(stdout io.Writer, path, format, title string, rep report.Report) error {
	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case formatText:
		return report.WriteText(w, title, rep)
	case formatJSON:
		return report.WriteJSON(w, rep)
	case formatXLSX:
		return report.WriteXLSX(w, title, rep)
	default:
		return fmt.Errorf("unknown format %q (want text, json or xlsx)", format)
	}
}
