// =============================================================================
// EDI 850 Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and parses every input document without writing outputs or archiving.
//
// COMMAND USAGE:
//   edi850 validate [--file order.edi]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/EDI850-converter/internal/converter"
	"github.com/ginjaninja78/EDI850-converter/internal/validation"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and input documents without processing",
	Long: `The validate command loads the configuration, then parses and validates
each input document and prints its findings. Nothing is written and no file
is moved.

The command fails if any document has a malformed segment or validation
errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadRuntime(); err != nil {
			return err
		}
		return runValidate(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFile, "file", "", "Path to a single EDI file to validate")
}

// runValidate reports every input document's findings to w.
func runValidate(w io.Writer) error {
	cfg := appConfig

	fmt.Fprintln(w, "Configuration OK")
	fmt.Fprintf(w, "  Input:   %s %v\n", cfg.InputDir, cfg.InputPatterns)
	fmt.Fprintf(w, "  Output:  %s\n", cfg.OutputDir)

	files, err := resolveInputFiles(cfg, validateFile)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(w, "No EDI files found in the input directory.")
		return nil
	}

	options := validation.ValidationOptions{TreatWarningsAsErrors: cfg.TreatWarningsAsErrors}
	failed := 0

	for _, file := range files {
		name := filepath.Base(file)

		data, err := os.ReadFile(file)
		if err != nil {
			failed++
			fmt.Fprintf(w, "\n✗ %s: %v\n", name, err)
			continue
		}

		out, err := converter.Process(string(data), options)
		if err != nil {
			failed++
			fmt.Fprintf(w, "\n✗ %s: %v\n", name, err)
			continue
		}

		mark := "✓"
		if !out.Validation.IsValid {
			failed++
			mark = "✗"
		}
		fmt.Fprintf(w, "\n%s %s: PO %q, %d line items, %d normalized\n",
			mark, name, out.Document.PONumber, len(out.Document.Items), len(out.Lines))
		fmt.Fprint(w, validation.FormatErrors(out.Validation.Errors))
		fmt.Fprintln(w)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed validation", failed, len(files))
	}
	return nil
}
