// =============================================================================
// EDI 850 Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the EDI 850 Converter CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   edi850 process       - Process all EDI files in the input directory
//   edi850 validate      - Parse and validate without writing outputs
//   edi850 watch         - Process files as they arrive
//   edi850 version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, normalization, aggregation and exporters
//   - pkg/           : File management and directory watching
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/EDI850-converter/cmd"
)

func main() {
	cmd.Execute()
}
