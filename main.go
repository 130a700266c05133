// =============================================================================
// X9 Check Image Validator - Main Entry Point
// =============================================================================
//
// USAGE:
//   x9tool validate <file>       - Reconcile the control records of a file
//   x9tool extract <file>        - Write the check images of a file
//   x9tool email-confirm <file>  - Email a deposit confirmation
//   x9tool report <file>         - Print or export the deposit summary
//   x9tool process               - Validate every file in the input directory
//   x9tool version               - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Reading, reconciliation, reporting and integrations
//   - pkg/           : Shared file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/x9-check-image-validator/cmd"
)

func main() {
	cmd.Execute()
}
