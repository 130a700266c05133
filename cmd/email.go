// =============================================================================
// X9 Check Image Validator - Email Confirm Command
// =============================================================================
//
// COMMAND USAGE:
//   x9tool email-confirm [file] [flags]
//
// FLAGS:
//   --require-valid : Refuse to send unless the file validates clean
//
// PROCESSING:
//   1. Read the X9 file
//   2. Validate it (when --require-valid is set)
//   3. Find the originator in the customer directory
//   4. Render and send the deposit confirmation
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/x9-check-image-validator/internal/customer"
	"github.com/ginjaninja78/x9-check-image-validator/internal/mailer"
	"github.com/ginjaninja78/x9-check-image-validator/internal/validation"
	"github.com/ginjaninja78/x9-check-image-validator/internal/x9reader"
)

// requireValid refuses to send confirmations for files with findings.
var requireValid bool

// emailConfirmCmd represents the 'email-confirm' command.
var emailConfirmCmd = &cobra.Command{
	Use:   "email-confirm [file]",
	Short: "Email a deposit confirmation to the file's originator",
	Long: `The email-confirm command summarises an X9 file (bundles, item counts,
image counts and totals as declared by its control records) and emails the
summary to the contact address of the customer named in the file header.

Customers are looked up in the directory configured under 'customers'
(SQLite, PostgreSQL, an XLSX workbook or a CSV file).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := x9Path(args)
		if err != nil {
			return err
		}
		return runEmailConfirm(cmd, path)
	},
}

func init() {
	rootCmd.AddCommand(emailConfirmCmd)

	emailConfirmCmd.Flags().BoolVar(
		&requireValid,
		"require-valid",
		false,
		"Only send when the file validates without findings",
	)
}

func runEmailConfirm(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	name := displayName(path)
	cfg := app.cfg

	doc, err := x9reader.ReadFile(path, x9reader.WithLogger(app.logger))
	if err != nil {
		printError(out, "Error: cannot read %s: %v", name, err)
		return exitWith(exitCode(err))
	}

	if requireValid {
		result, err := validation.NewValidator(validation.WithLogger(app.logger)).Validate(doc)
		if err != nil {
			printError(out, "Error: cannot validate %s: %v", name, err)
			return exitWith(exitCode(err))
		}
		if !result.Status {
			printFindings(out, result)
			printError(out, "Error: %s validation failed (%d issue(s)); confirmation not sent", name, len(result.Findings))
			return exitWith(exitFindings)
		}
	}

	directory, err := customer.Open(ctx, cfg.Customers)
	if err != nil {
		printError(out, "Error: cannot open customer directory: %v", err)
		return exitWith(exitError)
	}
	defer directory.Close()

	renderer, err := mailer.NewRenderer(cfg.Email)
	if err != nil {
		printError(out, "Error: %v", err)
		return exitWith(exitError)
	}
	sender, err := mailer.NewSMTPSender(cfg.SMTP)
	if err != nil {
		printError(out, "Error: %v", err)
		return exitWith(exitError)
	}

	service := &mailer.Service{
		Directory: directory,
		Renderer:  renderer,
		Sender:    sender,
		From:      cfg.SMTP.From,
		Bcc:       cfg.Email.BCC,
		Logger:    app.logger,
	}
	receipt, err := service.SendConfirmation(ctx, doc, path)
	if err != nil {
		printError(out, "Error: cannot send confirmation for %s: %v", name, err)
		return exitWith(exitCode(err))
	}

	printSuccess(out, "Email Sent: %s | %s", receipt.To, receipt.Subject)
	return nil
}
