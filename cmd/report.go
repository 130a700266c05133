package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/x9-check-image-validator/internal/convert"
	"github.com/ginjaninja78/x9-check-image-validator/internal/deposit"
	"github.com/ginjaninja78/x9-check-image-validator/internal/report"
	"github.com/ginjaninja78/x9-check-image-validator/internal/x9reader"
)

// xlsxPath is where the deposit summary workbook is written.
var xlsxPath string

// reportCmd represents the 'report' command.
var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Print the deposit summary of an X9 file",
	Long:  `The report command prints the deposit summary of an X9 file: originator,
creation date and time, and per-bundle item counts, image counts and totals as
declared by the control records. With --xlsx the summary is also written as an
Excel workbook.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := x9Path(args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		name := displayName(path)

		doc, err := x9reader.ReadFile(path, x9reader.WithLogger(app.logger))
		if err != nil {
			printError(out, "Error: cannot read %s: %v", name, err)
			return exitWith(exitCode(err))
		}

		summary, err := deposit.BuildSummary(doc, path)
		if err != nil {
			printError(out, "Error: cannot summarise %s: %v", name, err)
			return exitWith(exitMalformed)
		}

		printSummary(cmd, summary)

		if xlsxPath != "" {
			if err := report.WriteDepositWorkbook(summary, xlsxPath); err != nil {
				printError(out, "Error: %v", err)
				return exitWith(exitError)
			}
			printSuccess(out, "Workbook written: %s", xlsxPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(
		&xlsxPath,
		"xlsx",
		"",
		"Also write the summary as an XLSX workbook at this path",
	)
}

func printSummary(cmd *cobra.Command, s *deposit.Summary) {
	out := cmd.OutOrStdout()
	printInfo(out, "File:    %s", s.FileName)
	printInfo(out, "Client:  %s", s.CustomerName)
	printInfo(out, "Created: %s %s", s.DateText(), s.TimeText())

	for i, b := range s.Bundles {
		printInfo(out, "Bundle %d: account %s, %d check(s), %d image(s), %s",
			i+1, b.CreditAccount, b.ItemCount, b.ImageCount, convert.FormatMoney(b.Total))
	}
	printInfo(out, "%s", strings.Repeat("-", 40))
	printInfo(out, "Totals:  %d check(s), %d image(s), %s",
		s.ItemCount, s.ImageCount, convert.FormatMoney(s.Total))
}
