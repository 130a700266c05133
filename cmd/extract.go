package cmd

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/x9-check-image-validator/internal/images"
	"github.com/ginjaninja78/x9-check-image-validator/internal/x9reader"
)

// extractOutput is the directory images are written to.
var extractOutput string

// extractCmd represents the 'extract' command.
var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Write the check images of an X9 file to a directory",
	Long:  `The extract command writes every image view in an X9 file to a directory,
one file per view. Without --output the directory is the file path minus its
extension, so deposit.x9 is extracted into ./deposit. A file without an
extension is extracted into <file>_images.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := x9Path(args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		name := displayName(path)
		dir := extractOutput
		if dir == "" {
			dir = defaultImageDir(path)
		}

		printInfo(out, "Starting: Extracting images %s to %s ...", name, dir)

		doc, err := x9reader.ReadFile(path, x9reader.WithLogger(app.logger))
		if err != nil {
			printError(out, "Error: Extracting images failed %s: %v", name, err)
			return exitWith(exitCode(err))
		}

		n, err := (&images.Writer{Logger: app.logger}).WriteAll(doc, dir)
		if err != nil {
			printError(out, "Error: Extracting images failed %s: %v", name, err)
			return exitWith(exitError)
		}

		printSuccess(out, "Completed: Extracting images %s to %s (%d image(s)).", name, dir, n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(
		&extractOutput,
		"output",
		"o",
		"",
		"Directory to write images to (default is the file path minus extension)",
	)
}

// defaultImageDir is the file path minus its extension, or the path with an
// _images suffix when there is no extension to strip.
func defaultImageDir(path string) string {
	ext := filepath.Ext(path)
	if ext == "" || ext == path || strings.HasSuffix(path, string(filepath.Separator)+ext) {
		return path + "_images"
	}
	return strings.TrimSuffix(path, ext)
}
