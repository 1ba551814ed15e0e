package cli

import (
	"resumelens/internal/common"
	"resumelens/internal/extract"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdf-file]",
	Short: "Extract plain text from a resume PDF",
	Long: `Extract plain text from a resume PDF without running any analysis.

Useful for inspecting what the analysis pipeline will see, or for
feeding the text into other tools.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	extractCmd.Flags().StringP("format", "f", "text", "Output format: json, text")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	outputFile, _ := cmd.Flags().GetString("output")
	outputFormat, _ := cmd.Flags().GetString("format")
	if err := common.ValidateOutputFormat(outputFormat, cfg.App.SupportedFormats); err != nil {
		return err
	}

	result, err := extract.NewExtractor(logger).ExtractText(args[0])
	if err != nil {
		return err
	}

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(*result, common.CommandConfig{
		OutputFile:   outputFile,
		OutputFormat: outputFormat,
	})
}
