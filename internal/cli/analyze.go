package cli

import (
	"fmt"
	"strings"

	"resumelens/internal/common"
	"resumelens/internal/extract"
	"resumelens/internal/utils"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file] [job-description-file]",
	Short: "Analyze a resume against a job description",
	Long: `Analyze a resume against a job description using AI.

The resume file may be a PDF or a plain text file. The job description
must be a text file. The analysis runs ATS scoring, job matching, and
structure assessment concurrently, then synthesizes detailed feedback.`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	analyzeCmd.Flags().StringP("format", "f", "", "Output format: json, text, markdown (default from config)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	resumeFile, jobFile := args[0], args[1]

	outputFile, _ := cmd.Flags().GetString("output")
	outputFormat, _ := cmd.Flags().GetString("format")
	if outputFormat == "" {
		outputFormat = cfg.App.DefaultFormat
	}
	if err := common.ValidateOutputFormat(outputFormat, cfg.App.SupportedFormats); err != nil {
		return err
	}

	fileProcessor := common.NewFileProcessor(logger)

	// PDF resumes go through text extraction; anything else is read as text
	var resumeText, jobDescription string
	if utils.GetFileExtension(resumeFile) == ".pdf" {
		result, err := extract.NewExtractor(logger).ExtractText(resumeFile)
		if err != nil {
			return err
		}
		resumeText = result.Text

		contents, err := fileProcessor.ValidateAndReadFiles(jobFile)
		if err != nil {
			return err
		}
		jobDescription = contents[0]
	} else {
		contents, err := fileProcessor.ValidateAndReadFiles(resumeFile, jobFile)
		if err != nil {
			return err
		}
		resumeText, jobDescription = contents[0], contents[1]
	}

	if strings.TrimSpace(resumeText) == "" {
		return fmt.Errorf("resume file %s is empty", resumeFile)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return fmt.Errorf("job description file %s is empty", jobFile)
	}

	synthesizer, err := buildSynthesizer(cfg, nil, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting resume analysis",
		"resume_file", resumeFile,
		"job_file", jobFile,
		"format", outputFormat)

	report, err := synthesizer.Generate(cmd.Context(), resumeText, jobDescription)
	if err != nil {
		return err
	}

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(*report, common.CommandConfig{
		OutputFile:   outputFile,
		OutputFormat: outputFormat,
	})
}
