package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumelens/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisReport", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisReport", &ReportMarkdownFormatter{})
	registry.RegisterFormatter("text", "ExtractionResult", &ExtractionTextFormatter{})
	registry.RegisterFormatter("markdown", "ExtractionResult", &ExtractionTextFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisReport, *types.AnalysisReport:
		return "AnalysisReport"
	case types.ExtractionResult, *types.ExtractionResult:
		return "ExtractionResult"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// reportValue normalizes report inputs to a value type
func reportValue(data any) (types.AnalysisReport, bool) {
	switch v := data.(type) {
	case types.AnalysisReport:
		return v, true
	case *types.AnalysisReport:
		if v != nil {
			return *v, true
		}
	}
	return types.AnalysisReport{}, false
}

// ReportTextFormatter handles text formatting for analysis reports
type ReportTextFormatter struct{}

func (rtf *ReportTextFormatter) Format(data any) (string, error) {
	result, ok := reportValue(data)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== ATS COMPATIBILITY ===\n")
	output.WriteString(fmt.Sprintf("Overall: %d/100\n", result.ATSScore.Overall))
	output.WriteString(fmt.Sprintf("Format Score: %d/100\n\n", result.ATSScore.FormatScore))
	writeList(&output, "Detected Keywords:", result.ATSScore.Keywords)
	writeList(&output, "Missing Keywords:", result.ATSScore.MissingKeywords)

	output.WriteString("=== JOB MATCH ===\n")
	output.WriteString(fmt.Sprintf("Score: %d/100\n", result.JobMatch.Score))
	output.WriteString(fmt.Sprintf("Relevance: %d/100\n\n", result.JobMatch.Relevance))
	writeList(&output, "Matching Skills:", result.JobMatch.MatchingSkills)
	writeList(&output, "Missing Skills:", result.JobMatch.MissingSkills)
	writeList(&output, "Recommendations:", result.JobMatch.Recommendations)

	output.WriteString("=== STRUCTURE ===\n")
	output.WriteString(fmt.Sprintf("Completeness: %d/100\n", result.Structure.Completeness))
	output.WriteString(fmt.Sprintf("Readability: %d/100\n\n", result.Structure.Readability))
	writeList(&output, "Sections Present:", result.Structure.SectionsPresent)
	writeList(&output, "Sections Missing:", result.Structure.SectionsMissing)
	writeList(&output, "Suggestions:", result.Structure.Suggestions)

	writeList(&output, "=== SUGGESTIONS ===", result.Suggestions)

	output.WriteString("=== DETAILED FEEDBACK ===\n")
	output.WriteString(fmt.Sprintf("Overall Score: %d/100\n\n", result.DetailedFeedback.OverallScore))
	output.WriteString("Summary:\n")
	output.WriteString(result.DetailedFeedback.Summary)
	output.WriteString("\n\n")
	writeList(&output, "Strengths:", result.DetailedFeedback.Strengths)
	writeList(&output, "Weaknesses:", result.DetailedFeedback.Weaknesses)
	writeList(&output, "Action Items:", result.DetailedFeedback.ActionItems)
	if result.DetailedFeedback.ImprovementPlan != "" {
		output.WriteString("Improvement Plan:\n")
		output.WriteString(result.DetailedFeedback.ImprovementPlan)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rtf *ReportTextFormatter) SupportedType() string {
	return "AnalysisReport"
}

func writeList(output *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(header)
	output.WriteString("\n")
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

// ReportMarkdownFormatter handles markdown formatting for analysis reports
type ReportMarkdownFormatter struct{}

func (rmf *ReportMarkdownFormatter) Format(data any) (string, error) {
	result, ok := reportValue(data)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis Report\n\n")

	output.WriteString("## ATS Compatibility\n\n")
	output.WriteString(fmt.Sprintf("**Overall:** %d/100\n\n", result.ATSScore.Overall))
	output.WriteString(fmt.Sprintf("**Format Score:** %d/100\n\n", result.ATSScore.FormatScore))
	writeMarkdownList(&output, "### Detected Keywords", result.ATSScore.Keywords)
	writeMarkdownList(&output, "### Missing Keywords", result.ATSScore.MissingKeywords)

	output.WriteString("## Job Match\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %d/100\n\n", result.JobMatch.Score))
	output.WriteString(fmt.Sprintf("**Relevance:** %d/100\n\n", result.JobMatch.Relevance))
	writeMarkdownList(&output, "### Matching Skills", result.JobMatch.MatchingSkills)
	writeMarkdownList(&output, "### Missing Skills", result.JobMatch.MissingSkills)
	writeMarkdownList(&output, "### Recommendations", result.JobMatch.Recommendations)

	output.WriteString("## Structure\n\n")
	output.WriteString(fmt.Sprintf("**Completeness:** %d/100\n\n", result.Structure.Completeness))
	output.WriteString(fmt.Sprintf("**Readability:** %d/100\n\n", result.Structure.Readability))
	writeMarkdownList(&output, "### Sections Present", result.Structure.SectionsPresent)
	writeMarkdownList(&output, "### Sections Missing", result.Structure.SectionsMissing)
	writeMarkdownList(&output, "### Suggestions", result.Structure.Suggestions)

	writeMarkdownList(&output, "## Suggestions", result.Suggestions)

	output.WriteString("## Detailed Feedback\n\n")
	output.WriteString(fmt.Sprintf("**Overall Score:** %d/100\n\n", result.DetailedFeedback.OverallScore))
	output.WriteString(result.DetailedFeedback.Summary)
	output.WriteString("\n\n")
	writeMarkdownList(&output, "### Strengths", result.DetailedFeedback.Strengths)
	writeMarkdownList(&output, "### Weaknesses", result.DetailedFeedback.Weaknesses)
	writeMarkdownList(&output, "### Action Items", result.DetailedFeedback.ActionItems)
	if result.DetailedFeedback.ImprovementPlan != "" {
		output.WriteString("### Improvement Plan\n\n")
		output.WriteString(result.DetailedFeedback.ImprovementPlan)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rmf *ReportMarkdownFormatter) SupportedType() string {
	return "AnalysisReport"
}

func writeMarkdownList(output *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(header)
	output.WriteString("\n\n")
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

// ExtractionTextFormatter prints extracted text with its extraction ID
type ExtractionTextFormatter struct{}

func (etf *ExtractionTextFormatter) Format(data any) (string, error) {
	var result types.ExtractionResult
	switch v := data.(type) {
	case types.ExtractionResult:
		result = v
	case *types.ExtractionResult:
		if v == nil {
			return "", fmt.Errorf("expected ExtractionResult, got nil")
		}
		result = *v
	default:
		return "", fmt.Errorf("expected ExtractionResult, got %T", data)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Extraction ID: %s\n\n", result.ID))
	output.WriteString(result.Text)
	output.WriteString("\n")

	return output.String(), nil
}

func (etf *ExtractionTextFormatter) SupportedType() string {
	return "ExtractionResult"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
