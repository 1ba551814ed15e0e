package analysis

import (
	"context"

	"resumelens/internal/ai"
	"resumelens/internal/errors"
	"resumelens/internal/types"
)

// Gateway is the completion surface the probes depend on. Satisfied by
// *ai.Service; tests substitute fakes.
type Gateway interface {
	Complete(ctx context.Context, prompt string) (string, *ai.TokenUsage, error)
}

// atsResult is the model's wire format for ATS scoring
type atsResult struct {
	Overall         int      `json:"overall"`
	Keywords        []string `json:"keywords"`
	MissingKeywords []string `json:"missing_keywords"`
	FormatScore     int      `json:"format_score"`
}

// matchResult is the model's wire format for job matching
type matchResult struct {
	Score           int      `json:"score"`
	MatchingSkills  []string `json:"matching_skills"`
	MissingSkills   []string `json:"missing_skills"`
	Recommendations []string `json:"recommendations"`
	Relevance       int      `json:"relevance"`
}

// structureResult is the model's wire format for structure analysis
type structureResult struct {
	Completeness    int      `json:"completeness"`
	SectionsPresent []string `json:"sections_present"`
	SectionsMissing []string `json:"sections_missing"`
	Suggestions     []string `json:"suggestions"`
	Readability     int      `json:"readability"`
}

// ATSProbe scores a resume for applicant-tracking-system compatibility
type ATSProbe struct {
	gateway Gateway
	logger  *errors.Logger
}

// NewATSProbe creates an ATS scoring probe
func NewATSProbe(gateway Gateway, logger *errors.Logger) *ATSProbe {
	return &ATSProbe{gateway: gateway, logger: logger}
}

// Analyze runs the ATS compatibility check against the resume text
func (p *ATSProbe) Analyze(ctx context.Context, resumeText string) (types.ATSScore, *ai.TokenUsage, error) {
	raw, usage, err := p.gateway.Complete(ctx, buildATSPrompt(resumeText))
	if err != nil {
		p.logger.LogError(err, "ATS analysis failed")
		return types.ATSScore{}, nil, err
	}

	result := parseOrDefault[atsResult](raw)
	return types.ATSScore{
		Overall:         result.Overall,
		Keywords:        orEmpty(result.Keywords),
		MissingKeywords: orEmpty(result.MissingKeywords),
		FormatScore:     result.FormatScore,
	}, usage, nil
}

// JobMatchProbe compares a resume against a job description
type JobMatchProbe struct {
	gateway Gateway
	logger  *errors.Logger
}

// NewJobMatchProbe creates a job matching probe
func NewJobMatchProbe(gateway Gateway, logger *errors.Logger) *JobMatchProbe {
	return &JobMatchProbe{gateway: gateway, logger: logger}
}

// Analyze scores how well the resume matches the job description
func (p *JobMatchProbe) Analyze(ctx context.Context, resumeText, jobDescription string) (types.JobMatch, *ai.TokenUsage, error) {
	raw, usage, err := p.gateway.Complete(ctx, buildMatchPrompt(resumeText, jobDescription))
	if err != nil {
		p.logger.LogError(err, "Job match analysis failed")
		return types.JobMatch{}, nil, err
	}

	result := parseOrDefault[matchResult](raw)
	return types.JobMatch{
		Score:           result.Score,
		MatchingSkills:  orEmpty(result.MatchingSkills),
		MissingSkills:   orEmpty(result.MissingSkills),
		Recommendations: orEmpty(result.Recommendations),
		Relevance:       result.Relevance,
	}, usage, nil
}

// StructureProbe assesses resume format and organization
type StructureProbe struct {
	gateway Gateway
	logger  *errors.Logger
}

// NewStructureProbe creates a structure analysis probe
func NewStructureProbe(gateway Gateway, logger *errors.Logger) *StructureProbe {
	return &StructureProbe{gateway: gateway, logger: logger}
}

// Analyze assesses the structure and formatting of the resume text
func (p *StructureProbe) Analyze(ctx context.Context, resumeText string) (types.ResumeStructure, *ai.TokenUsage, error) {
	raw, usage, err := p.gateway.Complete(ctx, buildStructurePrompt(resumeText))
	if err != nil {
		p.logger.LogError(err, "Structure analysis failed")
		return types.ResumeStructure{}, nil, err
	}

	result := parseOrDefault[structureResult](raw)
	return types.ResumeStructure{
		Completeness:    result.Completeness,
		SectionsPresent: orEmpty(result.SectionsPresent),
		SectionsMissing: orEmpty(result.SectionsMissing),
		Suggestions:     orEmpty(result.Suggestions),
		Readability:     result.Readability,
	}, usage, nil
}
