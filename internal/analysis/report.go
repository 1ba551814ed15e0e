package analysis

import (
	"context"
	"time"

	"resumelens/internal/ai"
	"resumelens/internal/errors"
	"resumelens/internal/types"

	"golang.org/x/sync/errgroup"
)

// MetricsRecorder receives timing and token accounting for analysis calls.
// Implemented by the observability package; a nil recorder disables recording.
type MetricsRecorder interface {
	RecordProbe(ctx context.Context, operation string, duration time.Duration, success bool)
	RecordTokenUsage(ctx context.Context, operation string, usage *ai.TokenUsage)
}

// Synthesizer fans a resume out to the three analysis probes, derives
// suggestions, and makes a final synthesis call for detailed feedback.
type Synthesizer struct {
	ats       *ATSProbe
	match     *JobMatchProbe
	structure *StructureProbe
	feedback  Gateway
	metrics   MetricsRecorder
	logger    *errors.Logger
}

// feedbackResult is the model's wire format for synthesized feedback
type feedbackResult struct {
	OverallScore    int      `json:"overall_score"`
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	ActionItems     []string `json:"action_items"`
	ImprovementPlan string   `json:"improvement_plan"`
}

// NewSynthesizer creates a report synthesizer from the three probes and the
// feedback gateway. metrics may be nil.
func NewSynthesizer(ats *ATSProbe, match *JobMatchProbe, structure *StructureProbe, feedback Gateway, metrics MetricsRecorder, logger *errors.Logger) *Synthesizer {
	return &Synthesizer{
		ats:       ats,
		match:     match,
		structure: structure,
		feedback:  feedback,
		metrics:   metrics,
		logger:    logger,
	}
}

// Generate runs the full analysis pipeline and assembles the report.
// The three probes run concurrently; the first failure cancels the others
// and fails the whole report. The synthesis call runs only after all three
// probes succeed.
func (s *Synthesizer) Generate(ctx context.Context, resumeText, jobDescription string) (*types.AnalysisReport, error) {
	started := time.Now()

	var (
		atsScore  types.ATSScore
		jobMatch  types.JobMatch
		structure types.ResumeStructure
	)

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := runProbe(s, groupCtx, "ats", func(c context.Context) (types.ATSScore, *ai.TokenUsage, error) {
			return s.ats.Analyze(c, resumeText)
		})
		if err != nil {
			return err
		}
		atsScore = out
		return nil
	})

	g.Go(func() error {
		out, err := runProbe(s, groupCtx, "match", func(c context.Context) (types.JobMatch, *ai.TokenUsage, error) {
			return s.match.Analyze(c, resumeText, jobDescription)
		})
		if err != nil {
			return err
		}
		jobMatch = out
		return nil
	})

	g.Go(func() error {
		out, err := runProbe(s, groupCtx, "structure", func(c context.Context) (types.ResumeStructure, *ai.TokenUsage, error) {
			return s.structure.Analyze(c, resumeText)
		})
		if err != nil {
			return err
		}
		structure = out
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.LogError(err, "Analysis fan-out failed",
			"elapsed", time.Since(started).String())
		return nil, err
	}

	suggestions := deriveSuggestions(atsScore, jobMatch, structure)

	feedback, err := s.generateFeedback(ctx, resumeText, jobDescription, atsScore, jobMatch, structure)
	if err != nil {
		s.logger.LogError(err, "Feedback synthesis failed",
			"elapsed", time.Since(started).String())
		return nil, err
	}

	s.logger.Info("Analysis report generated",
		"ats_score", atsScore.Overall,
		"match_score", jobMatch.Score,
		"structure_completeness", structure.Completeness,
		"suggestion_count", len(suggestions),
		"elapsed", time.Since(started).String())

	return &types.AnalysisReport{
		ATSScore:         atsScore,
		JobMatch:         jobMatch,
		Structure:        structure,
		Suggestions:      suggestions,
		DetailedFeedback: feedback,
	}, nil
}

// runProbe wraps a probe call with duration and token metrics
func runProbe[T any](s *Synthesizer, ctx context.Context, operation string, fn func(ctx context.Context) (T, *ai.TokenUsage, error)) (T, error) {
	started := time.Now()
	out, usage, err := fn(ctx)
	if s.metrics != nil {
		s.metrics.RecordProbe(ctx, operation, time.Since(started), err == nil)
		if usage != nil {
			s.metrics.RecordTokenUsage(ctx, operation, usage)
		}
	}
	return out, err
}

// generateFeedback builds the synthesis prompt from probe results and runs
// the fourth completion call
func (s *Synthesizer) generateFeedback(ctx context.Context, resumeText, jobDescription string, atsScore types.ATSScore, jobMatch types.JobMatch, structure types.ResumeStructure) (types.DetailedFeedback, error) {
	prompt := buildFeedbackPrompt(resumeText, jobDescription, feedbackInputs{
		ATSOverall:      atsScore.Overall,
		MatchScore:      jobMatch.Score,
		Completeness:    structure.Completeness,
		Keywords:        atsScore.Keywords,
		MissingKeywords: atsScore.MissingKeywords,
		MatchingSkills:  jobMatch.MatchingSkills,
		MissingSkills:   jobMatch.MissingSkills,
		SectionsPresent: structure.SectionsPresent,
		SectionsMissing: structure.SectionsMissing,
	})

	started := time.Now()
	raw, usage, err := s.feedback.Complete(ctx, prompt)
	if s.metrics != nil {
		s.metrics.RecordProbe(ctx, "feedback", time.Since(started), err == nil)
		if usage != nil {
			s.metrics.RecordTokenUsage(ctx, "feedback", usage)
		}
	}
	if err != nil {
		return types.DetailedFeedback{}, err
	}

	result := parseOrDefault[feedbackResult](raw)

	summary := result.Summary
	if summary == "" {
		summary = "Analysis not available"
	}

	return types.DetailedFeedback{
		OverallScore:    result.OverallScore,
		Summary:         summary,
		Strengths:       orEmpty(result.Strengths),
		Weaknesses:      orEmpty(result.Weaknesses),
		ActionItems:     orEmpty(result.ActionItems),
		ImprovementPlan: result.ImprovementPlan,
	}, nil
}

// deriveSuggestions flattens probe output into a single recommendation list.
// Order matters: missing keywords first, then match recommendations, then
// structural suggestions.
func deriveSuggestions(atsScore types.ATSScore, jobMatch types.JobMatch, structure types.ResumeStructure) []string {
	suggestions := make([]string, 0, len(atsScore.MissingKeywords)+len(jobMatch.Recommendations)+len(structure.Suggestions))

	for _, keyword := range atsScore.MissingKeywords {
		suggestions = append(suggestions, "Add keyword: "+keyword)
	}
	suggestions = append(suggestions, jobMatch.Recommendations...)
	suggestions = append(suggestions, structure.Suggestions...)

	return suggestions
}
