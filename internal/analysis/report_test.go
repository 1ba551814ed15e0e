package analysis

import (
	"context"
	"strings"
	"sync"
	"testing"

	"resumelens/internal/ai"
	"resumelens/internal/errors"
	"resumelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routingGateway serves responses keyed by a marker found in the prompt,
// so it can back all four completion calls concurrently.
type routingGateway struct {
	mu        sync.Mutex
	responses map[string]string
	errors    map[string]error
	calls     []string
}

func (g *routingGateway) Complete(ctx context.Context, prompt string) (string, *ai.TokenUsage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for marker, response := range g.responses {
		if strings.Contains(prompt, marker) {
			g.calls = append(g.calls, marker)
			if err, ok := g.errors[marker]; ok {
				return "", nil, err
			}
			return response, &ai.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, nil
		}
	}
	g.calls = append(g.calls, "unmatched")
	return "{}", nil, nil
}

func (g *routingGateway) callCount(marker string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	count := 0
	for _, c := range g.calls {
		if c == marker {
			count++
		}
	}
	return count
}

const (
	atsMarker       = "ATS (Applicant Tracking System) expert"
	matchMarker     = "technical recruiter and job matching specialist"
	structureMarker = "resume structure analyzer"
	feedbackMarker  = "senior career coach"
)

func newTestSynthesizer(gw Gateway) *Synthesizer {
	logger := testProbeLogger()
	return NewSynthesizer(
		NewATSProbe(gw, logger),
		NewJobMatchProbe(gw, logger),
		NewStructureProbe(gw, logger),
		gw,
		nil,
		logger,
	)
}

func TestSynthesizerGenerate(t *testing.T) {
	gw := &routingGateway{
		responses: map[string]string{
			atsMarker:       `{"overall": 85, "keywords": ["react"], "missing_keywords": ["docker"], "format_score": 90}`,
			matchMarker:     `{"score": 75, "matching_skills": ["react"], "missing_skills": ["python"], "recommendations": ["Add Python"], "relevance": 80}`,
			structureMarker: `{"completeness": 85, "sections_present": ["experience"], "sections_missing": ["projects"], "suggestions": ["Add projects section"], "readability": 90}`,
			feedbackMarker:  `{"overall_score": 82, "summary": "Solid resume.", "strengths": ["Clear experience"], "weaknesses": ["No projects"], "action_items": ["Add a projects section"], "improvement_plan": "Focus on projects and missing skills."}`,
		},
	}

	report, err := newTestSynthesizer(gw).Generate(context.Background(), "resume text", "job description")
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 85, report.ATSScore.Overall)
	assert.Equal(t, 75, report.JobMatch.Score)
	assert.Equal(t, 85, report.Structure.Completeness)

	assert.Equal(t, []string{
		"Add keyword: docker",
		"Add Python",
		"Add projects section",
	}, report.Suggestions)

	assert.Equal(t, 82, report.DetailedFeedback.OverallScore)
	assert.Equal(t, "Solid resume.", report.DetailedFeedback.Summary)
	assert.Equal(t, "Focus on projects and missing skills.", report.DetailedFeedback.ImprovementPlan)

	assert.Equal(t, 1, gw.callCount(atsMarker))
	assert.Equal(t, 1, gw.callCount(matchMarker))
	assert.Equal(t, 1, gw.callCount(structureMarker))
	assert.Equal(t, 1, gw.callCount(feedbackMarker))
}

func TestSynthesizerFeedbackDefaults(t *testing.T) {
	gw := &routingGateway{
		responses: map[string]string{
			atsMarker:       `{}`,
			matchMarker:     `{}`,
			structureMarker: `{}`,
			feedbackMarker:  `this is not json`,
		},
	}

	report, err := newTestSynthesizer(gw).Generate(context.Background(), "resume", "job")
	require.NoError(t, err)

	assert.Equal(t, 0, report.DetailedFeedback.OverallScore)
	assert.Equal(t, "Analysis not available", report.DetailedFeedback.Summary)
	assert.Equal(t, []string{}, report.DetailedFeedback.Strengths)
	assert.Equal(t, []string{}, report.DetailedFeedback.Weaknesses)
	assert.Equal(t, []string{}, report.DetailedFeedback.ActionItems)
	assert.Equal(t, "", report.DetailedFeedback.ImprovementPlan)
	assert.Equal(t, []string{}, report.Suggestions)
}

func TestSynthesizerProbeFailureSkipsFeedback(t *testing.T) {
	gw := &routingGateway{
		responses: map[string]string{
			atsMarker:       `{"overall": 85}`,
			matchMarker:     `{"score": 75}`,
			structureMarker: `{}`,
			feedbackMarker:  `{"overall_score": 90}`,
		},
		errors: map[string]error{
			matchMarker: errors.NewProviderError(errors.ErrCodeProviderFailed, "model unavailable", nil),
		},
	}

	report, err := newTestSynthesizer(gw).Generate(context.Background(), "resume", "job")
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, 0, gw.callCount(feedbackMarker), "feedback call should not run after a probe failure")
}

func TestSynthesizerFeedbackPromptCarriesProbeResults(t *testing.T) {
	var feedbackPrompt string
	gw := &capturingGateway{
		routingGateway: routingGateway{
			responses: map[string]string{
				atsMarker:       `{"overall": 85, "keywords": ["react", "go"], "missing_keywords": ["docker"], "format_score": 90}`,
				matchMarker:     `{"score": 75, "matching_skills": ["go"], "missing_skills": ["python"], "recommendations": [], "relevance": 80}`,
				structureMarker: `{"completeness": 70, "sections_present": ["experience", "skills"], "sections_missing": ["projects"], "suggestions": [], "readability": 90}`,
				feedbackMarker:  `{}`,
			},
		},
		onFeedback: func(prompt string) { feedbackPrompt = prompt },
	}

	_, err := newTestSynthesizer(gw).Generate(context.Background(), "resume", "job")
	require.NoError(t, err)

	assert.Contains(t, feedbackPrompt, "ATS Score: 85/100")
	assert.Contains(t, feedbackPrompt, "Job Match Score: 75/100")
	assert.Contains(t, feedbackPrompt, "Structure Score: 70/100")
	assert.Contains(t, feedbackPrompt, "react, go")
	assert.Contains(t, feedbackPrompt, "experience, skills")
}

// capturingGateway is a routingGateway that exposes the synthesis prompt
type capturingGateway struct {
	routingGateway
	onFeedback func(prompt string)
}

func (g *capturingGateway) Complete(ctx context.Context, prompt string) (string, *ai.TokenUsage, error) {
	if strings.Contains(prompt, feedbackMarker) && g.onFeedback != nil {
		g.onFeedback(prompt)
	}
	return g.routingGateway.Complete(ctx, prompt)
}

func TestDeriveSuggestions(t *testing.T) {
	got := deriveSuggestions(
		types.ATSScore{MissingKeywords: []string{"docker", "kubernetes"}},
		types.JobMatch{Recommendations: []string{"Add Python"}},
		types.ResumeStructure{Suggestions: []string{"Add projects section"}},
	)

	want := []string{
		"Add keyword: docker",
		"Add keyword: kubernetes",
		"Add Python",
		"Add projects section",
	}
	assert.Equal(t, want, got)
}

func TestDeriveSuggestionsEmpty(t *testing.T) {
	got := deriveSuggestions(types.ATSScore{}, types.JobMatch{}, types.ResumeStructure{})
	assert.Equal(t, []string{}, got)
	assert.NotNil(t, got)
}
