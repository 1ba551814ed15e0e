package types

// AnalyzeResumeInput represents the input for a full resume analysis
type AnalyzeResumeInput struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// ATSScore represents the applicant-tracking-system compatibility assessment
type ATSScore struct {
	Overall         int      `json:"overall"`         // 0-100 score
	Keywords        []string `json:"keywords"`        // Keywords found in the resume
	MissingKeywords []string `json:"missingKeywords"` // Keywords expected but absent
	FormatScore     int      `json:"formatScore"`     // 0-100 format friendliness
}

// JobMatch represents how well the resume matches the job description
type JobMatch struct {
	Score           int      `json:"score"`           // 0-100 match score
	MatchingSkills  []string `json:"matchingSkills"`  // Skills present in both
	MissingSkills   []string `json:"missingSkills"`   // Skills the job wants but the resume lacks
	Recommendations []string `json:"recommendations"` // Actionable improvement items
	Relevance       int      `json:"relevance"`       // 0-100 overall relevance
}

// ResumeStructure represents the format and organization assessment
type ResumeStructure struct {
	Completeness    int      `json:"completeness"`    // 0-100 completeness score
	SectionsPresent []string `json:"sectionsPresent"` // Detected sections
	SectionsMissing []string `json:"sectionsMissing"` // Expected but absent sections
	Suggestions     []string `json:"suggestions"`     // Structural improvement items
	Readability     int      `json:"readability"`     // 0-100 readability score
}

// DetailedFeedback represents the synthesized coaching feedback
type DetailedFeedback struct {
	OverallScore    int      `json:"overallScore"`
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	ActionItems     []string `json:"actionItems"`
	ImprovementPlan string   `json:"improvementPlan"`
}

// AnalysisReport is the complete output of an analysis run
type AnalysisReport struct {
	ATSScore         ATSScore         `json:"atsScore"`
	JobMatch         JobMatch         `json:"jobMatch"`
	Structure        ResumeStructure  `json:"structure"`
	Suggestions      []string         `json:"suggestions"`
	DetailedFeedback DetailedFeedback `json:"detailedFeedback"`
}

// ExtractionResult represents the outcome of a document text extraction
type ExtractionResult struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
