package domain

// SimilarCase is a historical ticket matched against a new issue.
type SimilarCase struct {
	Issue      string    `json:"issue"`
	Solution   string    `json:"solution"`
	Sentiment  Sentiment `json:"sentiment"`
	Priority   Priority  `json:"priority"`
	Similarity float64   `json:"similarity"`
}

// AnalysisResult is the triage outcome for one conversation.
type AnalysisResult struct {
	Summary       string        `json:"summary"`
	Issue         string        `json:"extracted_issue"`
	Solution      string        `json:"suggested_solution"`
	Priority      Priority      `json:"priority_level"`
	Team          Team          `json:"assigned_team"`
	EstimatedTime float64       `json:"estimated_resolution_time"`
	Confidence    float64       `json:"confidence_score"`
	SimilarCases  []SimilarCase `json:"similar_cases"`
	ActionItems   []string      `json:"action_items"`
	Sentiment     string        `json:"sentiment"`
}
