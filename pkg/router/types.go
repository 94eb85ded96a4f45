package router

// CandidateScore holds the six component scores and the derived final score
// for one control. Values are computed fresh per routing call against the
// snapshot pinned for that call and are never cached across prompts.
type CandidateScore struct {
	ControlID string `json:"control_id"`
	Title     string `json:"title"`

	KeywordMatch     float64 `json:"keyword_match"`
	IntentMatch      float64 `json:"intent_match"`
	SQLShape         float64 `json:"sql_shape"`
	Recency          float64 `json:"recency"`
	Priority         float64 `json:"priority"`
	AmbiguityPenalty float64 `json:"ambiguity_penalty"`

	FinalScore float64 `json:"final_score"`

	// MatchedKeywords lists the control keywords found in the prompt, for
	// the justification text. Fuzzy hits are suffixed with " (fuzzy)".
	MatchedKeywords []string `json:"matched_keywords,omitempty"`

	queryCount   int
	catalogOrder int
}

// Decision is the sole routing output artifact. It is immutable once
// constructed and carries the full ranked candidate list so the decision can
// be re-derived offline from logged inputs plus the catalog snapshot.
type Decision struct {
	RequestID        string  `json:"request_id"`
	PromptIntent     string  `json:"prompt_intent"`
	IntentConfidence float64 `json:"intent_confidence"`

	RankedCandidates []CandidateScore `json:"ranked_candidates"`

	// SelectedControlID is empty when no control was confidently selected.
	SelectedControlID string `json:"selected_control_id,omitempty"`

	JustificationText     string   `json:"justification_text"`
	AmbiguityFlag         bool     `json:"ambiguity_flag"`
	SuggestedAlternatives []string `json:"suggested_alternatives,omitempty"`

	SnapshotVersion string `json:"snapshot_version"`
}

// Selected reports whether the decision names a control to execute.
func (d *Decision) Selected() bool { return d.SelectedControlID != "" }
