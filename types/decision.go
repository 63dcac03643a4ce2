package types

// RoutingDecision is the structured output of the routing decision engine.
// Given identical context and needs the engine emits identical decisions;
// there is no randomness anywhere in routing.
type RoutingDecision struct {
	Primary    ExpertID   `json:"primary"`
	Supporting []ExpertID `json:"supporting,omitempty"`

	Style ResponseStyle `json:"style"`

	// DepthLevel is 1-10, clamped after every adjustment step.
	DepthLevel int `json:"depth_level"`

	Timing     Timing  `json:"timing"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// Experts returns the primary followed by the supporting experts, deduplicated.
func (d *RoutingDecision) Experts() []ExpertID {
	out := make([]ExpertID, 0, 1+len(d.Supporting))
	seen := map[ExpertID]bool{d.Primary: true}
	out = append(out, d.Primary)
	for _, e := range d.Supporting {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// Annotations are optional structured observations attached to a candidate.
type Annotations struct {
	PatternsIdentified []string `json:"patterns_identified,omitempty"`
	LeveragePoints     []string `json:"leverage_points,omitempty"`
	SystemConnections  []string `json:"system_connections,omitempty"`
}

// CandidateResponse is the typed result of one expert invocation. It is
// immutable once returned; synthesis builds a new candidate rather than
// mutating inputs.
type CandidateResponse struct {
	ID       string   `json:"id"`
	ExpertID ExpertID `json:"expert_id"`
	Content  string   `json:"content"`

	// Confidence is the expert's self-reported confidence, 0-1.
	Confidence float64 `json:"confidence"`

	Annotations Annotations `json:"annotations"`
}

// ValidationScores are the five validation criteria, each 0-10.
type ValidationScores struct {
	StageAppropriateness  float64 `json:"stage_appropriateness"`
	EmotionalSensitivity  float64 `json:"emotional_sensitivity"`
	SystemsThinking       float64 `json:"systems_thinking"`
	Actionability         float64 `json:"actionability"`
	BreakthroughPotential float64 `json:"breakthrough_potential"`
}

// Normalized returns the mean of the five criteria scaled to 0-1.
func (v ValidationScores) Normalized() float64 {
	sum := ClampScore(v.StageAppropriateness) +
		ClampScore(v.EmotionalSensitivity) +
		ClampScore(v.SystemsThinking) +
		ClampScore(v.Actionability) +
		ClampScore(v.BreakthroughPotential)
	return sum / 5 / 10
}

// Neutral returns mid-scale scores, used when a validator cannot score a
// candidate.
func NeutralValidationScores() ValidationScores {
	return ValidationScores{
		StageAppropriateness:  NeutralScore,
		EmotionalSensitivity:  NeutralScore,
		SystemsThinking:       NeutralScore,
		Actionability:         NeutralScore,
		BreakthroughPotential: NeutralScore,
	}
}

// AgreementReport is the agreement collaborator's pairwise analysis of the
// candidate set.
type AgreementReport struct {
	AgreementLevel      float64  `json:"agreement_level"`
	ConsensusPoints     []string `json:"consensus_points,omitempty"`
	ConflictPoints      []string `json:"conflict_points,omitempty"`
	DominantPerspective string   `json:"dominant_perspective,omitempty"`
}

// ConfidenceMetrics bundles the arbiter's calibrated 0-1 scores.
type ConfidenceMetrics struct {
	OverallConfidence   float64 `json:"overall_confidence"`
	AgreementLevel      float64 `json:"agreement_level"`
	ResponseCoherence   float64 `json:"response_coherence"`
	ContextualRelevance float64 `json:"contextual_relevance"`
	StageAlignment      float64 `json:"stage_alignment"`
}

// DecisionProcess records how the final response was arrived at.
type DecisionProcess struct {
	ExpertsConsulted []ExpertID       `json:"experts_consulted"`
	ConsensusReached bool             `json:"consensus_reached"`
	Resolution       ResolutionMethod `json:"resolution"`

	// ConflictingViewpoints holds both substantive conflicts between experts
	// and unavailability records for experts that errored or timed out.
	ConflictingViewpoints []string `json:"conflicting_viewpoints,omitempty"`

	// Synthesized marks weighted_vote outcomes that merged several
	// candidates into a new one.
	Synthesized bool `json:"synthesized,omitempty"`
}

// EnsembleDecision is the engine's final output for one turn.
type EnsembleDecision struct {
	Response *CandidateResponse `json:"response"`

	Metrics ConfidenceMetrics `json:"metrics"`
	Process DecisionProcess   `json:"process"`

	// Alternatives are the surviving candidates that were not selected, in
	// completion order. Under user_choice the selected response is the
	// highest self-confidence candidate but every alternative remains viable.
	Alternatives []CandidateResponse `json:"alternatives,omitempty"`

	Strength RecommendationStrength `json:"strength"`
}
