package types

// ConversationMeta carries lightweight signals about the current exchange.
type ConversationMeta struct {
	TurnDepth   int    `json:"turn_depth"`
	Topic       string `json:"topic,omitempty"`
	Intention   string `json:"intention,omitempty"`
	EnergyLevel string `json:"energy_level,omitempty"`
}

// PreferenceHints are learned signals fed back from the preference-learning
// collaborator. Effectiveness is keyed by PairKey(expert, style); values are
// rolling 0-1 means.
type PreferenceHints struct {
	PreferredExperts   []ExpertID         `json:"preferred_experts,omitempty"`
	EffectiveStyles    []ResponseStyle    `json:"effective_styles,omitempty"`
	ResistancePatterns []string           `json:"resistance_patterns,omitempty"`
	Effectiveness      map[string]float64 `json:"effectiveness,omitempty"`
}

// PairKey builds the effectiveness map key for an expert/style combination.
func PairKey(expert ExpertID, style ResponseStyle) string {
	return string(expert) + "|" + string(style)
}

// NeedsClassification scores what the utterance is asking for, each dimension
// on a 0-10 scale.
type NeedsClassification struct {
	Urgency         int `json:"urgency"`
	Complexity      int `json:"complexity"`
	SupportRequired int `json:"support_required"`
}

// RouterContext is the ephemeral per-request value object consumed by the
// routing decision engine. It is assembled fresh on every call and never
// persisted by the engine; learning from outcomes flows back through the
// preference-learning collaborator instead.
type RouterContext struct {
	UserID string `json:"user_id"`

	// Stage is the ordinal progression stage (clamped into the stage table's
	// range by the router). StageProgress is normalized 0-1 within the stage.
	Stage         int     `json:"stage"`
	StageProgress float64 `json:"stage_progress"`
	DaysInProgram int     `json:"days_in_program"`

	// EngagementDepth is the rolling mean depth score (0-10) of the user's
	// recent memories.
	EngagementDepth float64 `json:"engagement_depth"`

	// RecentBreakthrough is set when any retrieved memory carries
	// breakthrough indicators within the recency window.
	RecentBreakthrough bool `json:"recent_breakthrough"`

	Readiness    ReadinessState   `json:"readiness"`
	Conversation ConversationMeta `json:"conversation"`
	Hints        PreferenceHints  `json:"hints"`
}
