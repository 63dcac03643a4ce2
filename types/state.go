package types

// ReadinessState is the inferred short-term posture of the user toward deeper
// engagement. Inference is deterministic and total: callers always receive one
// of these values, never an empty string.
type ReadinessState string

const (
	StateResistant    ReadinessState = "resistant"
	StateCurious      ReadinessState = "curious"
	StateReady        ReadinessState = "ready"
	StateOverwhelmed  ReadinessState = "overwhelmed"
	StateBreakthrough ReadinessState = "breakthrough"
)

// AllReadinessStates lists every state in inference priority order:
// overwhelmed wins over breakthrough, breakthrough over resistant, and so on
// down to curious, which is also the default when nothing matches.
var AllReadinessStates = []ReadinessState{
	StateOverwhelmed,
	StateBreakthrough,
	StateResistant,
	StateReady,
	StateCurious,
}

// ResponseStyle is the stylistic directive attached to a routing decision.
type ResponseStyle string

const (
	StyleGentle      ResponseStyle = "gentle"
	StyleExploratory ResponseStyle = "exploratory"
	StyleDirect      ResponseStyle = "direct"
	StyleChallenging ResponseStyle = "challenging"
	StyleCelebratory ResponseStyle = "celebratory"
)

// Timing directs when the response should be delivered.
type Timing string

const (
	TimingImmediate   Timing = "immediate"
	TimingProgressive Timing = "progressive"
	TimingDelayed     Timing = "delayed"
	TimingConditional Timing = "conditional"
)

// ResolutionMethod records how the arbiter reconciled the candidate set.
type ResolutionMethod string

const (
	// ResolutionConsensus: experts agreed strongly enough that the primary
	// candidate is returned unchanged.
	ResolutionConsensus ResolutionMethod = "consensus"

	// ResolutionWeightedVote: candidates were merged by synthesis, or the
	// sole surviving candidate was returned.
	ResolutionWeightedVote ResolutionMethod = "weighted_vote"

	// ResolutionExpertOverride: conflicts existed and the highest
	// self-confidence candidate won.
	ResolutionExpertOverride ResolutionMethod = "expert_override"

	// ResolutionUserChoice: confidence was too low to pick a winner; all
	// candidates are surfaced to the caller.
	ResolutionUserChoice ResolutionMethod = "user_choice"
)

// RecommendationStrength qualifies how firmly the final response should be
// presented.
type RecommendationStrength string

const (
	StrengthStrong        RecommendationStrength = "strong"
	StrengthModerate      RecommendationStrength = "moderate"
	StrengthWeak          RecommendationStrength = "weak"
	StrengthRequiresInput RecommendationStrength = "requires_user_input"
)
