package state

import "github.com/BaSui01/coachflow/types"

// readinessRule binds one readiness state to its trigger phrases.
type readinessRule struct {
	state    types.ReadinessState
	triggers []string
}

// defaultReadinessRules is the canonical trigger table, evaluated in order:
// overwhelm signals win over everything (safety), then celebration, then
// friction, then commitment. Matching is case-insensitive substring; phrases
// are stored lowercase.
var defaultReadinessRules = []readinessRule{
	{
		state: types.StateOverwhelmed,
		triggers: []string{
			"overwhelm",
			"too much",
			"can't handle",
			"can't cope",
			"cannot cope",
			"drowning",
			"exhausted",
			"burned out",
			"burnt out",
			"falling apart",
			"shutting down",
			"breaking down",
		},
	},
	{
		state: types.StateBreakthrough,
		triggers: []string{
			"breakthrough",
			"it clicked",
			"it just clicked",
			"i finally see",
			"i finally understand",
			"i realize now",
			"i realized",
			"i get it now",
			"everything makes sense",
			"aha moment",
		},
	},
	{
		state: types.StateResistant,
		triggers: []string{
			"yeah but",
			"yes but",
			"i can't do",
			"won't work",
			"doesn't work",
			"tried that already",
			"already tried",
			"not my problem",
			"pointless",
			"no point",
			"whatever",
			"waste of time",
		},
	},
	{
		state: types.StateReady,
		triggers: []string{
			"i'm ready",
			"im ready",
			"let's do it",
			"lets do it",
			"let's go",
			"what's next",
			"whats next",
			"show me how",
			"i'm committed",
			"i want to start",
			"give me the plan",
		},
	},
	{
		state: types.StateCurious,
		triggers: []string{
			"why",
			"how come",
			"what if",
			"curious",
			"i wonder",
			"wondering",
			"interesting",
			"tell me more",
		},
	},
}

// DefaultReadiness is returned when no trigger matches.
const DefaultReadiness = types.StateCurious
