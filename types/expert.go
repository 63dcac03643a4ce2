package types

// ExpertID identifies a specialized response-generation strategy. The set is
// closed: routing tables and the dispatcher switch exhaustively over it, so a
// new expert requires touching those tables rather than passing a free-form
// string through the system.
type ExpertID string

const (
	// ExpertPattern surfaces recurring behavioral patterns across sessions.
	ExpertPattern ExpertID = "pattern"

	// ExpertAccountability focuses on commitments and follow-through.
	ExpertAccountability ExpertID = "accountability"

	// ExpertCompassion is the support-oriented expert, prepended when the
	// utterance signals a high support need.
	ExpertCompassion ExpertID = "compassion"

	// ExpertGrounding is the urgency-response expert, forced as primary when
	// urgency is critical.
	ExpertGrounding ExpertID = "grounding"

	// ExpertSystems reasons about leverage points and system connections.
	ExpertSystems ExpertID = "systems"

	// ExpertBreakthrough integrates and consolidates breakthrough moments.
	ExpertBreakthrough ExpertID = "breakthrough"
)

// AllExperts lists every known expert in a stable order.
var AllExperts = []ExpertID{
	ExpertPattern,
	ExpertAccountability,
	ExpertCompassion,
	ExpertGrounding,
	ExpertSystems,
	ExpertBreakthrough,
}

// Valid reports whether the identifier names a known expert.
func (e ExpertID) Valid() bool {
	switch e {
	case ExpertPattern, ExpertAccountability, ExpertCompassion,
		ExpertGrounding, ExpertSystems, ExpertBreakthrough:
		return true
	}
	return false
}
