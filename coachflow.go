// Package coachflow is a retrieval-augmented routing and response-arbitration
// engine for staged personal-growth coaching. Each user turn flows through
// four subsystems: the memory retriever ranks the user's history against the
// utterance, the state inferencer reads their readiness posture, the routing
// engine picks a primary expert with style/depth/timing directives, and the
// ensemble arbiter fans the decision out to the experts and reconciles their
// candidates into one final decision with calibrated confidence.
//
// Usage:
//
//	eng, err := coachflow.NewEngine(
//	    coachflow.WithRetriever(retriever),
//	    coachflow.WithExperts(patternExpert, compassionExpert),
//	)
//	decision, err := eng.Process(ctx, &coachflow.Request{
//	    UserID:    "user-1",
//	    Utterance: "yeah but that never works for me",
//	    Stage:     2,
//	})
//
// The engine holds no cross-call state; everything durable lives behind the
// memory store and the preference-learning recorder, so retrying a failed
// turn is always safe.
package coachflow

import "github.com/BaSui01/coachflow/types"

// Request is one user turn.
type Request struct {
	// UserID and Utterance are required.
	UserID    string `json:"user_id"`
	Utterance string `json:"utterance"`

	// Stage is the user's progression stage ordinal; out-of-range values
	// clamp into the stage table. StageProgress is normalized 0-1 within the
	// stage.
	Stage         int     `json:"stage"`
	StageProgress float64 `json:"stage_progress"`
	DaysInProgram int     `json:"days_in_program"`

	Conversation types.ConversationMeta `json:"conversation"`
}

// Validate reports whether the request carries the required fields.
func (r *Request) Validate() error {
	if r == nil {
		return types.NewError(types.ErrInvalidRequest, "request is nil")
	}
	if r.UserID == "" {
		return types.NewError(types.ErrInvalidRequest, "user id is required")
	}
	if r.Utterance == "" {
		return types.NewError(types.ErrInvalidRequest, "utterance is required")
	}
	return nil
}
