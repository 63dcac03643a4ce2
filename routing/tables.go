package routing

import "github.com/BaSui01/coachflow/types"

// MinStage and MaxStage bound the progression-stage table. Out-of-range stage
// inputs clamp into this range rather than failing.
const (
	MinStage = 1
	MaxStage = 5
)

// stageProfile is the static per-stage default: who leads, who assists, and
// how deep the response is allowed to go before state adjustments.
type stageProfile struct {
	primary    types.ExpertID
	supporting []types.ExpertID
	depth      int
}

// stageTable maps each progression stage to its profile. Depth ceilings are
// monotonically non-decreasing across stages.
var stageTable = map[int]stageProfile{
	1: {primary: types.ExpertCompassion, supporting: []types.ExpertID{types.ExpertGrounding}, depth: 3},
	2: {primary: types.ExpertPattern, supporting: []types.ExpertID{types.ExpertCompassion}, depth: 4},
	3: {primary: types.ExpertAccountability, supporting: []types.ExpertID{types.ExpertPattern}, depth: 6},
	4: {primary: types.ExpertSystems, supporting: []types.ExpertID{types.ExpertPattern, types.ExpertAccountability}, depth: 8},
	5: {primary: types.ExpertBreakthrough, supporting: []types.ExpertID{types.ExpertSystems}, depth: 10},
}

// stateAdjustment is the per-readiness-state delta applied on top of the
// stage profile.
type stateAdjustment struct {
	depthDelta int
	style      types.ResponseStyle
	timing     types.Timing

	// extra, when set, is appended to the supporting list.
	extra types.ExpertID
}

var stateTable = map[types.ReadinessState]stateAdjustment{
	types.StateResistant:    {depthDelta: -2, style: types.StyleGentle, timing: types.TimingProgressive, extra: types.ExpertCompassion},
	types.StateCurious:      {depthDelta: 0, style: types.StyleExploratory, timing: types.TimingProgressive},
	types.StateReady:        {depthDelta: 2, style: types.StyleDirect, timing: types.TimingProgressive},
	types.StateOverwhelmed:  {depthDelta: -3, style: types.StyleGentle, timing: types.TimingDelayed, extra: types.ExpertGrounding},
	types.StateBreakthrough: {depthDelta: 3, style: types.StyleCelebratory, timing: types.TimingImmediate, extra: types.ExpertBreakthrough},
}

// Needs thresholds from the adjustment step.
const (
	urgencyCritical      = 8
	complexityCritical   = 8
	supportCritical      = 7
	lowEngagement        = 4.0
	minEffectiveness     = 0.6
	maxSupportingExperts = 2
)

// Confidence model for decisions.
const (
	baseConfidence      = 0.75
	validatedPairBonus  = 0.1
	substitutionPenalty = 0.15
)

func clampStage(stage int) int {
	if stage < MinStage {
		return MinStage
	}
	if stage > MaxStage {
		return MaxStage
	}
	return stage
}
