package ensemble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/coachflow/types"
)

// ---------------------------------------------------------------------------
// LexicalAgreement
// ---------------------------------------------------------------------------

func TestLexicalAgreement_IdenticalContent(t *testing.T) {
	t.Parallel()

	a := NewLexicalAgreement()
	got, err := a.Analyze(context.Background(), []types.CandidateResponse{
		{ExpertID: types.ExpertPattern, Content: "you keep avoiding the hard conversation"},
		{ExpertID: types.ExpertCompassion, Content: "You keep avoiding the hard conversation."},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.AgreementLevel, "case and punctuation are normalized away")
}

func TestLexicalAgreement_DisjointContent(t *testing.T) {
	t.Parallel()

	a := NewLexicalAgreement()
	got, err := a.Analyze(context.Background(), []types.CandidateResponse{
		{Content: "alpha beta gamma"},
		{Content: "delta epsilon zeta"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.AgreementLevel)
}

func TestLexicalAgreement_SingleCandidate(t *testing.T) {
	t.Parallel()

	a := NewLexicalAgreement()
	got, err := a.Analyze(context.Background(), []types.CandidateResponse{{Content: "solo"}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.AgreementLevel)
	assert.Empty(t, got.ConflictPoints)
}

func TestLexicalAgreement_PatternClaims(t *testing.T) {
	t.Parallel()

	a := NewLexicalAgreement()
	got, err := a.Analyze(context.Background(), []types.CandidateResponse{
		{
			ExpertID:    types.ExpertPattern,
			Content:     "same words here",
			Annotations: types.Annotations{PatternsIdentified: []string{"avoidance", "perfectionism"}},
		},
		{
			ExpertID:    types.ExpertSystems,
			Content:     "same words here",
			Annotations: types.Annotations{PatternsIdentified: []string{"avoidance"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"avoidance"}, got.ConsensusPoints)
	require.Len(t, got.ConflictPoints, 1)
	assert.Contains(t, got.ConflictPoints[0], "perfectionism")
	assert.Contains(t, got.ConflictPoints[0], "pattern")
}

func TestLexicalAgreement_DominantPerspective(t *testing.T) {
	t.Parallel()

	a := NewLexicalAgreement()

	got, err := a.Analyze(context.Background(), []types.CandidateResponse{
		{ExpertID: types.ExpertPattern, Content: "x", Confidence: 0.9},
		{ExpertID: types.ExpertSystems, Content: "y", Confidence: 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, "pattern", got.DominantPerspective)

	got, err = a.Analyze(context.Background(), []types.CandidateResponse{
		{ExpertID: types.ExpertPattern, Content: "x", Confidence: 0.8},
		{ExpertID: types.ExpertSystems, Content: "y", Confidence: 0.75},
	})
	require.NoError(t, err)
	assert.Empty(t, got.DominantPerspective, "no dominant view inside the margin")
}

// ---------------------------------------------------------------------------
// HeuristicValidator
// ---------------------------------------------------------------------------

func TestHeuristicValidator_ScoresInRange(t *testing.T) {
	t.Parallel()

	v := NewHeuristicValidator()
	rctx := &types.RouterContext{Stage: 3, Readiness: types.StateCurious}
	candidate := &types.CandidateResponse{
		ExpertID:   types.ExpertSystems,
		Content:    "Try one small step this week. I understand how this connects to your sleep.",
		Confidence: 0.8,
		Annotations: types.Annotations{
			PatternsIdentified: []string{"avoidance"},
			LeveragePoints:     []string{"morning routine"},
			SystemConnections:  []string{"sleep-energy loop"},
		},
	}

	got, err := v.Validate(context.Background(), candidate, rctx)
	require.NoError(t, err)

	for name, score := range map[string]float64{
		"stage":        got.StageAppropriateness,
		"emotional":    got.EmotionalSensitivity,
		"systems":      got.SystemsThinking,
		"action":       got.Actionability,
		"breakthrough": got.BreakthroughPotential,
	} {
		assert.GreaterOrEqual(t, score, 0.0, name)
		assert.LessOrEqual(t, score, 10.0, name)
	}

	// Rich annotations must beat an unannotated candidate on the structured
	// criteria.
	bare, err := v.Validate(context.Background(),
		&types.CandidateResponse{Content: candidate.Content, Confidence: 0.8}, rctx)
	require.NoError(t, err)
	assert.Greater(t, got.SystemsThinking, bare.SystemsThinking)
	assert.Greater(t, got.Actionability, bare.Actionability)
	assert.Greater(t, got.BreakthroughPotential, bare.BreakthroughPotential)
}

func TestHeuristicValidator_FragileStatePenalizesWalls(t *testing.T) {
	t.Parallel()

	v := NewHeuristicValidator()
	long := &types.CandidateResponse{Content: wall(200), Confidence: 0.8}

	overwhelmed, err := v.Validate(context.Background(), long,
		&types.RouterContext{Stage: 2, Readiness: types.StateOverwhelmed})
	require.NoError(t, err)
	curious, err := v.Validate(context.Background(), long,
		&types.RouterContext{Stage: 2, Readiness: types.StateCurious})
	require.NoError(t, err)

	assert.Less(t, overwhelmed.EmotionalSensitivity, curious.EmotionalSensitivity)
}

func TestHeuristicValidator_Deterministic(t *testing.T) {
	t.Parallel()

	v := NewHeuristicValidator()
	rctx := &types.RouterContext{Stage: 4, Readiness: types.StateReady}
	candidate := &types.CandidateResponse{Content: "try this next step because it makes sense", Confidence: 0.7}

	first, err := v.Validate(context.Background(), candidate, rctx)
	require.NoError(t, err)
	second, err := v.Validate(context.Background(), candidate, rctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHeuristicValidator_CanceledContext(t *testing.T) {
	t.Parallel()

	v := NewHeuristicValidator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.Validate(ctx, &types.CandidateResponse{Content: "x"}, &types.RouterContext{})
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// MergeSynthesizer
// ---------------------------------------------------------------------------

func TestMergeSynthesizer_UnionAndMax(t *testing.T) {
	t.Parallel()

	s := NewMergeSynthesizer()
	got, err := s.Synthesize(context.Background(), []types.CandidateResponse{
		{
			ExpertID:    types.ExpertPattern,
			Content:     "first view",
			Confidence:  0.6,
			Annotations: types.Annotations{PatternsIdentified: []string{"avoidance", "shared"}},
		},
		{
			ExpertID:   types.ExpertSystems,
			Content:    "second view",
			Confidence: 0.85,
			Annotations: types.Annotations{
				PatternsIdentified: []string{"shared"},
				SystemConnections:  []string{"sleep-energy loop"},
			},
		},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.85, got.Confidence, "max of inputs")
	assert.Equal(t, types.ExpertSystems, got.ExpertID, "attributed to the strongest input")
	assert.Equal(t, []string{"avoidance", "shared"}, got.Annotations.PatternsIdentified, "deduplicated union")
	assert.Equal(t, []string{"sleep-energy loop"}, got.Annotations.SystemConnections)
	assert.Contains(t, got.Content, "first view")
	assert.Contains(t, got.Content, "second view")
	assert.NotEmpty(t, got.ID)
}

func TestMergeSynthesizer_Empty(t *testing.T) {
	t.Parallel()

	s := NewMergeSynthesizer()
	_, err := s.Synthesize(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, types.IsNoCandidates(err))
}

func wall(words int) string {
	out := make([]byte, 0, words*5)
	for i := 0; i < words; i++ {
		out = append(out, "word "...)
	}
	return string(out)
}
