package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestClampScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, ClampScore(-3))
	assert.Equal(t, 10.0, ClampScore(42))
	assert.Equal(t, 7.5, ClampScore(7.5))
	assert.Equal(t, NeutralScore, ClampScore(math.NaN()))
}

func TestClampUnit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, ClampUnit(-0.1))
	assert.Equal(t, 1.0, ClampUnit(1.2))
	assert.Equal(t, NeutralImportance, ClampUnit(math.NaN()))
}

func TestClampDepth_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		depth := rapid.IntRange(-100, 100).Draw(t, "depth")
		got := ClampDepth(depth)
		if got < 1 || got > 10 {
			t.Fatalf("ClampDepth(%d) = %d, out of [1,10]", depth, got)
		}
		if depth >= 1 && depth <= 10 && got != depth {
			t.Fatalf("ClampDepth(%d) changed an in-range value to %d", depth, got)
		}
	})
}

func TestValidationScores_Normalized(t *testing.T) {
	t.Parallel()

	perfect := ValidationScores{10, 10, 10, 10, 10}
	assert.InDelta(t, 1.0, perfect.Normalized(), 1e-9)

	neutral := NeutralValidationScores()
	assert.InDelta(t, 0.5, neutral.Normalized(), 1e-9)

	// Out-of-range criteria are clamped before averaging.
	dirty := ValidationScores{15, -2, 5, 5, 5}
	assert.InDelta(t, 0.5, dirty.Normalized(), 1e-9)
}

func TestRoutingDecision_ExpertsDedup(t *testing.T) {
	t.Parallel()

	d := &RoutingDecision{
		Primary:    ExpertPattern,
		Supporting: []ExpertID{ExpertCompassion, ExpertPattern, ExpertSystems, ExpertCompassion},
	}
	assert.Equal(t, []ExpertID{ExpertPattern, ExpertCompassion, ExpertSystems}, d.Experts())
}
