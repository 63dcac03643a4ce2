package state

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexicalNeedsClassifier_Classify(t *testing.T) {
	t.Parallel()

	c := NewLexicalNeedsClassifier()

	t.Run("empty utterance scores zero", func(t *testing.T) {
		t.Parallel()
		got := c.Classify("")
		assert.Equal(t, 0, got.Urgency)
		assert.Equal(t, 0, got.Complexity)
		assert.Equal(t, 0, got.SupportRequired)
	})

	t.Run("urgency stacks distinct phrases", func(t *testing.T) {
		t.Parallel()
		got := c.Classify("this is urgent, I need an answer right now before the deadline")
		// urgent(4) + right now(4) + deadline(3), clamped to 10.
		assert.Equal(t, 10, got.Urgency)
	})

	t.Run("repeated phrase counts once", func(t *testing.T) {
		t.Parallel()
		got := c.Classify("urgent urgent urgent")
		assert.Equal(t, 4, got.Urgency)
	})

	t.Run("support phrases", func(t *testing.T) {
		t.Parallel()
		got := c.Classify("I feel so alone and I'm scared of what comes next")
		// alone(3) + scared(3).
		assert.Equal(t, 6, got.SupportRequired)
	})

	t.Run("complexity from connectives and sentences", func(t *testing.T) {
		t.Parallel()
		got := c.Classify("I avoid it because I fear failure. However, avoiding leads to more fear. It compounds.")
		// because + however + leads to = 3 connectives (6) + 2 extra sentences.
		assert.Equal(t, 8, got.Complexity)
	})

	t.Run("axes are independent", func(t *testing.T) {
		t.Parallel()
		got := c.Classify("help me, this is an emergency")
		assert.Equal(t, 5, got.Urgency)
		assert.Equal(t, 3, got.SupportRequired)
		assert.Equal(t, 0, got.Complexity)
	})

	t.Run("scores clamp at ten", func(t *testing.T) {
		t.Parallel()
		got := c.Classify(strings.Repeat("because therefore however. ", 10))
		assert.Equal(t, 10, got.Complexity)
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		u := "crisis today because everything is connected to everything else. help me."
		assert.Equal(t, c.Classify(u), c.Classify(u))
	})
}
