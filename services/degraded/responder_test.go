package degraded

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/prompt"
)

func TestRespond(t *testing.T) {
	tests := []struct {
		action  prompt.Action
		heading string
	}{
		{prompt.ActionExplain, "## Code Explanation for python"},
		{prompt.ActionOptimize, "## Optimization Suggestions for python"},
		{prompt.ActionComment, "## Commented Code"},
		{prompt.ActionDebug, "## Debug Analysis"},
		{prompt.ActionConvert, "## Code Conversion"},
		{prompt.ActionGenerate, "## Code Generation"},
		{prompt.ActionReview, "## Code Review Summary"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			got := Respond(tt.action, "python")
			assert.NotEmpty(t, got)
			assert.Contains(t, got, tt.heading)
			assert.NotContains(t, got, "{language}")
		})
	}
}

func TestRespond_OptimizeMentionsOptimization(t *testing.T) {
	assert.Contains(t, Respond(prompt.ActionOptimize, "python"), "Optimization")
}

func TestRespond_CommentFencesLanguage(t *testing.T) {
	assert.Contains(t, Respond(prompt.ActionComment, "rust"), "```rust\n")
}

func TestRespond_UnknownActionFallsBackToExplain(t *testing.T) {
	assert.Equal(t, Respond(prompt.ActionExplain, "go"), Respond("refactor", "go"))
}
