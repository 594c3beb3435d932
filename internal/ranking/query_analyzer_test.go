package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryAnalyzer_FollowUp(t *testing.T) {
	qa := NewQueryAnalyzer()
	cases := []struct {
		question string
		want     bool
	}{
		{"What else?", true},
		{"Can you tell me more about the warranty terms in section two?", true},
		{"Other than that, which clauses apply to contractors and vendors?", true},
		{"Why?", true},
		{"What is the refund policy for digital purchases?", false},
	}
	for _, tc := range cases {
		t.Run(tc.question, func(t *testing.T) {
			assert.Equal(t, tc.want, qa.Analyze(tc.question).FollowUp)
		})
	}
}

func TestQueryAnalyzer_Terms(t *testing.T) {
	got := NewQueryAnalyzer().Analyze("Refund policy, please!")
	assert.Equal(t, []string{"refund", "policy", "please"}, got.Terms)
	assert.Equal(t, 3, got.WordCount)
}
