package ranking

import (
	"strings"

	"github.com/hyperjump/docchat/pkg/utils"
)

// followUpCues are phrasings that ask for more of the previous answer rather than a new topic.
var followUpCues = []string{
	"other than that",
	"what else",
	"anything else",
	"something more",
	"tell me more",
	"what more",
	"what about the rest",
	"what improvements you can add",
}

// shortQuestionWords is the word count at or below which a question is treated as a follow-up.
const shortQuestionWords = 4

// AnalyzedQuestion holds the parsed form of a chat question.
type AnalyzedQuestion struct {
	Original  string
	Terms     []string
	WordCount int
	// FollowUp is set when the question refers back to the previous answer.
	FollowUp bool
}

// QueryAnalyzer classifies chat questions.
type QueryAnalyzer struct{}

// NewQueryAnalyzer creates a new QueryAnalyzer.
func NewQueryAnalyzer() *QueryAnalyzer {
	return &QueryAnalyzer{}
}

// Analyze tokenizes question and detects follow-up phrasing.
func (qa *QueryAnalyzer) Analyze(question string) *AnalyzedQuestion {
	lower := strings.ToLower(strings.TrimSpace(question))
	result := &AnalyzedQuestion{
		Original:  question,
		Terms:     utils.Tokenize(lower),
		WordCount: len(strings.Fields(lower)),
	}
	result.FollowUp = result.WordCount <= shortQuestionWords || containsCue(lower)
	return result
}

func containsCue(lower string) bool {
	for _, cue := range followUpCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}
