package chat

import (
	"errors"
	"strings"

	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/internal/search"
)

// Fixed answers.
const (
	NoDocumentAnswer = "No document has been uploaded yet. Please upload a document first."
	NoMatchAnswer    = "I couldn't find relevant information in the document related to that question."
	DegradedNotice   = "Semantic search is unavailable for this conversation, so answers are based on keyword matching."

	heuristicPrefix     = "I found relevant information but couldn't process it with AI. Here are the most relevant excerpts:\n\n"
	noPreviousAnswer    = "I have already shared all the details the document contains so far."
	heuristicExcerpts   = 2
	maxKeyPoints        = 5
	keyPointFallbackLen = 120
)

// Degradation reasons reported in ChatResponse.DegradedReason.
const (
	ReasonEmbeddingUnavailable = "embedding_unavailable"
	ReasonGeneratorTimeout     = "generator_timeout"
	ReasonGeneratorFailure     = "generator_failure"
	ReasonGeneratorUnavailable = "generator_unavailable"
)

// HeuristicAnswer quotes the top excerpts when the generator cannot answer.
func HeuristicAnswer(hits []search.Hit) string {
	n := len(hits)
	if n > heuristicExcerpts {
		n = heuristicExcerpts
	}
	texts := make([]string, n)
	for i := 0; i < n; i++ {
		texts[i] = hits[i].Chunk.Text
	}
	return heuristicPrefix + strings.Join(texts, "\n\n")
}

// Restatement answers a follow-up that matched nothing by pointing back to the previous answer.
func Restatement(previous string) string {
	if strings.TrimSpace(previous) == "" {
		previous = noPreviousAnswer
	}
	return "I've already shared the available insights from the document. Previous answer:\n" +
		previous +
		"\n\nIf you need something specific, try asking about a particular section or topic."
}

// KeyPoints returns up to five bullet lines of answer, or its first 120 characters when it has none.
func KeyPoints(answer string) []string {
	var points []string
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "*") {
			continue
		}
		if p := strings.TrimSpace(strings.Trim(line, "-* ")); p != "" {
			points = append(points, p)
		}
		if len(points) == maxKeyPoints {
			break
		}
	}
	if len(points) > 0 {
		return points
	}
	r := []rune(answer)
	if len(r) > keyPointFallbackLen {
		r = r[:keyPointFallbackLen]
	}
	return []string{string(r)}
}

func generatorReason(err error) string {
	switch {
	case errors.Is(err, models.ErrGeneratorTimeout):
		return ReasonGeneratorTimeout
	case errors.Is(err, models.ErrGeneratorUnavailable):
		return ReasonGeneratorUnavailable
	default:
		return ReasonGeneratorFailure
	}
}

func joinReasons(a, b string) string {
	if a == "" {
		return b
	}
	return a + "," + b
}
