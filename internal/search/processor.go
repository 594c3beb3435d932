package search

import (
	"fmt"
	"strings"

	"github.com/hyperjump/docchat/internal/models"
)

// ProcessQuestion trims question and validates it together with k.
func ProcessQuestion(question string, k int) (string, error) {
	if k < 1 {
		return "", fmt.Errorf("%w: got %d", models.ErrInvalidTopK, k)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", models.ErrEmptyQuestion
	}
	return question, nil
}
