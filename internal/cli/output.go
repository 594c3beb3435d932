package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("%w: output must be text or json, got %q", models.ErrInvalidInput, s)
	}
}

const sourceSnippetLen = 160

// WriteUploadResponse writes an upload acknowledgement in the given format.
func WriteUploadResponse(w io.Writer, resp *models.UploadResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintln(w, resp.Message)
	md := resp.Metadata
	fmt.Fprintf(w, "  type: %s | words: %d | chunks: %d", md.FileType, md.WordCount, md.Chunks)
	if md.Pages > 0 {
		fmt.Fprintf(w, " | pages: %d", md.Pages)
	}
	fmt.Fprintln(w)
	if resp.Notice != "" {
		fmt.Fprintf(w, "Note: %s\n", resp.Notice)
	}
	return nil
}

// WriteChatResponse writes an answer and its sources in the given format.
func WriteChatResponse(w io.Writer, resp *models.ChatResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	if resp.Notice != "" {
		fmt.Fprintf(w, "Note: %s\n\n", resp.Notice)
	}
	fmt.Fprintln(w, resp.Answer)
	if resp.Degraded {
		fmt.Fprintf(w, "\n(degraded: %s)\n", resp.DegradedReason)
	}
	if len(resp.Sources) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\nSources (%s retrieval):\n", resp.Mode)
	for i, src := range resp.Sources {
		flag := ""
		if src.LowConfidence {
			flag = " low confidence"
		}
		fmt.Fprintf(w, "  [%d] chunk %d | score %.2f%s\n", i+1, src.OrderIndex, src.Score, flag)
		fmt.Fprintf(w, "      %s\n", utils.Snippet(src.Snippet, sourceSnippetLen))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
