// Package prompt assembles retrieved chunks and recent history into generator input.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/internal/search"
)

// Section headers of the rendered context block.
const (
	historyHeader  = "Conversation so far:"
	excerptsHeader = "Document excerpts:"
)

// Budget bounds the rendered context. MaxChars counts runes; 0 means unbounded.
type Budget struct {
	MaxChars     int
	HistoryTurns int
}

// Context is the rendered block plus what made it in.
type Context struct {
	Text    string
	Sources []models.SourceReference
	// Hits are the chunks kept in Text, in the same order as Sources.
	Hits        []search.Hit
	HistoryUsed int
	ChunksUsed  int
	// Truncated is set when anything was dropped or cut to fit the budget.
	Truncated bool
}

// Assemble renders the last budget.HistoryTurns messages and the hits (highest score first)
// into one block. While over budget it drops the oldest history turn, then the lowest-scored
// chunk; a lone top chunk that still does not fit is cut to fit.
func Assemble(hits []search.Hit, history []*models.Message, budget Budget) *Context {
	turns := recent(history, budget.HistoryTurns)
	kept := append([]search.Hit(nil), hits...)
	out := &Context{}

	var override string
	for {
		text := render(turns, kept, override)
		if budget.MaxChars <= 0 || utf8.RuneCountInString(text) <= budget.MaxChars {
			out.Text = text
			break
		}
		out.Truncated = true
		switch {
		case len(turns) > 0:
			turns = turns[1:]
		case len(kept) > 1:
			kept = kept[:len(kept)-1]
		case len(kept) == 1 && override == "":
			override = fitTop(kept[0], budget.MaxChars)
		default:
			out.Text = cutRunes(text, budget.MaxChars)
			return finish(out, turns, kept)
		}
	}
	return finish(out, turns, kept)
}

func finish(out *Context, turns []*models.Message, kept []search.Hit) *Context {
	out.HistoryUsed = len(turns)
	out.ChunksUsed = len(kept)
	out.Hits = kept
	out.Sources = make([]models.SourceReference, len(kept))
	for i, h := range kept {
		out.Sources[i] = h.Reference()
	}
	return out
}

// fitTop returns the top chunk's text cut so that the block with only that chunk fits max.
func fitTop(top search.Hit, max int) string {
	overhead := utf8.RuneCountInString(render(nil, []search.Hit{top}, "\x00")) - 1
	avail := max - overhead
	if avail < 1 {
		avail = 1
	}
	return cutRunes(top.Chunk.Text, avail)
}

func render(turns []*models.Message, hits []search.Hit, topOverride string) string {
	var b strings.Builder
	if len(turns) > 0 {
		b.WriteString(historyHeader)
		b.WriteByte('\n')
		for _, m := range turns {
			fmt.Fprintf(&b, "%s: %s\n", speaker(m.Role), m.Content)
		}
	}
	if len(hits) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(excerptsHeader)
		b.WriteByte('\n')
		for i, h := range hits {
			text := h.Chunk.Text
			if i == 0 && topOverride != "" {
				text = topOverride
			}
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "[Excerpt %d (relevance: %.2f)]\n%s\n", i+1, h.Score, text)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func speaker(r models.Role) string {
	if r == models.RoleAssistant {
		return "Assistant"
	}
	return "User"
}

func recent(history []*models.Message, n int) []*models.Message {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if n > len(history) {
		n = len(history)
	}
	return append([]*models.Message(nil), history[len(history)-n:]...)
}

func cutRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
