package prompt

import (
	"strings"

	"github.com/hyperjump/docchat/internal/models"
)

// SystemInstruction steers the generator to answer from the excerpts only.
const SystemInstruction = `You are a helpful AI assistant that answers questions based on the provided document context.
Use the document excerpts to provide accurate, relevant answers. If the context doesn't contain enough information, say so.
Be concise and cite relevant parts of the document when possible. When referencing information, mention which excerpt it came from.`

// Message is one chat-completion message.
type Message struct {
	Role    string
	Content string
}

// Prompt is the complete generator input.
type Prompt struct {
	Messages []Message
}

// System returns the content of the system message.
func (p *Prompt) System() string {
	for _, m := range p.Messages {
		if m.Role == "system" {
			return m.Content
		}
	}
	return ""
}

// BuildPrompt wraps the assembled context and question in a system + user message pair.
// previousAnswer, when set, is offered as reference so follow-ups do not repeat it verbatim.
func BuildPrompt(c *Context, question, previousAnswer string) *Prompt {
	var b strings.Builder
	b.WriteString("Based on the following document excerpts, please answer the question.\n\n")
	b.WriteString(c.Text)
	if previousAnswer != "" {
		b.WriteString("\n\nPrevious answer shared with the user (for reference, do not repeat verbatim unless needed):\n")
		b.WriteString(previousAnswer)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nPlease provide a clear, accurate answer based on the excerpts. If the excerpts don't contain enough " +
		"information, say so explicitly and suggest where the user might look in the document.")

	return &Prompt{Messages: []Message{
		{Role: "system", Content: SystemInstruction},
		{Role: string(models.RoleUser), Content: b.String()},
	}}
}
