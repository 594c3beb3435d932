package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversation_RecentMessages(t *testing.T) {
	c := &Conversation{}
	assert.Nil(t, c.RecentMessages(3))

	for _, content := range []string{"q1", "a1", "q2", "a2"} {
		role := RoleUser
		if content[0] == 'a' {
			role = RoleAssistant
		}
		c.Messages = append(c.Messages, &Message{Role: role, Content: content})
	}
	recent := c.RecentMessages(3)
	if assert.Len(t, recent, 3) {
		assert.Equal(t, "a1", recent[0].Content)
		assert.Equal(t, "a2", recent[2].Content)
	}
	assert.Len(t, c.RecentMessages(10), 4)
	assert.Nil(t, c.RecentMessages(0))
}

func TestConversation_LastAnswer(t *testing.T) {
	c := &Conversation{Messages: []*Message{
		{Role: RoleUser, Content: "q1"},
		{Role: RoleAssistant, Content: "a1"},
		{Role: RoleUser, Content: "q2"},
	}}
	answer, ok := c.LastAnswer()
	assert.True(t, ok)
	assert.Equal(t, "a1", answer)

	_, ok = (&Conversation{}).LastAnswer()
	assert.False(t, ok)
}

func TestDocument_Metadata(t *testing.T) {
	doc := &Document{Filename: "a.pdf", FileType: "pdf", Pages: 2, WordCount: 10, Chunks: []*Chunk{{}, {}}}
	md := doc.Metadata()
	assert.Equal(t, DocumentMetadata{Filename: "a.pdf", FileType: "pdf", Pages: 2, WordCount: 10, Chunks: 2}, md)
}
