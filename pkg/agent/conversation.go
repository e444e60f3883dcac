package agent

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in an investigation conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered, append-only message sequence driving one
// investigation. The first message is always the system prompt. A
// conversation is owned by exactly one in-flight controller run; it is
// serialized when the run pauses and restored when it resumes.
type Conversation struct {
	Messages []Message `json:"messages"`
}

// NewConversation creates a conversation seeded with a system message.
func NewConversation(systemPrompt string) *Conversation {
	return &Conversation{
		Messages: []Message{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(role Role, content string) {
	c.Messages = append(c.Messages, Message{Role: role, Content: content})
}

// DropLast removes the most recent message. Used when an assistant
// message turned out to be unprocessable and must not be shown back
// to the model.
func (c *Conversation) DropLast() {
	if len(c.Messages) > 0 {
		c.Messages = c.Messages[:len(c.Messages)-1]
	}
}

// LastAssistant returns the content of the most recent assistant message,
// or "" if there is none.
func (c *Conversation) LastAssistant() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i].Content
		}
	}
	return ""
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// Clone returns a deep copy. Parallel branches must never share a
// conversation, so every branch gets its own copy of any seed messages.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	msgs := make([]Message, len(c.Messages))
	copy(msgs, c.Messages)
	return &Conversation{Messages: msgs}
}

// Serialize encodes the conversation as the durable pause blob.
// The format is a stable JSON object holding the ordered role+text
// sequence — the only structure a caller must persist to resume.
func (c *Conversation) Serialize() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize conversation: %w", err)
	}
	return data, nil
}

// RestoreConversation decodes a pause blob produced by Serialize.
func RestoreConversation(data []byte) (*Conversation, error) {
	var c Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to restore conversation: %w", err)
	}
	if len(c.Messages) == 0 {
		return nil, fmt.Errorf("restored conversation is empty")
	}
	if c.Messages[0].Role != RoleSystem {
		return nil, fmt.Errorf("restored conversation does not start with a system message")
	}
	return &c, nil
}
