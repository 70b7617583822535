package model

import (
	"time"
)

// DefaultHistoryLimit is the number of most recent messages kept per user.
const DefaultHistoryLimit = 10

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage represents one message within a chat session.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// ChatSession is the rolling prompt history of one Telegram user, oldest first.
type ChatSession struct {
	UserID    int64
	Messages  []ChatMessage
	UpdatedAt time.Time
}

func NewChatSession(userID int64) *ChatSession {
	return &ChatSession{
		UserID:    userID,
		Messages:  make([]ChatMessage, 0, DefaultHistoryLimit),
		UpdatedAt: time.Now(),
	}
}

// AddMessage appends msg and drops the oldest messages beyond limit.
func (s *ChatSession) AddMessage(msg ChatMessage, limit int) {
	s.Messages = TrimHistory(append(s.Messages, msg), limit)
	s.UpdatedAt = time.Now()
}

// Reset empties the history but keeps the session.
func (s *ChatSession) Reset() {
	s.Messages = s.Messages[:0]
	s.UpdatedAt = time.Now()
}

// Snapshot returns a copy that callers may keep after the session changes.
func (s *ChatSession) Snapshot() []ChatMessage {
	out := make([]ChatMessage, len(s.Messages))
	copy(out, s.Messages)
	return out
}

// TrimHistory keeps the last limit messages in their original order.
// A non-positive limit disables trimming.
func TrimHistory(msgs []ChatMessage, limit int) []ChatMessage {
	if limit <= 0 || len(msgs) <= limit {
		return msgs
	}
	// copy so the backing array does not keep growing behind the window
	out := make([]ChatMessage, limit, limit+1)
	copy(out, msgs[len(msgs)-limit:])
	return out
}
