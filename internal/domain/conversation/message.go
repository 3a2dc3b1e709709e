package conversation

import "strings"

// Role tags the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole converts a loosely typed role name into a Role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	return role, role.Valid()
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// Message is one turn of dialogue. Messages are values; the engine never edits one in place.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a message.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// SystemMessage creates a system instruction message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// UserMessages turns each text into a user message, in order.
func UserMessages(texts ...string) []Message {
	messages := make([]Message, len(texts))
	for i, text := range texts {
		messages[i] = UserMessage(text)
	}
	return messages
}

// GetRole returns the role name. Together with GetContent it lets a Message act as a Record.
func (m Message) GetRole() string {
	return string(m.Role)
}

// GetContent returns the text content.
func (m Message) GetContent() string {
	return m.Content
}

func cloneMessages(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	cloned := make([]Message, len(messages))
	copy(cloned, messages)
	return cloned
}
