package conversation

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// InputKind identifies which shape an Input carries.
type InputKind int

const (
	InputKindNone InputKind = iota
	InputKindText
	InputKindMessages
	InputKindRecords
)

func (k InputKind) String() string {
	switch k {
	case InputKindText:
		return "text"
	case InputKindMessages:
		return "messages"
	case InputKindRecords:
		return "records"
	default:
		return "none"
	}
}

// AttributeRecord is a record whose role and content are read through accessors.
type AttributeRecord interface {
	GetRole() string
	GetContent() string
}

// Record is a loosely typed message record: a map with "role" and "content" keys
// (map[string]any or map[string]string) or an AttributeRecord.
type Record interface{}

// Input is what callers hand to the engine: a bare text, a sequence of messages, or a sequence of records.
// Build one with TextInput, MessagesInput or RecordsInput; the zero Input is rejected by Normalize.
type Input struct {
	kind     InputKind
	text     string
	messages []Message
	records  []Record
}

// TextInput wraps a single user text.
func TextInput(text string) Input {
	return Input{kind: InputKindText, text: text}
}

// MessagesInput wraps an ordered sequence of messages. The slice is copied.
func MessagesInput(messages ...Message) Input {
	return Input{kind: InputKindMessages, messages: cloneMessages(messages)}
}

// RecordsInput wraps an ordered sequence of loosely typed records.
func RecordsInput(records ...Record) Input {
	cloned := make([]Record, len(records))
	copy(cloned, records)
	return Input{kind: InputKindRecords, records: cloned}
}

// Kind reports the shape carried by the input.
func (in Input) Kind() InputKind {
	return in.kind
}

// UnmarshalJSON accepts a JSON string, an array of strings (user messages) or an array of
// {"role", "content"} objects.
func (in *Input) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*in = Input{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return invalidInput("decode text: %v", err)
		}
		*in = TextInput(text)
		return nil
	case '[':
		var elements []any
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return invalidInput("decode sequence: %v", err)
		}
		texts := make([]string, 0, len(elements))
		for _, element := range elements {
			text, ok := element.(string)
			if !ok {
				break
			}
			texts = append(texts, text)
		}
		if len(elements) > 0 && len(texts) == len(elements) {
			*in = MessagesInput(UserMessages(texts...)...)
			return nil
		}
		records := make([]Record, len(elements))
		for i, element := range elements {
			records[i] = element
		}
		*in = RecordsInput(records...)
		return nil
	default:
		return invalidInput("expected a string or an array, got %s", string(trimmed[:1]))
	}
}

// Normalize maps any Input shape onto a fresh, ordered sequence of messages.
// The result never aliases memory owned by the caller.
func Normalize(in Input) ([]Message, error) {
	var messages []Message

	switch in.kind {
	case InputKindText:
		messages = []Message{UserMessage(in.text)}
	case InputKindMessages:
		if len(in.messages) == 0 {
			return nil, invalidInput("empty message sequence")
		}
		messages = cloneMessages(in.messages)
		for i, message := range messages {
			if !message.Role.Valid() {
				return nil, invalidInput("message %d has unknown role %q", i, message.Role)
			}
		}
	case InputKindRecords:
		if len(in.records) == 0 {
			return nil, invalidInput("empty record sequence")
		}
		messages = make([]Message, 0, len(in.records))
		for i, record := range in.records {
			message, err := normalizeRecord(i, record)
			if err != nil {
				return nil, err
			}
			messages = append(messages, message)
		}
	default:
		return nil, invalidInput("no input provided")
	}

	for i := 1; i < len(messages); i++ {
		if messages[i].Role == RoleSystem {
			return nil, invalidInput("system message at position %d, only position 0 may hold the instruction", i)
		}
	}

	return messages, nil
}

func normalizeRecord(index int, record Record) (Message, error) {
	var roleName, content string

	switch r := record.(type) {
	case nil:
		return Message{}, invalidInput("record %d is empty", index)
	case map[string]any:
		rawRole, ok := r["role"]
		if !ok {
			return Message{}, invalidInput("record %d is missing role", index)
		}
		rawContent, ok := r["content"]
		if !ok {
			return Message{}, invalidInput("record %d is missing content", index)
		}
		roleText, err := textField(index, "role", rawRole)
		if err != nil {
			return Message{}, err
		}
		contentText, err := textField(index, "content", rawContent)
		if err != nil {
			return Message{}, err
		}
		roleName, content = roleText, contentText
	case map[string]string:
		rawRole, ok := r["role"]
		if !ok {
			return Message{}, invalidInput("record %d is missing role", index)
		}
		rawContent, ok := r["content"]
		if !ok {
			return Message{}, invalidInput("record %d is missing content", index)
		}
		roleName, content = rawRole, rawContent
	case AttributeRecord:
		roleName, content = r.GetRole(), r.GetContent()
	default:
		return Message{}, invalidInput("record %d has unsupported type %T", index, record)
	}

	role, ok := ParseRole(roleName)
	if !ok {
		return Message{}, invalidInput("record %d has unknown role %q", index, roleName)
	}
	return NewMessage(role, content), nil
}

func textField(index int, name string, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case Role:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", invalidInput("record %d field %s must be text, got %T", index, name, value)
	}
}
