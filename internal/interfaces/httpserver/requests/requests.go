package requests

import (
	"github.com/go-playground/validator/v10"

	"github.com/janhq/chat-engine/internal/domain/collection"
	"github.com/janhq/chat-engine/internal/domain/conversation"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of a decoded request.
func Validate(req any) error {
	return validate.Struct(req)
}

type CreateSessionRequest struct {
	SystemPrompt *string  `json:"system_prompt,omitempty"`
	Model        string   `json:"model,omitempty" validate:"omitempty,max=128"`
	MaxTokens    *int     `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	Temperature  *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// SendMessageRequest sends one input to a session. UseHistory defaults to true.
type SendMessageRequest struct {
	Input        conversation.Input `json:"input"`
	ResponseType string             `json:"response_type,omitempty" validate:"omitempty,oneof=message message_list completion_obj"`
	UseHistory   *bool              `json:"use_history,omitempty"`
	SystemPrompt *string            `json:"system_prompt,omitempty"`
	Temperature  *float64           `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// Options converts the request into engine send options.
func (r SendMessageRequest) Options() []conversation.SendOption {
	useHistory := true
	if r.UseHistory != nil {
		useHistory = *r.UseHistory
	}
	opts := []conversation.SendOption{
		conversation.WithResponseShape(conversation.ResponseShape(r.ResponseType)),
		conversation.WithHistory(useHistory),
	}
	if r.SystemPrompt != nil {
		opts = append(opts, conversation.WithSystemOverride(*r.SystemPrompt))
	}
	if r.Temperature != nil {
		opts = append(opts, conversation.WithTemperature(*r.Temperature))
	}
	return opts
}

// ObserveRequest runs an observer either from an explicit instruction or from a named preset.
type ObserveRequest struct {
	Input          conversation.Input `json:"input"`
	Instruction    string             `json:"instruction,omitempty" validate:"required_without=Preset"`
	Preset         string             `json:"preset,omitempty" validate:"required_without=Instruction"`
	TargetRole     *string            `json:"target_role,omitempty"`
	FromMostRecent *bool              `json:"from_most_recent,omitempty"`
}

type CreateCollectionRequest struct {
	UserID string            `json:"user_id" form:"user_id" validate:"required,max=128"`
	Name   *string           `json:"name,omitempty" form:"name" validate:"omitempty,max=255"`
	Action collection.Action `json:"action" form:"action" validate:"required,oneof=ACTIVE PAUSE"`
}

type DeleteCollectionQuery struct {
	ID string `form:"id" validate:"required"`
}
