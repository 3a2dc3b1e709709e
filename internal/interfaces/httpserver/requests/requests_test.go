package requests

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/chat-engine/internal/domain/conversation"
)

func recordingEngine(t *testing.T) (*conversation.Engine, *[][]conversation.Message) {
	t.Helper()
	var calls [][]conversation.Message
	gw := conversation.GatewayFunc(func(_ context.Context, messages []conversation.Message, _ conversation.GenerationParams) (*conversation.CompletionResult, error) {
		calls = append(calls, messages)
		return &conversation.CompletionResult{Reply: conversation.AssistantMessage("ok")}, nil
	})
	engine, err := conversation.NewEngine(gw, conversation.Config{SystemPrompt: "sys"})
	require.NoError(t, err)
	return engine, &calls
}

func TestSendMessageRequest_OptionsUseHistory(t *testing.T) {
	off := false
	tests := []struct {
		name        string
		body        string
		req         SendMessageRequest
		wantHistory int
	}{
		{"absent defaults to history", `{"input":"hi"}`, SendMessageRequest{}, 3},
		{"explicit false", `{"input":"hi","use_history":false}`, SendMessageRequest{UseHistory: &off}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req SendMessageRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.req.UseHistory == nil, req.UseHistory == nil)

			engine, calls := recordingEngine(t)
			_, err := engine.Send(context.Background(), req.Input, req.Options()...)
			require.NoError(t, err)

			assert.Len(t, engine.History(), tt.wantHistory)
			require.Len(t, *calls, 1)
			assert.Equal(t, conversation.UserMessage("hi"), (*calls)[0][len((*calls)[0])-1])
		})
	}
}

func TestSendMessageRequest_OptionsOverrides(t *testing.T) {
	var req SendMessageRequest
	require.NoError(t, json.Unmarshal([]byte(`{"input":"hi","system_prompt":"brief","response_type":"message_list"}`), &req))
	require.NoError(t, Validate(req))

	engine, calls := recordingEngine(t)
	reply, err := engine.Send(context.Background(), req.Input, req.Options()...)
	require.NoError(t, err)

	assert.Equal(t, conversation.ResponseMessageList, reply.Shape)
	assert.Equal(t, conversation.SystemMessage("brief"), (*calls)[0][0])
}

func TestValidate_SendMessageRequest(t *testing.T) {
	assert.Error(t, Validate(SendMessageRequest{ResponseType: "stream"}))
	hot := 3.0
	assert.Error(t, Validate(SendMessageRequest{Temperature: &hot}))
	assert.NoError(t, Validate(SendMessageRequest{ResponseType: "completion_obj"}))
}
