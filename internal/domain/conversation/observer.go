package conversation

import (
	"context"
	"fmt"
	"strings"
)

// Observe extracts content from input and sends it through the engine under instruction with zero temperature
// and without touching history.
//
// By default the content of the most recent message matching the target role is used. With FromMostRecent(false)
// every matching message is rendered as a "{role}: {content}" line. The system role can never be targeted.
func (e *Engine) Observe(ctx context.Context, input Input, instruction string, opts ...ObserveOption) (*Message, error) {
	o := buildObserveOptions(opts)
	if o.targetRole != nil && (*o.targetRole == RoleSystem || !o.targetRole.Valid()) {
		return nil, fmt.Errorf("%w: cannot observe role %q", ErrInvalidRole, *o.targetRole)
	}

	messages, err := Normalize(input)
	if err != nil {
		return nil, err
	}

	extracted, err := extractObservation(messages, o.targetRole, o.fromMostRecent)
	if err != nil {
		return nil, err
	}

	reply, err := e.Send(ctx, TextInput(extracted),
		WithResponseShape(ResponseMessage),
		WithSystemOverride(instruction),
		WithTemperature(0),
		WithHistory(false),
	)
	if err != nil {
		return nil, err
	}
	return reply.Message, nil
}

// extractObservation never returns system content; the instruction channel is not observable.
func extractObservation(messages []Message, target *Role, mostRecent bool) (string, error) {
	matches := func(m Message) bool {
		if m.Role == RoleSystem {
			return false
		}
		return target == nil || m.Role == *target
	}

	if mostRecent {
		for i := len(messages) - 1; i >= 0; i-- {
			if matches(messages[i]) {
				return messages[i].Content, nil
			}
		}
		return "", noMatch(target)
	}

	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		if matches(m) {
			lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
		}
	}
	if len(lines) == 0 {
		return "", noMatch(target)
	}
	return strings.Join(lines, "\n"), nil
}

func noMatch(target *Role) error {
	if target == nil {
		return ErrNoMatchingUnit
	}
	return fmt.Errorf("%w: %s", ErrNoMatchingUnit, *target)
}
