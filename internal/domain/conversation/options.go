package conversation

import "fmt"

// ResponseShape selects what Send returns.
type ResponseShape string

const (
	// ResponseMessage returns only the assistant reply.
	ResponseMessage ResponseShape = "message"
	// ResponseMessageList returns the full sequence sent to the gateway plus the reply.
	ResponseMessageList ResponseShape = "message_list"
	// ResponseCompletion returns the raw gateway result.
	ResponseCompletion ResponseShape = "completion_obj"
)

// ParseResponseShape validates a shape name. The empty name selects ResponseMessage.
func ParseResponseShape(raw string) (ResponseShape, error) {
	switch shape := ResponseShape(raw); shape {
	case "":
		return ResponseMessage, nil
	case ResponseMessage, ResponseMessageList, ResponseCompletion:
		return shape, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidResponseShape, raw)
	}
}

type sendOptions struct {
	shape          ResponseShape
	useHistory     bool
	systemOverride *string
	temperature    *float64
}

// SendOption customises a single Send call.
type SendOption func(*sendOptions)

// WithResponseShape selects the return shape.
func WithResponseShape(shape ResponseShape) SendOption {
	return func(o *sendOptions) {
		o.shape = shape
	}
}

// WithHistory merges retained history before the input and stores the resulting sequence afterwards.
func WithHistory(use bool) SendOption {
	return func(o *sendOptions) {
		o.useHistory = use
	}
}

// WithSystemOverride replaces the system instruction for this call.
func WithSystemOverride(instruction string) SendOption {
	return func(o *sendOptions) {
		o.systemOverride = &instruction
	}
}

// WithTemperature overrides the engine temperature for this call only.
func WithTemperature(temperature float64) SendOption {
	return func(o *sendOptions) {
		o.temperature = &temperature
	}
}

func buildSendOptions(opts []SendOption) sendOptions {
	o := sendOptions{shape: ResponseMessage}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

type observeOptions struct {
	targetRole     *Role
	fromMostRecent bool
}

// ObserveOption customises an Observe call.
type ObserveOption func(*observeOptions)

// WithTargetRole restricts extraction to messages of role.
func WithTargetRole(role Role) ObserveOption {
	return func(o *observeOptions) {
		o.targetRole = &role
	}
}

// FromMostRecent selects between extracting the last matching message (true, the default)
// and rendering every matching message as "{role}: {content}" lines.
func FromMostRecent(mostRecent bool) ObserveOption {
	return func(o *observeOptions) {
		o.fromMostRecent = mostRecent
	}
}

func buildObserveOptions(opts []ObserveOption) observeOptions {
	o := observeOptions{fromMostRecent: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
