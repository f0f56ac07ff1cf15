package chat

import "context"

// StartRequest carries everything the backend needs to open a session.
type StartRequest struct {
	Customer Customer
	Path     string
	History  []HistoryEntry
}

// Backend is the remote chat service. Implementations must treat it as
// a black box: request/response only, no push channel.
type Backend interface {
	StartSession(ctx context.Context, req StartRequest) (token string, err error)
	Poll(ctx context.Context, token string) ([]Record, error)
	SendMessage(ctx context.Context, token, body string) error
	EndSession(ctx context.Context, token string) error
}

// Events is the presentation layer's view of the conversation. All
// methods are invoked from the goroutine that produced the change;
// implementations must not call back into the Service from them.
type Events interface {
	MessageAppended(msg Message)
	TypingChanged(state TypingState)
	StateChanged(state State)
}
