package chat

import (
	"context"
	"sync/atomic"
)

// fakeBackend is a scriptable Backend for tests. Unset functions
// succeed with zero values.
type fakeBackend struct {
	startFn func(ctx context.Context, req StartRequest) (string, error)
	pollFn  func(ctx context.Context, token string) ([]Record, error)
	sendFn  func(ctx context.Context, token, body string) error
	endFn   func(ctx context.Context, token string) error

	startCalls atomic.Int64
	pollCalls  atomic.Int64
	sendCalls  atomic.Int64
	endCalls   atomic.Int64
}

func (f *fakeBackend) StartSession(ctx context.Context, req StartRequest) (string, error) {
	f.startCalls.Add(1)
	if f.startFn != nil {
		return f.startFn(ctx, req)
	}
	return "tok-1", nil
}

func (f *fakeBackend) Poll(ctx context.Context, token string) ([]Record, error) {
	f.pollCalls.Add(1)
	if f.pollFn != nil {
		return f.pollFn(ctx, token)
	}
	return nil, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, token, body string) error {
	f.sendCalls.Add(1)
	if f.sendFn != nil {
		return f.sendFn(ctx, token, body)
	}
	return nil
}

func (f *fakeBackend) EndSession(ctx context.Context, token string) error {
	f.endCalls.Add(1)
	if f.endFn != nil {
		return f.endFn(ctx, token)
	}
	return nil
}
