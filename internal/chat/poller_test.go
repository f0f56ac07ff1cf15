package chat

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestPoller(backend Backend, token string) (*Poller, *Store, *TypingNotifier) {
	store := NewStore()
	typing := NewTypingNotifier(nil)
	current := func() (string, bool) { return token, token != "" }
	p := newPoller(backend, store, typing, 10*time.Millisecond, current)
	p.fallbackAgent = "Temsilci"
	return p, store, typing
}

func TestPoller_TypingSignalShowsIndicatorOnly(t *testing.T) {
	p, store, typing := newTestPoller(&fakeBackend{}, "tok-1")

	p.apply("tok-1", []Record{{Sender: "agent", Type: "typing", Name: "Mehmet"}})

	require.True(t, typing.State().Visible)
	require.Equal(t, "Mehmet", typing.State().AgentName)
	require.Equal(t, 0, store.Len())
}

func TestPoller_AgentMessageHidesTypingAndAppends(t *testing.T) {
	p, store, typing := newTestPoller(&fakeBackend{}, "tok-1")

	p.apply("tok-1", []Record{{Sender: "agent", Type: "typing", Name: "Mehmet"}})
	require.True(t, typing.State().Visible)

	p.apply("tok-1", []Record{{
		Sender: "agent",
		Text:   strptr("Merhaba"),
		Name:   "Mehmet Demir",
		MsgID:  "m1",
	}})

	require.False(t, typing.State().Visible)
	snap := store.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, SenderAgent, snap[0].Sender)
	require.Equal(t, "Merhaba", snap[0].Text)
	require.Equal(t, "Mehmet", snap[0].AgentName)
	require.Equal(t, "m1", snap[0].RemoteID)
	require.True(t, store.Seen("m1"))
}

func TestPoller_TypingHiddenBeforeMessageAppended(t *testing.T) {
	store := NewStore()
	var typing *TypingNotifier
	var visibleAtAppend []bool

	typing = NewTypingNotifier(nil)
	current := func() (string, bool) { return "tok-1", true }
	p := newPoller(&fakeBackend{}, store, typing, time.Second, current)
	p.onMessage = func(Message) {
		visibleAtAppend = append(visibleAtAppend, typing.State().Visible)
	}

	p.apply("tok-1", []Record{
		{Sender: "agent", Type: "typing", Name: "Mehmet"},
		{Sender: "agent", Text: strptr("Merhaba"), Name: "Mehmet", MsgID: "m1"},
	})

	require.Equal(t, []bool{false}, visibleAtAppend)
}

func TestPoller_DuplicateRemoteIDAppendedOnce(t *testing.T) {
	p, store, _ := newTestPoller(&fakeBackend{}, "tok-1")
	rec := Record{Sender: "agent", Text: strptr("Merhaba"), Name: "Mehmet", MsgID: "m1"}

	p.apply("tok-1", []Record{rec, rec})
	require.Equal(t, 1, store.Len())

	// redelivery on a later tick
	p.apply("tok-1", []Record{rec})
	require.Equal(t, 1, store.Len())
}

func TestPoller_QueueNoiseDroppedSilently(t *testing.T) {
	p, store, typing := newTestPoller(&fakeBackend{}, "tok-1")

	p.apply("tok-1", []Record{
		{Sender: "system", Text: strptr("you are in the queue")},
		{Sender: "agent", Text: strptr("hold on"), MessageStatus: "queued"},
		{Sender: "user", Text: strptr("queued")},
	})

	require.Equal(t, 0, store.Len())
	require.False(t, typing.State().Visible)
}

func TestPoller_StaleResponseDropped(t *testing.T) {
	p, store, _ := newTestPoller(&fakeBackend{}, "tok-2")

	// response from a request issued under a token that is no longer live
	p.apply("tok-1", []Record{{Sender: "agent", Text: strptr("late"), MsgID: "m9"}})

	require.Equal(t, 0, store.Len())
	require.False(t, store.Seen("m9"))
}

func TestPoller_TickWithoutTokenIsNoOp(t *testing.T) {
	backend := &fakeBackend{}
	p, _, _ := newTestPoller(backend, "")

	p.tick(context.Background())
	require.Equal(t, int64(0), backend.pollCalls.Load())
}

func TestPoller_TickErrorDoesNotStopFollowingTicks(t *testing.T) {
	backend := &fakeBackend{
		pollFn: func(context.Context, string) ([]Record, error) {
			return nil, errors.New("connection refused")
		},
	}
	p, store, _ := newTestPoller(backend, "tok-1")

	p.tick(context.Background())
	p.tick(context.Background())

	require.Equal(t, int64(2), backend.pollCalls.Load())
	require.Equal(t, 0, store.Len())
}

func TestPoller_StartStopIdempotent(t *testing.T) {
	polled := make(chan struct{}, 64)
	backend := &fakeBackend{
		pollFn: func(context.Context, string) ([]Record, error) {
			select {
			case polled <- struct{}{}:
			default:
			}
			return nil, nil
		},
	}
	p, _, _ := newTestPoller(backend, "tok-1")

	p.Start()
	p.Start()
	require.True(t, p.Running())

	select {
	case <-polled:
	case <-time.After(2 * time.Second):
		t.Fatal("poller never ticked")
	}

	p.Stop()
	p.Stop()
	require.False(t, p.Running())

	// no new polls once stopped
	time.Sleep(30 * time.Millisecond)
	for len(polled) > 0 {
		<-polled
	}
	before := backend.pollCalls.Load()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, before, backend.pollCalls.Load())
}
