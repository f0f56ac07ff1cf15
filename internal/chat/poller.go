package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Poller fetches new records from the backend at a fixed interval
// while a session is active and routes them to the store and the
// typing notifier.
//
// Ticks are serialized by construction: the round-trip happens
// synchronously inside the single polling goroutine, so a new tick can
// never start while one is outstanding.
type Poller struct {
	backend  Backend
	store    *Store
	typing   *TypingNotifier
	interval time.Duration

	// current returns the live session token; ok is false when no
	// session is active. Re-checked after every round-trip so results
	// from a torn-down session are discarded.
	current func() (token string, ok bool)

	// onMessage receives every appended message; onActivity fires when
	// any record from the backend was routed. Either may be nil.
	onMessage  func(Message)
	onActivity func()

	fallbackAgent string

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newPoller(backend Backend, store *Store, typing *TypingNotifier, interval time.Duration, current func() (string, bool)) *Poller {
	return &Poller{
		backend:  backend,
		store:    store,
		typing:   typing,
		interval: interval,
		current:  current,
	}
}

// Start launches the polling goroutine. Calling Start on a running
// poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.run(ctx)
}

// Stop cancels the polling loop. Idempotent; any in-flight request is
// aborted through the loop context.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
}

// Running reports whether the polling loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick performs one poll round-trip. A tick with no token is a no-op,
// which guards against races right after session end. Errors are
// logged and never stop subsequent ticks.
func (p *Poller) tick(ctx context.Context) {
	token, ok := p.current()
	if !ok || token == "" {
		return
	}

	records, err := p.backend.Poll(ctx, token)
	if err != nil {
		log.Warn().Err(err).Str("component", "poller").Msg("poll tick failed")
		return
	}

	p.apply(token, records)
}

// apply routes one poll response. The token the request carried is
// re-validated against the live session first; stale results are
// dropped rather than resurrected into a cleared transcript.
func (p *Poller) apply(token string, records []Record) {
	if cur, ok := p.current(); !ok || cur != token {
		log.Debug().Str("component", "poller").Msg("dropping stale poll response")
		return
	}

	for _, rec := range records {
		c := classify(rec, p.fallbackAgent)
		if c.kind == recordIgnore {
			continue
		}
		if c.remoteID != "" && p.store.Seen(c.remoteID) {
			continue
		}

		if p.onActivity != nil {
			p.onActivity()
		}

		switch c.kind {
		case recordTyping:
			p.typing.Show(c.agentName)

		case recordAgentText:
			// The indicator must be gone no later than the moment its
			// message appears.
			p.typing.Hide()
			p.append(Message{
				ID:        uuid.NewString(),
				RemoteID:  c.remoteID,
				Sender:    SenderAgent,
				Text:      c.text,
				AgentName: c.agentName,
				Timestamp: time.Now(),
			})

		case recordOtherText:
			p.append(Message{
				ID:        uuid.NewString(),
				RemoteID:  c.remoteID,
				Sender:    c.sender,
				Text:      c.text,
				Timestamp: time.Now(),
			})
		}
	}
}

func (p *Poller) append(msg Message) {
	p.store.Append(msg)
	p.store.MarkSeen(msg.RemoteID)
	if p.onMessage != nil {
		p.onMessage(msg)
	}
}
