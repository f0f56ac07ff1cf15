package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Service orchestrates one widget conversation: it owns the session
// token, the lifecycle state machine and the outbound sender, and
// wires the poller, store and typing notifier together.
//
// The Service is the sole writer of the token. The poller and the
// sender only read it.
type Service struct {
	cfg     Config
	backend Backend
	store   *Store
	typing  *TypingNotifier
	poller  *Poller
	events  Events
	texts   uiStrings

	mu          sync.Mutex
	token       string
	active      bool
	connecting  bool
	state       State
	customer    Customer
	provisional *time.Timer
}

// Option configures a Service.
type Option func(*Service)

// WithEvents attaches a presentation-layer observer.
func WithEvents(ev Events) Option {
	return func(s *Service) { s.events = ev }
}

// NewService wires a conversation around the given backend.
func NewService(cfg Config, backend Backend, opts ...Option) *Service {
	cfg = cfg.withDefaults()
	s := &Service{
		cfg:     cfg,
		backend: backend,
		store:   NewStore(),
		state:   StateForm,
		texts:   stringsFor(cfg.Lang),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.typing = NewTypingNotifier(func(state TypingState) {
		if s.events != nil {
			s.events.TypingChanged(state)
		}
	})

	s.poller = newPoller(backend, s.store, s.typing, cfg.PollingInterval, s.Token)
	s.poller.fallbackAgent = s.texts.genericAgent
	s.poller.onMessage = s.messageAppended
	s.poller.onActivity = s.cancelProvisionalTyping

	return s
}

// Store exposes the transcript for rendering.
func (s *Service) Store() *Store { return s.store }

// Typing returns the current indicator state.
func (s *Service) Typing() TypingState { return s.typing.State() }

// Token returns the live session token; ok is false when no session
// is active.
func (s *Service) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.active
}

// Active reports whether a session is established.
func (s *Service) Active() bool {
	_, ok := s.Token()
	return ok
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartSession submits the pre-chat form. On success the token is
// stored, the session becomes active and the poller begins. On any
// failure an inline message is appended to the transcript and the
// widget stays in the form state so the visitor can retry.
//
// Calling it while a session is connecting or active is a no-op.
func (s *Service) StartSession(ctx context.Context, customer Customer) error {
	return s.startSession(ctx, customer, nil)
}

// StartSessionWithHistory starts a session carrying the current
// transcript's user messages as customer history, so the agent sees
// what the visitor already typed before connecting.
func (s *Service) StartSessionWithHistory(ctx context.Context, customer Customer) error {
	return s.startSession(ctx, customer, s.History())
}

func (s *Service) startSession(ctx context.Context, customer Customer, history []HistoryEntry) error {
	s.mu.Lock()
	if s.connecting || s.active {
		s.mu.Unlock()
		log.Debug().Str("component", "service").Msg("session already active or connecting")
		return nil
	}
	s.connecting = true
	s.mu.Unlock()
	s.setState(StateConnecting)

	token, err := s.backend.StartSession(ctx, StartRequest{
		Customer: customer,
		Path:     s.cfg.CustomerPath,
		History:  history,
	})

	s.mu.Lock()
	s.connecting = false
	if err != nil {
		s.mu.Unlock()
		s.setState(StateForm)
		log.Warn().Err(err).Str("component", "service").Msg("session start failed")
		s.appendLocal(SenderSystem, s.texts.connectFailed)
		return errors.Wrap(err, "start session")
	}
	s.token = token
	s.active = true
	s.customer = customer
	s.mu.Unlock()

	s.setState(StateActive)
	s.poller.Start()
	log.Info().Str("component", "service").Msg("chat session started")
	return nil
}

// Send transmits one user-authored message. The message is echoed into
// the transcript before the network call is even issued, so the sender
// never perceives their own message as delayed.
//
// With no active session the attempt is logged and nothing else
// happens: no network call and no fabricated reply.
func (s *Service) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	token, ok := s.Token()
	if !ok || token == "" {
		log.Info().Str("component", "service").Str("text", text).Msg("offline send, no session")
		return nil
	}

	s.appendLocal(SenderUser, text)

	if err := s.backend.SendMessage(ctx, token, text); err != nil {
		log.Warn().Err(err).Str("component", "service").Msg("send failed")
		s.appendLocal(SenderSystem, s.texts.sendFailed)
		return errors.Wrap(err, "send message")
	}

	s.scheduleProvisionalTyping()
	return nil
}

// EndSession tears the session down locally first so the UI moves on
// immediately, then fires a best-effort end-chat request in the
// background with the discarded token. The background call can fail
// without the user ever noticing and can never re-activate anything.
func (s *Service) EndSession() {
	token := s.teardown(StateEnding)
	s.setState(StateFarewell)

	if token == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
		defer cancel()
		if err := s.backend.EndSession(ctx, token); err != nil {
			log.Warn().Err(err).Str("component", "service").Msg("background end-chat failed")
		}
	}()
}

// Reset returns the widget to the pre-chat form, independent of
// whether a session was active. A still-open session is ended in the
// background the same way EndSession does it.
func (s *Service) Reset() {
	token := s.teardown(StateForm)
	if token == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
		defer cancel()
		if err := s.backend.EndSession(ctx, token); err != nil {
			log.Warn().Err(err).Str("component", "service").Msg("background end-chat failed")
		}
	}()
}

// teardown clears all local session state synchronously and returns
// the token that was live, for the caller's background end-chat call.
func (s *Service) teardown(next State) string {
	s.mu.Lock()
	token := s.token
	s.token = ""
	s.active = false
	s.connecting = false
	s.customer = Customer{}
	if s.provisional != nil {
		s.provisional.Stop()
		s.provisional = nil
	}
	s.mu.Unlock()

	s.poller.Stop()
	s.typing.Hide()
	s.store.Clear()
	s.setState(next)
	return token
}

// History builds customer_history entries from the user messages in
// the current transcript.
func (s *Service) History() []HistoryEntry {
	var out []HistoryEntry
	for _, msg := range s.store.Snapshot() {
		if msg.Sender != SenderUser {
			continue
		}
		out = append(out, HistoryEntry{
			Message:     msg.Text,
			MessageDate: msg.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return out
}

// scheduleProvisionalTyping arms the post-send indicator: after a
// short delay the generic agent label appears, anticipating a real
// typing signal or reply. The poller's own classification supersedes
// it the moment real data arrives.
func (s *Service) scheduleProvisionalTyping() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provisional != nil {
		s.provisional.Stop()
	}
	s.provisional = time.AfterFunc(s.cfg.TypingDelay, func() {
		if _, ok := s.Token(); !ok {
			return
		}
		s.typing.Show(s.texts.genericAgent)
	})
}

func (s *Service) cancelProvisionalTyping() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provisional != nil {
		s.provisional.Stop()
		s.provisional = nil
	}
}

func (s *Service) appendLocal(sender Sender, text string) {
	msg := Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	}
	s.store.Append(msg)
	s.messageAppended(msg)
}

func (s *Service) messageAppended(msg Message) {
	if s.events != nil {
		s.events.MessageAppended(msg)
	}
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.mu.Unlock()
	if changed && s.events != nil {
		s.events.StateChanged(state)
	}
}
