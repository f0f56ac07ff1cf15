package chat

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Sender string

const (
	SenderUser   Sender = "user"
	SenderAgent  Sender = "agent"
	SenderSystem Sender = "system"
)

// State is the widget lifecycle state.
type State string

const (
	StateForm       State = "form"
	StateConnecting State = "connecting"
	StateActive     State = "active"
	StateEnding     State = "ending"
	StateFarewell   State = "farewell"
)

// Message is one transcript entry. RemoteID is set only for messages
// that arrived from the backend; locally authored messages carry an
// empty RemoteID and are never deduplicated.
type Message struct {
	ID        string
	RemoteID  string
	Sender    Sender
	Text      string
	AgentName string
	Timestamp time.Time
}

// Customer holds the pre-chat contact form fields.
type Customer struct {
	Name       string
	Email      string
	Phone      string
	KVKK       bool
	Commercial bool
	Consent    bool
	CustomData map[string]string
}

// Validate applies the pre-chat form rules. It is meant for the
// presentation boundary; StartSession does not call it and lets the
// backend reject bad data on its own.
func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}
	at := strings.Index(c.Email, "@")
	if at <= 0 || !strings.Contains(c.Email[at+1:], ".") {
		return errors.New("email address is invalid")
	}
	phone := strings.TrimSpace(c.Phone)
	if len(phone) < 10 || len(phone) > 15 {
		return errors.New("phone number must be 10 to 15 characters")
	}
	if !c.KVKK || !c.Commercial || !c.Consent {
		return errors.New("all consents must be accepted")
	}
	return nil
}

// TypingState mirrors the single typing indicator.
type TypingState struct {
	Visible   bool
	AgentName string
}

// HistoryEntry is one prior user message sent along with a new session.
type HistoryEntry struct {
	Message     string `json:"message"`
	MessageDate string `json:"message_date"`
}
