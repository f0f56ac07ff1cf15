package chat

import "strings"

// Record is one raw item from a poll response. The backend is loosely
// typed: typing signals, queue placeholders and real messages all
// arrive in the same shape, distinguished by which fields are set.
type Record struct {
	Sender        string  `json:"sender"`
	Text          *string `json:"text"`
	MessageBody   string  `json:"message_body,omitempty"`
	Type          string  `json:"type,omitempty"`
	Name          string  `json:"name,omitempty"`
	MsgID         string  `json:"msg_id,omitempty"`
	MessageStatus string  `json:"message_status,omitempty"`
	Typing        bool    `json:"typing,omitempty"`
	Status        string  `json:"status,omitempty"`
}

type recordKind int

const (
	recordIgnore recordKind = iota
	recordTyping
	recordAgentText
	recordOtherText
)

// classified is the tagged-variant form of a Record.
type classified struct {
	kind      recordKind
	text      string
	agentName string
	remoteID  string
	sender    Sender
}

// classify decodes a raw record up front so the poller can dispatch on
// the variant instead of re-checking field combinations inline.
//
// Precedence: queue/system noise is dropped first; then typing signals
// (which never produce a transcript entry); then agent text; then any
// remaining non-agent text. Anything else is noise.
func classify(r Record, fallbackAgent string) classified {
	text := ""
	if r.Text != nil {
		text = *r.Text
	}

	if r.MessageStatus == "queued" || r.Sender == string(SenderSystem) || strings.EqualFold(text, "queued") {
		return classified{kind: recordIgnore}
	}

	if r.Sender == string(SenderAgent) && isTypingSignal(r, text) {
		name := r.Name
		if name == "" {
			name = fallbackAgent
		}
		return classified{kind: recordTyping, agentName: name}
	}

	if text != "" && r.Sender == string(SenderAgent) {
		return classified{
			kind:      recordAgentText,
			text:      text,
			agentName: firstName(r.Name),
			remoteID:  r.MsgID,
			sender:    SenderAgent,
		}
	}

	if text != "" {
		sender := SenderSystem
		if r.Sender == string(SenderUser) {
			sender = SenderUser
		}
		return classified{kind: recordOtherText, text: text, remoteID: r.MsgID, sender: sender}
	}

	return classified{kind: recordIgnore}
}

// isTypingSignal accepts every typing shape the backend has been seen
// to emit: an explicit type marker, a bodyless record, or one of the
// two boolean/status flags.
func isTypingSignal(r Record, text string) bool {
	if r.Type == "typing" {
		return true
	}
	if text == "" && r.MessageBody == "" {
		return true
	}
	if r.Typing || r.Status == "typing" {
		return true
	}
	return false
}

// firstName shortens a full display name to its first token.
func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
