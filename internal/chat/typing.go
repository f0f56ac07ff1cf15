package chat

import "sync"

// TypingNotifier holds the single "agent is typing" indicator. There
// is no auto-expiry: visibility changes only through Show and Hide,
// driven by the poller and the outbound sender.
type TypingNotifier struct {
	mu     sync.Mutex
	state  TypingState
	notify func(TypingState)
}

// NewTypingNotifier creates a notifier. notify may be nil; when set it
// is invoked after every state change with the new state.
func NewTypingNotifier(notify func(TypingState)) *TypingNotifier {
	return &TypingNotifier{notify: notify}
}

// Show makes the indicator visible with the given label. Calling it
// while already visible just refreshes the label.
func (n *TypingNotifier) Show(agentName string) {
	n.mu.Lock()
	n.state = TypingState{Visible: true, AgentName: agentName}
	state := n.state
	notify := n.notify
	n.mu.Unlock()
	if notify != nil {
		notify(state)
	}
}

// Hide clears the indicator. Safe to call when already hidden.
func (n *TypingNotifier) Hide() {
	n.mu.Lock()
	wasVisible := n.state.Visible
	n.state = TypingState{}
	state := n.state
	notify := n.notify
	n.mu.Unlock()
	if wasVisible && notify != nil {
		notify(state)
	}
}

func (n *TypingNotifier) State() TypingState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}
