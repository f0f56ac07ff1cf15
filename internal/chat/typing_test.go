package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypingNotifier_ShowAndHide(t *testing.T) {
	var seen []TypingState
	n := NewTypingNotifier(func(s TypingState) { seen = append(seen, s) })

	n.Show("Mehmet")
	require.True(t, n.State().Visible)
	require.Equal(t, "Mehmet", n.State().AgentName)

	n.Hide()
	require.False(t, n.State().Visible)
	require.Equal(t, "", n.State().AgentName)

	require.Len(t, seen, 2)
	require.True(t, seen[0].Visible)
	require.False(t, seen[1].Visible)
}

func TestTypingNotifier_ShowReplacesLabel(t *testing.T) {
	n := NewTypingNotifier(nil)
	n.Show("Mehmet")
	n.Show("Ayşe")
	require.True(t, n.State().Visible)
	require.Equal(t, "Ayşe", n.State().AgentName)
}

func TestTypingNotifier_HideWhenHiddenIsSafe(t *testing.T) {
	calls := 0
	n := NewTypingNotifier(func(TypingState) { calls++ })

	n.Hide()
	n.Hide()
	require.Equal(t, 0, calls)
	require.False(t, n.State().Visible)
}
