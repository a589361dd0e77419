// Package tui provides the Bubble Tea front end: the game loop, the variant
// menu, the results board and the SSH server that serves them.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tetris/internal/config"
)

// TickMsg is sent to trigger a game simulation tick.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// ReloadMsg carries a config reload from a file watcher.
type ReloadMsg config.Reload

// waitForReload blocks on the watcher channel and turns the next reload
// into a message. It returns nil when the channel is closed.
func waitForReload(ch <-chan config.Reload) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return ReloadMsg(r)
	}
}
