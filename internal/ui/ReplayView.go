package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mshel/snakebot/internal/game"
	"github.com/Mshel/snakebot/internal/journal"
)

type replayKeyMap struct {
	Prev  key.Binding
	Next  key.Binding
	First key.Binding
	Last  key.Binding
	Quit  key.Binding
}

func (k replayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Quit}
}

func (k replayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Prev, k.Next}, {k.First, k.Last, k.Quit}}
}

var replayKeys = replayKeyMap{
	Prev:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
	Next:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
	First: key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
	Last:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
	Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ReplayViewModel steps through journal entries in the order they were made.
type ReplayViewModel struct {
	entries      []journal.Entry
	index        int
	keys         replayKeyMap
	help         help.Model
	ScreenWidth  int
	ScreenHeight int
}

// NewReplayModel takes entries newest first, as Journal.Recent returns them,
// and starts on the most recent one.
func NewReplayModel(entries []journal.Entry) ReplayViewModel {
	chronological := slices.Clone(entries)
	slices.Reverse(chronological)

	return ReplayViewModel{
		entries: chronological,
		index:   max(0, len(chronological)-1),
		keys:    replayKeys,
		help:    help.New(),
	}
}

func (m ReplayViewModel) Init() tea.Cmd {
	return nil
}

func (m ReplayViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ScreenWidth = msg.Width
		m.ScreenHeight = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			m.index = max(0, m.index-1)
		case key.Matches(msg, m.keys.Next):
			m.index = min(len(m.entries)-1, m.index+1)
		case key.Matches(msg, m.keys.First):
			m.index = 0
		case key.Matches(msg, m.keys.Last):
			m.index = len(m.entries) - 1
		}
		m.index = max(0, m.index)
		return m, nil
	}
	return m, nil
}

// Current returns the entry on screen.
func (m ReplayViewModel) Current() (journal.Entry, bool) {
	if len(m.entries) == 0 {
		return journal.Entry{}, false
	}
	return m.entries[m.index], true
}

func (m ReplayViewModel) View() string {
	entry, ok := m.Current()
	if !ok {
		return lipgloss.NewStyle().Faint(true).Render("No decisions recorded.") + "\n" + m.help.View(m.keys) + "\n"
	}

	var sb strings.Builder
	title := fmt.Sprintf("Decision %d/%d · %s · turn %d · %s",
		m.index+1, len(m.entries), entry.CreatedAt.Local().Format("2006-01-02 15:04:05"), entry.Turn, entry.Action)
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(title) + "\n")
	if entry.Fallback {
		sb.WriteString(fallbackStyle.Render("fallback: "+entry.Reason) + "\n")
	}

	snapshot, err := game.DecodeSnapshot(entry.Snapshot)
	if err != nil {
		sb.WriteString(lipgloss.NewStyle().Faint(true).Render("snapshot not viewable: "+err.Error()) + "\n")
	} else {
		action := game.Action(entry.Action)
		if entry.Fallback {
			action = ""
		}
		sb.WriteString(RenderBoard(snapshot, action) + "\n")
	}

	sb.WriteString(m.help.View(m.keys) + "\n")
	return sb.String()
}
