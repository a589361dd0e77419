package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

// Results board layout constants
const (
	minWidthForSidebar = 80  // Minimum width to show variant list sidebar
	sidebarWidth       = 26  // Width of variant list sidebar
	maxResults         = 100 // Max results to load
	recentCount        = 5   // Recent games listed under the variants
)

// ResultsKeyMap defines the key bindings for the results board.
type ResultsKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextGame key.Binding
	PrevGame key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ResultsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextGame, k.PrevGame, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ResultsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextGame, k.PrevGame},
		{k.Back, k.Quit},
	}
}

// DefaultResultsKeyMap returns default key bindings.
func DefaultResultsKeyMap() ResultsKeyMap {
	return ResultsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		NextGame: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next variant"),
		),
		PrevGame: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev variant"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ResultsModel is the Bubble Tea model for the results board.
type ResultsModel struct {
	games       []registry.GameInfo
	gameCursor  int
	store       *storage.Store
	results     []storage.Result
	stats       *storage.GameStats
	allStats    map[string]*storage.GameStats
	recent      []storage.Result
	loadErr     error
	now         func() time.Time
	table       table.Model
	help        help.Model
	keys        ResultsKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
}

// NewResultsModel creates a results board starting at the given variant.
// An empty or unknown gameID starts at the first variant.
func NewResultsModel(store *storage.Store, gameID string, width, height int) ResultsModel {
	h := help.New()
	h.ShowAll = false
	h.Width = width

	m := ResultsModel{
		games:       registry.List(),
		store:       store,
		now:         time.Now,
		keys:        DefaultResultsKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	for i, g := range m.games {
		if g.ID == gameID {
			m.gameCursor = i
		}
	}

	m.table = m.createTable()
	m.loadOverview()
	m.reload()
	return m
}

// loadOverview fetches the per-variant counts and the latest games shown in
// the sidebar. Failures leave the sidebar without them.
func (m *ResultsModel) loadOverview() {
	if m.store == nil {
		return
	}
	if all, err := m.store.AllStats(); err == nil {
		m.allStats = all
	}
	if recent, err := m.store.RecentResults(recentCount); err == nil {
		m.recent = recent
	}
}

// createTable creates a new table sized for the current window.
func (m *ResultsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Lines", Width: 7},
		{Title: "Pieces", Width: 8},
		{Title: "Board", Width: 7},
		{Title: "Played", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)), // Leave room for header, stats and help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// currentGame returns the selected variant ID, or "" if none are registered.
func (m ResultsModel) currentGame() string {
	if len(m.games) == 0 {
		return ""
	}
	return m.games[m.gameCursor].ID
}

// reload fetches results and stats for the selected variant.
func (m *ResultsModel) reload() {
	m.results, m.stats, m.loadErr = nil, nil, nil
	if m.store != nil && len(m.games) > 0 {
		id := m.currentGame()
		m.results, m.loadErr = m.store.TopResults(id, maxResults)
		if m.loadErr == nil {
			m.stats, m.loadErr = m.store.Stats(id)
		}
	}
	m.table.SetRows(ResultRows(m.results, m.now()))
	m.table.GotoTop()
}

// ResultRows formats results as table rows, ranked in the given order.
func ResultRows(results []storage.Result, now time.Time) []table.Row {
	rows := make([]table.Row, len(results))
	for i, r := range results {
		played := "-"
		if !r.CreatedAt.IsZero() {
			played = humanize.RelTime(r.CreatedAt, now, "ago", "from now")
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			humanize.Comma(int64(r.Lines)),
			humanize.Comma(int64(r.Pieces)),
			fmt.Sprintf("%dx%d", r.Width, r.Height),
			played,
		}
	}
	return rows
}

// recentEntries formats the latest games for the sidebar, two lines each.
func recentEntries(results []storage.Result, games []registry.GameInfo, now time.Time) []string {
	titles := make(map[string]string, len(games))
	for _, g := range games {
		titles[g.ID] = g.Title
	}

	lines := make([]string, 0, len(results)*2)
	for _, r := range results {
		title, ok := titles[r.GameID]
		if !ok {
			title = r.GameID
		}
		lines = append(lines,
			fmt.Sprintf("%s: %s lines", title, humanize.Comma(int64(r.Lines))),
			"  "+humanize.RelTime(r.CreatedAt, now, "ago", "from now"),
		)
	}
	return lines
}

// DescribeRun looks up one saved game by its run ID and formats it for
// display.
func DescribeRun(store *storage.Store, runID string) (string, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return "", fmt.Errorf("invalid run id %q: %w", runID, err)
	}
	r, err := store.ResultByRunID(id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run:     %s\n", r.RunID)
	fmt.Fprintf(&b, "Variant: %s\n", r.GameID)
	fmt.Fprintf(&b, "Lines:   %s\n", humanize.Comma(int64(r.Lines)))
	fmt.Fprintf(&b, "Pieces:  %s\n", humanize.Comma(int64(r.Pieces)))
	fmt.Fprintf(&b, "Board:   %dx%d\n", r.Width, r.Height)
	fmt.Fprintf(&b, "Frames:  %s\n", humanize.Comma(int64(r.Ticks)))
	fmt.Fprintf(&b, "Played:  %s", r.CreatedAt.Local().Format("2006-01-02 15:04"))
	return b.String(), nil
}

// Init initializes the results board.
func (m ResultsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results board.
func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextGame):
			if len(m.games) > 0 {
				m.gameCursor = (m.gameCursor + 1) % len(m.games)
				m.reload()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevGame):
			if len(m.games) > 0 {
				m.gameCursor = (m.gameCursor - 1 + len(m.games)) % len(m.games)
				m.reload()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.table.SetRows(ResultRows(m.results, m.now()))
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table for scrolling
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the results board.
func (m ResultsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := "RESULTS"
	if len(m.games) > 0 {
		title = fmt.Sprintf("RESULTS - %s", m.games[m.gameCursor].Title)
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n")
	b.WriteString(centerText(m.statsLine(), m.width))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderTableBox())
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// statsLine summarizes the selected variant.
func (m ResultsModel) statsLine() string {
	if m.stats == nil || m.stats.GamesCount == 0 {
		return ""
	}
	return fmt.Sprintf("Games: %s  Best: %d lines  Avg: %.1f  Total pieces: %s  Last: %s",
		humanize.Comma(int64(m.stats.GamesCount)),
		m.stats.BestLines,
		m.stats.AvgLines,
		humanize.Comma(m.stats.TotalPieces),
		humanize.RelTime(m.stats.LastPlayed, m.now(), "ago", "from now"),
	)
}

// renderWideLayout renders the table with a variant sidebar.
func (m ResultsModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Variants\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, g := range m.games {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.gameCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		label := cursor + g.Title
		if st, ok := m.allStats[g.ID]; ok {
			label += fmt.Sprintf(" (%d)", st.GamesCount)
		}
		sidebar.WriteString(style.Render(label))
		sidebar.WriteString("\n")
	}

	if entries := recentEntries(m.recent, m.games, m.now()); len(entries) > 0 {
		dim := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
		sidebar.WriteString("\nRecent\n")
		sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
		sidebar.WriteString("\n")
		for _, line := range entries {
			sidebar.WriteString(dim.Render(line))
			sidebar.WriteString("\n")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebarStyle.Render(sidebar.String()), "  ", m.renderTableBox())
}

// renderTableBox renders the bordered table or an empty message.
func (m ResultsModel) renderTableBox() string {
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.store == nil:
		return tableStyle.Render(emptyStyle.Render("Results storage is unavailable."))
	case m.loadErr != nil:
		return tableStyle.Render(emptyStyle.Render("Could not load results:\n" + m.loadErr.Error()))
	case len(m.results) == 0:
		return tableStyle.Render(emptyStyle.Render("No results recorded yet.\nFinish a game to get on the board!"))
	}
	return tableStyle.Render(m.table.View())
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ResultsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ResultsModel) IsQuitting() bool {
	return m.quitting
}

// RunResults runs the results board.
// Returns true if user wants to go back to menu, false if quitting.
func RunResults(store *storage.Store, gameID string, width, height int) (goBack bool, err error) {
	model := NewResultsModel(store, gameID, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(ResultsModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
