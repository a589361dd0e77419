package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

// stubGame ends after a fixed number of steps and records what it was sent.
type stubGame struct {
	steps    int
	endAfter int
	resets   int
	applied  int
	restarts int
	resized  [2]int
	last     core.InputFrame
}

func (g *stubGame) ID() string {
	return "stub"
}

func (g *stubGame) Title() string {
	return "Stub"
}

func (g *stubGame) Reset(core.RuntimeConfig) {
	g.resets++
	g.steps = 0
}

func (g *stubGame) Render(dst *core.Screen) {
	dst.Clear()
	dst.DrawText(0, 0, "stub")
}

func (g *stubGame) Frames() int {
	return g.steps * 10
}

func (g *stubGame) BoardSize() (int, int) {
	return 10, 20
}

func (g *stubGame) Resize(w, h int) {
	g.resized = [2]int{w, h}
}

func (g *stubGame) ApplyConfig(config.TetrisConfig) {
	g.applied++
}

// Step restarts on R after game over, like the real games do.
func (g *stubGame) Step(in core.InputFrame) core.StepResult {
	g.last = in.Clone()
	if in.Has(core.ActionRestart) && g.State().GameOver {
		g.steps = 0
		g.restarts++
		return core.StepResult{State: g.State()}
	}
	g.steps++
	return core.StepResult{State: g.State()}
}

func (g *stubGame) State() core.GameState {
	return core.GameState{
		Lines:    g.steps / 2,
		Pieces:   g.steps,
		GameOver: g.endAfter > 0 && g.steps >= g.endAfter,
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		key    string
		want   core.Action
		isQuit bool
	}{
		{"left", core.ActionLeft, false},
		{"a", core.ActionLeft, false},
		{"d", core.ActionRight, false},
		{"up", core.ActionRotate, false},
		{"s", core.ActionSoftDrop, false},
		{" ", core.ActionHardDrop, false},
		{"p", core.ActionPause, false},
		{"r", core.ActionRestart, false},
		{"esc", core.ActionBack, false},
		{"q", core.ActionQuit, true},
		{"ctrl+c", core.ActionQuit, true},
		{"z", core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, quit := km.MapKey(keyMsg(tt.key))
			if got != tt.want || quit != tt.isQuit {
				t.Errorf("MapKey(%q) = %v, %v; want %v, %v", tt.key, got, quit, tt.want, tt.isQuit)
			}
		})
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()
	tests := map[string]MenuAction{
		"up":  MenuActionUp,
		"j":   MenuActionDown,
		" ":   MenuActionSelect,
		"esc": MenuActionBack,
		"tab": MenuActionResults,
		"q":   MenuActionQuit,
		"x":   MenuActionNone,
	}
	for k, want := range tests {
		if got := km.MapKeyToMenuAction(keyMsg(k)); got != want {
			t.Errorf("MapKeyToMenuAction(%q) = %v, want %v", k, got, want)
		}
	}
}

func TestRenderScreenKeepsText(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.DrawColorText(0, 0, "ab", core.ColorRed)
	s.DrawText(2, 0, "cd")
	s.DrawColorText(0, 1, "xyz", core.ColorCyan)

	out := RenderScreen(s)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "ab") || !strings.Contains(lines[0], "cd") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "xyz") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestModelCollectsInputPerFrame(t *testing.T) {
	g := &stubGame{}
	m := NewModel(g, nil, core.RuntimeConfig{ScreenW: 40, ScreenH: 10, TickRate: 60, Seed: 1})

	next, _ := m.Update(keyMsg("left"))
	next, _ = next.Update(keyMsg("left"))
	next, _ = next.Update(keyMsg(" "))
	next, _ = next.Update(TickMsg(time.Now()))

	if got := g.last.Count(core.ActionLeft); got != 2 {
		t.Errorf("left presses = %d, want 2", got)
	}
	if !g.last.Has(core.ActionHardDrop) {
		t.Error("hard drop not forwarded")
	}

	// The frame is cleared after each tick.
	next.Update(TickMsg(time.Now()))
	if g.last.Has(core.ActionLeft) {
		t.Error("input leaked into the next frame")
	}
}

func TestModelQuit(t *testing.T) {
	m := NewModel(&stubGame{}, nil, core.DefaultConfig())
	next, cmd := m.Update(keyMsg("q"))
	if !next.(Model).IsQuitting() {
		t.Error("expected quitting")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
	if next.View() != "" {
		t.Error("quitting model should render nothing")
	}
}

func TestModelSavesResultOnce(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	g := &stubGame{endAfter: 3}
	var model tea.Model = NewModel(g, store, core.RuntimeConfig{ScreenW: 40, ScreenH: 10, TickRate: 60, Seed: 1})
	for range 6 {
		model, _ = model.Update(TickMsg(time.Now()))
	}

	results, err := store.TopResults("stub", 10)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("saved %d results, want 1", len(results))
	}
	r := results[0]
	if r.Pieces != 3 || r.Lines != 1 || r.Ticks != 30 || r.Width != 10 || r.Height != 20 {
		t.Errorf("saved result = %+v", r)
	}
	if last := model.(Model).LastResult(); last == nil || last.RunID != r.RunID {
		t.Errorf("LastResult() = %+v", last)
	}
	if !strings.Contains(model.View(), "saved run "+r.RunID.String()[:8]) {
		t.Error("expected saved run status line")
	}
}

func TestModelLeavesRestartToGame(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	g := &stubGame{endAfter: 2}
	var model tea.Model = NewModel(g, store, core.RuntimeConfig{ScreenW: 40, ScreenH: 10, TickRate: 60, Seed: 1})
	tick := func() {
		model, _ = model.Update(TickMsg(time.Now()))
	}

	tick()
	tick()
	if !model.(Model).GameState().GameOver {
		t.Fatal("expected game over")
	}

	model, _ = model.Update(keyMsg("r"))
	tick()
	if g.restarts != 1 {
		t.Fatalf("game restarts = %d, want 1", g.restarts)
	}
	if g.resets != 0 {
		t.Errorf("model reset the game %d times, want 0", g.resets)
	}
	if model.(Model).GameState().GameOver {
		t.Error("expected a running game after restart")
	}

	tick()
	tick()
	results, err := store.TopResults("stub", 10)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("saved %d results, want one per round", len(results))
	}
}

func TestModelBackToMenuOnlyInSession(t *testing.T) {
	g := &stubGame{endAfter: 1}

	solo := NewModel(g, nil, core.DefaultConfig())
	next, _ := solo.Update(TickMsg(time.Now()))
	next, _ = next.Update(keyMsg("esc"))
	if next.(Model).BackToMenu() {
		t.Error("standalone game should ignore back")
	}

	inSession := NewModel(g, nil, core.DefaultConfig(), withSession())
	next, _ = inSession.Update(TickMsg(time.Now()))
	next, _ = next.Update(keyMsg("esc"))
	if !next.(Model).BackToMenu() {
		t.Error("session game should return to menu after game over")
	}
}

func TestModelResizeAndReload(t *testing.T) {
	g := &stubGame{}
	m := NewModel(g, nil, core.DefaultConfig())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	if g.resized != [2]int{100, 40} {
		t.Errorf("resize = %v", g.resized)
	}
	if g.resets != 0 {
		t.Error("resizable game should not be reset")
	}

	next, _ = next.Update(ReloadMsg{Config: config.DefaultTetrisConfig()})
	if g.applied != 1 {
		t.Errorf("ApplyConfig calls = %d, want 1", g.applied)
	}

	next, _ = next.Update(ReloadMsg{Err: errors.New("bad")})
	if g.applied != 1 {
		t.Error("failed reload should not be applied")
	}
	if !strings.Contains(next.View(), "config error") {
		t.Error("expected config error status line")
	}
}

func TestResultRows(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	rows := ResultRows([]storage.Result{
		{Lines: 1200, Pieces: 3000, Width: 10, Height: 20, CreatedAt: now.Add(-3 * time.Minute)},
		{Lines: 4, Pieces: 12, Width: 8, Height: 14},
	}, now)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	want := []string{"#1", "1,200", "3,000", "10x20", "3 minutes ago"}
	for i, w := range want {
		if rows[0][i] != w {
			t.Errorf("row 0 col %d = %q, want %q", i, rows[0][i], w)
		}
	}
	if rows[1][4] != "-" {
		t.Errorf("missing timestamp = %q, want -", rows[1][4])
	}
}

func TestResultsModelWithoutStore(t *testing.T) {
	m := NewResultsModel(nil, "", 100, 30)
	if !strings.Contains(m.View(), "unavailable") {
		t.Error("expected unavailable message without a store")
	}

	next, _ := m.Update(keyMsg("esc"))
	if !next.(ResultsModel).IsGoingBack() {
		t.Error("expected back")
	}
}

func openTestStore(t *testing.T, results ...storage.Result) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	for _, r := range results {
		if _, err := store.SaveResult(r); err != nil {
			t.Fatalf("SaveResult() failed: %v", err)
		}
	}
	return store
}

func TestResultsModelOverview(t *testing.T) {
	store := openTestStore(t,
		storage.Result{GameID: "tetris", Lines: 4, Pieces: 20},
		storage.Result{GameID: "tetris", Lines: 9, Pieces: 31},
		storage.Result{GameID: "tetris_mini", Lines: 2, Pieces: 11},
	)

	m := NewResultsModel(store, "", 100, 30)
	if st := m.allStats["tetris"]; st == nil || st.GamesCount != 2 || st.BestLines != 9 {
		t.Errorf("allStats[tetris] = %+v", st)
	}
	if len(m.recent) != 3 || m.recent[0].GameID != "tetris_mini" {
		t.Errorf("recent = %+v", m.recent)
	}
	if !strings.Contains(m.View(), "Recent") {
		t.Error("expected recent games in the sidebar")
	}
}

func TestRecentEntries(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	games := []registry.GameInfo{{ID: "tetris", Title: "Tetris"}}
	lines := recentEntries([]storage.Result{
		{GameID: "tetris", Lines: 1500, CreatedAt: now.Add(-2 * time.Hour)},
		{GameID: "gone", Lines: 3, CreatedAt: now.Add(-3 * time.Minute)},
	}, games, now)

	want := []string{
		"Tetris: 1,500 lines",
		"  2 hours ago",
		"gone: 3 lines",
		"  3 minutes ago",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestDescribeRun(t *testing.T) {
	store := openTestStore(t)
	saved, err := store.SaveResult(storage.Result{GameID: "tetris", Lines: 12, Pieces: 40, Ticks: 3600, Width: 10, Height: 20})
	if err != nil {
		t.Fatalf("SaveResult() failed: %v", err)
	}

	out, err := DescribeRun(store, saved.RunID.String())
	if err != nil {
		t.Fatalf("DescribeRun() failed: %v", err)
	}
	for _, want := range []string{saved.RunID.String(), "tetris", "Lines:   12", "Board:   10x20", "3,600"} {
		if !strings.Contains(out, want) {
			t.Errorf("DescribeRun() missing %q in:\n%s", want, out)
		}
	}

	if _, err := DescribeRun(store, "not-a-uuid"); err == nil {
		t.Error("expected error for malformed run id")
	}
	if _, err := DescribeRun(store, uuid.NewString()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown run error = %v, want ErrNotFound", err)
	}
}
