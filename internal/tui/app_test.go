package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mvens/tubefrage/internal/bridge"
	"github.com/mvens/tubefrage/internal/qa"
	"github.com/mvens/tubefrage/internal/session"
	"github.com/mvens/tubefrage/internal/types"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(qa.New(""), bridge.New(0), types.Profile{}, false, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestPanelShowsGreetingOnConnect(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, activeTabMsg{url: "https://www.youtube.com/watch?v=abc123"})

	view := m.View()
	if !strings.Contains(view, session.Greeting) {
		t.Errorf("view missing greeting:\n%s", view)
	}
	if !strings.Contains(view, "abc123") {
		t.Errorf("status bar missing video id:\n%s", view)
	}
}

func TestPanelShowsDisconnectReason(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, activeTabMsg{url: "https://example.com"})

	if view := m.View(); !strings.Contains(view, "Not YouTube") {
		t.Errorf("view missing disconnect reason:\n%s", view)
	}
}

func TestPanelSubmitFlow(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, activeTabMsg{url: "https://www.youtube.com/watch?v=abc123"})

	// Type and send a question. The typed runes go through the textinput.
	for _, r := range "why" {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.ctrl.Pending() {
		t.Fatal("submit did not enter pending state")
	}
	view := m.View()
	if !strings.Contains(view, "Thinking...") {
		t.Errorf("view missing thinking placeholder:\n%s", view)
	}

	// Typing while pending must be ignored.
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if got := m.input.Value(); got != "" {
		t.Errorf("input accepted text while pending: %q", got)
	}

	m = update(t, m, answerMsg{videoID: "abc123", answer: "Because.", err: nil})

	view = m.View()
	if strings.Contains(view, "Thinking...") {
		t.Errorf("placeholder not removed:\n%s", view)
	}
	if !strings.Contains(view, "Because.") {
		t.Errorf("answer not rendered:\n%s", view)
	}
	if !m.ctrl.CanSubmit() {
		t.Error("input not re-enabled after answer")
	}
}

func TestPanelDropsStaleAnswer(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, activeTabMsg{url: "https://www.youtube.com/watch?v=abc123"})

	for _, r := range "hm" {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// Navigate away mid-flight, then the old answer arrives.
	m = update(t, m, activeTabMsg{url: "https://www.youtube.com/watch?v=xyz789"})
	m = update(t, m, answerMsg{videoID: "abc123", answer: "stale", err: nil})

	if view := m.View(); strings.Contains(view, "stale") {
		t.Errorf("stale answer rendered:\n%s", view)
	}
	if !m.ctrl.CanSubmit() {
		t.Error("input not re-enabled after stale answer")
	}
}
