package tui

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mvens/tubefrage/internal/applog"
	"github.com/mvens/tubefrage/internal/bridge"
	"github.com/mvens/tubefrage/internal/firefox"
	"github.com/mvens/tubefrage/internal/meta"
	"github.com/mvens/tubefrage/internal/qa"
	"github.com/mvens/tubefrage/internal/session"
	"github.com/mvens/tubefrage/internal/storage"
	"github.com/mvens/tubefrage/internal/types"
)

const pollInterval = 2 * time.Second

// --- Messages ---

// activeTabMsg carries the active tab's URL from either tab source.
// An empty URL is still meaningful: it reconciles to Disconnected.
type activeTabMsg struct {
	url        string
	fromBridge bool
}

type pollResultMsg struct {
	url string
	err error
}

type bridgeDownMsg struct{}

type answerMsg struct {
	videoID string
	answer  string
	err     error
}

type titleMsg struct {
	videoID string
	title   string
}

// --- Model ---

type Model struct {
	ctrl   *session.Controller
	client *qa.Client
	server *bridge.Server
	db     *sql.DB // nil disables the recents store

	profile    types.Profile
	hasProfile bool

	input textinput.Model
	vp    viewport.Model
	spin  spinner.Model

	title  string // video title once known; falls back to the video ID
	width  int
	height int
	ready  bool
}

// NewModel builds the panel. profile may be the zero value when no Firefox
// profile is usable; the panel then relies on the extension bridge alone.
func NewModel(client *qa.Client, srv *bridge.Server, profile types.Profile, hasProfile bool, db *sql.DB) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about this video..."
	ti.CharLimit = 500
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))

	return Model{
		ctrl:       session.New(),
		client:     client,
		server:     srv,
		db:         db,
		profile:    profile,
		hasProfile: hasProfile,
		input:      ti,
		spin:       sp,
	}
}

// --- Commands ---

func startBridge(srv *bridge.Server) tea.Cmd {
	return func() tea.Msg {
		srv.ListenAndServe(context.Background())
		return bridgeDownMsg{}
	}
}

func listenBridge(srv *bridge.Server) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-srv.Events()
		if !ok {
			return bridgeDownMsg{}
		}
		return activeTabMsg{url: ev.URL, fromBridge: true}
	}
}

func pollActiveTab(profile types.Profile) tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		url, err := firefox.ActiveTabURL(profile.Path)
		return pollResultMsg{url: url, err: err}
	})
}

func ask(client *qa.Client, videoID, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := client.Ask(context.Background(), videoID, question)
		if err != nil {
			applog.Error("chat.request", err, "video", videoID)
		} else {
			applog.Info("chat.answer", "video", videoID, "len", len(answer))
		}
		return answerMsg{videoID: videoID, answer: answer, err: err}
	}
}

func fetchTitle(videoID string) tea.Cmd {
	return func() tea.Msg {
		title, err := meta.Title(meta.WatchURL(videoID))
		if err != nil {
			applog.Error("meta.title", err, "video", videoID)
			return titleMsg{videoID: videoID}
		}
		return titleMsg{videoID: videoID, title: title}
	}
}

func touchRecent(db *sql.DB, videoID, title string) tea.Cmd {
	if db == nil {
		return nil
	}
	return func() tea.Msg {
		if err := storage.TouchRecent(db, videoID, title); err != nil {
			applog.Error("recents.touch", err, "video", videoID)
		}
		return nil
	}
}

func saveTitle(db *sql.DB, videoID, title string) tea.Cmd {
	if db == nil || title == "" {
		return nil
	}
	return func() tea.Msg {
		if err := storage.SetTitle(db, videoID, title); err != nil {
			applog.Error("recents.title", err, "video", videoID)
		}
		return nil
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, listenBridge(m.server)}
	if m.server.Port() != 0 {
		cmds = append(cmds, startBridge(m.server))
	}
	if m.hasProfile {
		// Reconcile once at startup without waiting for the first tick.
		profile := m.profile
		cmds = append(cmds, func() tea.Msg {
			url, err := firefox.ActiveTabURL(profile.Path)
			return pollResultMsg{url: url, err: err}
		})
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := m.height - 3 // status bar, input line, help bar
		if logHeight < 1 {
			logHeight = 1
		}
		if !m.ready {
			m.vp = viewport.New(m.width, logHeight)
			m.ready = true
		} else {
			m.vp.Width = m.width
			m.vp.Height = logHeight
		}
		m.input.Width = m.width - 4
		m.refreshLog(true)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			videoID, ok := m.ctrl.Submit(m.input.Value())
			if !ok {
				return m, nil
			}
			question := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			m.input.Blur()
			m.refreshLog(true)
			return m, tea.Batch(
				ask(m.client, videoID, question),
				touchRecent(m.db, videoID, m.title),
				m.spin.Tick,
			)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
		if m.ctrl.Pending() {
			// Controls are disabled for the duration of the request.
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case activeTabMsg:
		cmds := []tea.Cmd{}
		if msg.fromBridge {
			cmds = append(cmds, listenBridge(m.server))
		}
		if cmd := m.reconcile(msg.url); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case pollResultMsg:
		cmds := []tea.Cmd{}
		if m.hasProfile {
			cmds = append(cmds, pollActiveTab(m.profile))
		}
		if msg.err != nil {
			applog.Error("poll.session", msg.err, "profile", m.profile.Name)
		} else if !m.server.Connected() {
			// The extension sees navigation immediately; only fall back to
			// the session store while no extension is attached.
			if cmd := m.reconcile(msg.url); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case bridgeDownMsg:
		return m, listenBridge(m.server)

	case answerMsg:
		m.ctrl.Resolve(msg.videoID, msg.answer, msg.err)
		if !m.ctrl.Pending() {
			m.input.Focus()
		}
		m.refreshLog(true)
		return m, nil

	case titleMsg:
		var cmd tea.Cmd
		if msg.title != "" {
			if sess := m.ctrl.Session(); sess.Connected() && sess.VideoID == msg.videoID {
				m.title = msg.title
			}
			cmd = saveTitle(m.db, msg.videoID, msg.title)
		}
		return m, cmd

	case spinner.TickMsg:
		if !m.ctrl.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.refreshLog(false)
		return m, cmd
	}

	return m, nil
}

// reconcile feeds a tab URL to the controller and handles the follow-up
// work a video change needs (title lookup, log reset).
func (m *Model) reconcile(url string) tea.Cmd {
	switch m.ctrl.Reconcile(url) {
	case session.Unchanged:
		return nil
	case session.NewVideo:
		m.refreshLog(true)
		sess := m.ctrl.Session()
		m.title = ""
		applog.Info("session.video", "video", sess.VideoID)
		return fetchTitle(sess.VideoID)
	default:
		m.refreshLog(true)
		applog.Info("session.disconnected", "reason", m.ctrl.Session().DisconnectReason)
		return nil
	}
}

// --- View ---

var (
	statusOnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")).Padding(0, 1)
	statusOffStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")).Padding(0, 1)
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	botStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114"))
	errStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	bodyStyle      = lipgloss.NewStyle().PaddingLeft(2)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	promptStyle    = lipgloss.NewStyle().Padding(0, 1)
)

func (m *Model) refreshLog(toBottom bool) {
	if !m.ready {
		return
	}
	m.vp.SetContent(m.renderLog())
	if toBottom {
		m.vp.GotoBottom()
	}
}

func (m *Model) renderLog() string {
	width := m.vp.Width - 4
	if width < 10 {
		width = 10
	}
	body := bodyStyle.Width(width)

	var b strings.Builder
	for _, msg := range m.ctrl.Messages() {
		switch {
		case msg.Sender == types.SenderUser:
			b.WriteString(userStyle.Render("You"))
		case strings.HasPrefix(msg.Text, "Error: "):
			b.WriteString(errStyle.Render("Bot"))
		default:
			b.WriteString(botStyle.Render("Bot"))
		}
		b.WriteByte('\n')
		b.WriteString(body.Render(msg.Text))
		b.WriteString("\n\n")
	}

	if m.ctrl.Pending() {
		b.WriteString(botStyle.Render("Bot"))
		b.WriteByte('\n')
		b.WriteString(body.Render(m.spin.View() + " Thinking..."))
		b.WriteString("\n\n")
	}

	return b.String()
}

func (m Model) statusBar() string {
	sess := m.ctrl.Session()

	var status string
	if sess.Connected() {
		label := m.title
		if label == "" {
			label = sess.VideoID
		}
		status = statusOnStyle.Render("● " + label)
	} else {
		status = statusOffStyle.Render("○ " + sess.DisconnectReason)
	}

	var source string
	if m.server.Connected() {
		source = "live"
	} else if m.hasProfile {
		source = fmt.Sprintf("profile: %s", m.profile.Name)
	} else {
		source = fmt.Sprintf("waiting for extension on :%d", m.server.Port())
	}

	return status + sourceStyle.Render("  "+source)
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Starting panel...\n"
	}

	help := "enter send · pgup/pgdn scroll · ctrl+c quit"
	if m.ctrl.Pending() {
		help = "waiting for answer · ctrl+c quit"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar(),
		m.vp.View(),
		promptStyle.Render(m.input.View()),
		helpStyle.Render(help),
	)
}
