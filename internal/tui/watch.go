package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/willcgage/wirelessboard/internal/registry"
)

const (
	// pollPeriod matches the server's push cadence for the HTTP fallback.
	pollPeriod = 2 * time.Second

	// ageRefreshPeriod re-renders receiver ages between pushes.
	ageRefreshPeriod = time.Second

	// chromeHeight is the vertical space around the table: frame borders,
	// header row, status line and footer help.
	chromeHeight = 12
)

// Messages for async operations
type connectedMsg struct{ feed Feed }
type connectFailedMsg struct{ err error }
type feedClosedMsg struct{ err error }
type updateMsg struct{ devices []registry.Device }
type snapshotMsg struct {
	devices []registry.Device
	err     error
}
type pollTickMsg time.Time
type ageTickMsg time.Time

// watchKeyMap defines key bindings for the watch dashboard
type watchKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Model is the watch dashboard: a live table of discovered receivers fed
// by the server's push channel, falling back to HTTP polling when the
// subscription cannot be established or drops.
type Model struct {
	ctx        context.Context
	transport  Transport
	serverAddr string

	// Connection state
	connecting bool
	live       bool
	polling    bool
	lastErr    error
	feed       Feed

	// Receiver state
	devices    []registry.Device
	receivedAt time.Time

	// UI state
	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    watchKeyMap
	width   int
	height  int
}

// New creates a watch dashboard model backed by the given transport.
// serverAddr is shown in the header so the user can see where the data
// comes from.
func New(ctx context.Context, transport Transport, serverAddr string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	tbl := table.New(
		table.WithColumns(watchColumns()),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(HighlightColor).
		Bold(true)
	tbl.SetStyles(styles)

	return Model{
		ctx:        ctx,
		transport:  transport,
		serverAddr: serverAddr,
		connecting: true,
		table:      tbl,
		spinner:    s,
		help:       help.New(),
		keys:       newWatchKeyMap(),
	}
}

// Init starts the subscription attempt, the spinner, and the age ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.connect(),
		ageTick(),
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(MinTableHeight, msg.Height-chromeHeight))

	case connectedMsg:
		m.connecting = false
		m.live = true
		m.feed = msg.feed
		m.lastErr = nil
		return m, waitForUpdate(msg.feed)

	case connectFailedMsg:
		m.connecting = false
		m.polling = true
		m.lastErr = msg.err
		return m, tea.Batch(m.fetchSnapshot(), pollTick())

	case feedClosedMsg:
		m.live = false
		m.polling = true
		m.feed = nil
		m.lastErr = msg.err
		return m, tea.Batch(m.fetchSnapshot(), pollTick())

	case updateMsg:
		m.setDevices(msg.devices)
		return m, waitForUpdate(m.feed)

	case snapshotMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		m.lastErr = nil
		m.setDevices(msg.devices)

	case pollTickMsg:
		if !m.polling {
			return m, nil
		}
		return m, tea.Batch(m.fetchSnapshot(), pollTick())

	case ageTickMsg:
		m.refreshRows()
		return m, ageTick()

	case spinner.TickMsg:
		if !m.connecting {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// updateKeys handles keyboard input
func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.feed != nil {
			_ = m.feed.Close()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		if m.connecting {
			return m, nil
		}
		return m, m.fetchSnapshot()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	// Let the table handle up/down navigation
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the dashboard
func (m Model) View() string {
	width, height := m.width, m.height
	if width == 0 {
		width = DefaultTerminalWidth
	}
	if height == 0 {
		height = DefaultTerminalHeight
	}

	var content string
	if m.connecting {
		content = m.renderConnecting(width)
	} else {
		content = m.renderDashboard()
	}

	return RenderFrame(content, m.help.View(m.keys), m.serverAddr, width, height)
}

// renderConnecting renders the centered connection progress display
func (m Model) renderConnecting(width int) string {
	title := fmt.Sprintf("%s CONNECTING", m.spinner.View())
	subtitle := fmt.Sprintf("Waiting for the dashboard at %s...", m.serverAddr)

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(title),
		"",
		SubtitleStyle.Render(subtitle),
		"",
	)

	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderDashboard renders the status line plus the receiver table, or the
// empty-state hint when nothing has been discovered yet
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	if len(m.devices) == 0 {
		b.WriteString("  ")
		b.WriteString(WarningTextStyle.Render("No receivers discovered yet"))
		b.WriteString("\n\n")
		b.WriteString("  The server keeps listening for SLP announcements and probing\n")
		b.WriteString("  the configured subnets; results appear here as they come in.\n")
	} else {
		b.WriteString(m.table.View())
	}

	return b.String()
}

// statusLine summarizes receiver count, connection mode and data freshness
func (m Model) statusLine() string {
	count := fmt.Sprintf("%d receivers", len(m.devices))
	if len(m.devices) == 1 {
		count = "1 receiver"
	}

	var mode string
	switch {
	case m.live:
		mode = LiveStyle.Render("live")
	case m.polling:
		mode = PollingStyle.Render(fmt.Sprintf("polling every %s", pollPeriod))
	default:
		mode = SubtitleStyle.Render("connecting")
	}

	line := count + " • " + mode
	if !m.receivedAt.IsZero() {
		line += " • " + SubtitleStyle.Render(fmt.Sprintf("updated %s ago", time.Since(m.receivedAt).Round(time.Second)))
	}
	if m.lastErr != nil {
		line += " • " + ErrorTextStyle.Render(m.lastErr.Error())
	}

	return line
}

// setDevices replaces the receiver list and rebuilds the table
func (m *Model) setDevices(devices []registry.Device) {
	m.devices = devices
	m.receivedAt = time.Now()
	m.refreshRows()
}

// refreshRows rebuilds table rows so displayed ages keep advancing
// between updates
func (m *Model) refreshRows() {
	var sinceUpdate time.Duration
	if !m.receivedAt.IsZero() {
		sinceUpdate = time.Since(m.receivedAt)
	}

	rows := deviceRows(m.devices, sinceUpdate)
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

// connect is a command that opens the push subscription
func (m Model) connect() tea.Cmd {
	ctx, transport := m.ctx, m.transport
	return func() tea.Msg {
		feed, err := transport.Subscribe(ctx)
		if err != nil {
			return connectFailedMsg{err: err}
		}
		return connectedMsg{feed: feed}
	}
}

// fetchSnapshot is a command that fetches the receiver list once over HTTP
func (m Model) fetchSnapshot() tea.Cmd {
	ctx, transport := m.ctx, m.transport
	return func() tea.Msg {
		devices, err := transport.Snapshot(ctx)
		return snapshotMsg{devices: devices, err: err}
	}
}

// waitForUpdate is a command that blocks on the next push from the feed
func waitForUpdate(feed Feed) tea.Cmd {
	return func() tea.Msg {
		devices, ok := <-feed.Updates()
		if !ok {
			return feedClosedMsg{err: feed.Err()}
		}
		return updateMsg{devices: devices}
	}
}

func pollTick() tea.Cmd {
	return tea.Tick(pollPeriod, func(t time.Time) tea.Msg { return pollTickMsg(t) })
}

func ageTick() tea.Cmd {
	return tea.Tick(ageRefreshPeriod, func(t time.Time) tea.Msg { return ageTickMsg(t) })
}

func newWatchKeyMap() watchKeyMap {
	return watchKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func watchColumns() []table.Column {
	return []table.Column{
		{Title: "Slot", Width: 4},
		{Title: "IP", Width: 15},
		{Title: "Type", Width: 8},
		{Title: "Ch", Width: 3},
		{Title: "Model", Width: 14},
		{Title: "Band", Width: 6},
		{Title: "Source", Width: 8},
		{Title: "Age", Width: 8},
	}
}

// deviceRows converts receivers to table rows. sinceUpdate is added to
// each server-reported age so rows keep aging between pushes.
func deviceRows(devices []registry.Device, sinceUpdate time.Duration) []table.Row {
	rows := make([]table.Row, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, table.Row{
			strconv.Itoa(d.Slot),
			d.IP,
			d.Type,
			strconv.Itoa(d.Channels),
			valueOrDash(d.Model),
			valueOrDash(d.Band),
			d.Source,
			formatAge(d.Age + sinceUpdate.Seconds()),
		})
	}
	return rows
}

// formatAge renders an age in seconds as a compact duration like "45s"
// or "2m30s"
func formatAge(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
