package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"wallet-account-picker/internal/account"
	"wallet-account-picker/internal/config"
	"wallet-account-picker/internal/i18n"
)

var (
	ColorBg        = lipgloss.Color("#1a1b26")
	ColorBorder    = lipgloss.Color("#3b4261")
	ColorText      = lipgloss.Color("#c0caf5")
	ColorSecondary = lipgloss.Color("#787c99")
	ColorActive    = lipgloss.Color("#7aa2f7")
	ColorAccent    = lipgloss.Color("#bb9af7")
	ColorBadge     = lipgloss.Color("#9aa5ce")
	ColorSuccess   = lipgloss.Color("#9ece6a")
	ColorError     = lipgloss.Color("#f7768e")

	StyleHeader   = lipgloss.NewStyle().Bold(true).Foreground(ColorActive)
	StyleKey      = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	StyleFooter   = lipgloss.NewStyle().Foreground(ColorText)
	StyleModal    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(ColorBorder).Padding(1, 2)
	StyleHelpText = lipgloss.NewStyle().Foreground(ColorAccent).Italic(true)

	StyleRowLabel     = lipgloss.NewStyle().Foreground(ColorText)
	StyleBalance      = lipgloss.NewStyle().Foreground(ColorSecondary)
	StyleBalanceError = lipgloss.NewStyle().Foreground(ColorError).MarginLeft(1)
	StyleBadge        = lipgloss.NewStyle().Foreground(ColorBadge).Bold(true).Border(lipgloss.RoundedBorder(), false, true).BorderForeground(ColorBadge)
	StyleAction       = lipgloss.NewStyle().Foreground(ColorActive).Underline(true)
	StyleActiveTag    = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
)

func RenderHotKey(k, d string) string {
	return StyleKey.Render("["+k+"]") + d
}

type Screen string

const (
	ScreenAccounts Screen = "accounts"
	ScreenLogs     Screen = "logs"
	ScreenHelp     Screen = "help"
)

// Global Keys
type KeyMap struct {
	Up, Down, Escape         key.Binding
	Connect, Revoke, Options key.Binding
	Logs, Help, Theme, Quit  key.Binding
}

var keys = KeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Escape:  key.NewBinding(key.WithKeys("esc")),
	Connect: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "connect account")),
	Revoke:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "revoke account")),
	Options: key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o/enter", "account options")),
	Logs:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "logs")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle theme")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the account picker
type Model struct {
	Config *config.Manager

	// Background state, replaced wholesale by StateMsg
	Records   []account.Record
	Snapshot  account.Snapshot
	UpdatedAt time.Time

	// Navigation
	CurrentScreen  Screen
	PreviousScreen Screen
	Width, Height  int
	Cursor         int
	Offset         int

	Header   HeaderComponent
	Footer   FooterComponent
	LogsView LogsView
	Status   string
	Flash    Flash

	// Callbacks
	OnConnect   func(index int)
	OnRevoke    func(index int)
	OnLongPress func(address string, isImported bool, index int)
}

func NewModel(cfg *config.Manager) Model {
	ui := cfg.GetUI()
	SetTheme(ui.Theme)
	i18n.SetLocale(ui.Locale)

	return Model{
		Config:        cfg,
		Snapshot:      account.Snapshot{Accounts: map[string]account.Info{}},
		Header:        HeaderComponent{},
		LogsView:      NewLogsView(),
		CurrentScreen: ScreenAccounts,
	}
}

func (m *Model) SetCallbacks(connect func(int), revoke func(int), longPress func(string, bool, int)) {
	m.OnConnect = connect
	m.OnRevoke = revoke
	m.OnLongPress = longPress
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("Accounts"),
		m.tick(),
	)
}

func (m Model) tick() tea.Cmd {
	rate := m.Config.GetRefreshRate()
	if rate <= 0 {
		rate = 500 * time.Millisecond
	}
	return tea.Tick(rate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Messages
type TickMsg time.Time
type LogMsg struct{ Lines []string }

// ConfigMsg carries reloaded UI settings; theme and locale change only here
type ConfigMsg struct{ UI config.UIConfig }

// StateMsg carries a fresh read of the background state
type StateMsg struct {
	Records   []account.Record
	Snapshot  account.Snapshot
	UpdatedAt time.Time
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleGlobalInput(msg)
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.clampCursor()
	case TickMsg:
		m.Header.CurrentTime = time.Time(msg)
		return m, m.tick()
	case StateMsg:
		m.Records = msg.Records
		m.Snapshot = msg.Snapshot
		m.UpdatedAt = msg.UpdatedAt
		m.clampCursor()
	case ConfigMsg:
		SetTheme(msg.UI.Theme)
		i18n.SetLocale(msg.UI.Locale)
	case AnimationTickMsg:
		if m.Flash.Tick() {
			return m, AnimationTickCmd()
		}
	case LogMsg:
		m.LogsView.Add(msg.Lines)
	}

	return m, nil
}

func (m Model) handleGlobalInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}

	switch m.CurrentScreen {
	case ScreenHelp:
		if key.Matches(msg, keys.Escape) || key.Matches(msg, keys.Help) {
			m.CurrentScreen = m.PreviousScreen
			if m.CurrentScreen == "" || m.CurrentScreen == ScreenHelp {
				m.CurrentScreen = ScreenAccounts
			}
			m.PreviousScreen = ScreenAccounts
		}
		return m, nil
	case ScreenLogs:
		switch {
		case key.Matches(msg, keys.Help):
			m.PreviousScreen = ScreenLogs
			m.CurrentScreen = ScreenHelp
		case key.Matches(msg, keys.Escape):
			m.CurrentScreen = ScreenAccounts
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Help):
		m.PreviousScreen = m.CurrentScreen
		m.CurrentScreen = ScreenHelp
	case key.Matches(msg, keys.Logs):
		m.PreviousScreen = m.CurrentScreen
		m.CurrentScreen = ScreenLogs
	case key.Matches(msg, keys.Theme):
		CycleTheme()
		if err := m.Config.Update(func(c *config.Config) { c.UI.Theme = CurrentThemeIndex }); err != nil {
			m.Status = "theme not saved: " + err.Error()
		}
	case key.Matches(msg, keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
		m.clampCursor()
	case key.Matches(msg, keys.Down):
		if m.Cursor < len(m.Records)-1 {
			m.Cursor++
		}
		m.clampCursor()
	case key.Matches(msg, keys.Connect):
		if row, ok := m.focusedRow(); ok && row.Affordances().Connect {
			row.Connect()
			m.Flash.Trigger(m.Cursor, FlashConnect)
			return m, AnimationTickCmd()
		}
	case key.Matches(msg, keys.Revoke):
		if row, ok := m.focusedRow(); ok && row.Affordances().Revoke {
			row.Revoke()
			m.Flash.Trigger(m.Cursor, FlashRevoke)
			return m, AnimationTickCmd()
		}
	case key.Matches(msg, keys.Options):
		if row, ok := m.focusedRow(); ok {
			row.LongPress()
			m.Status = "options: " + account.ShortAddress(row.Item.Address)
			m.Flash.Trigger(m.Cursor, FlashLongPress)
			return m, AnimationTickCmd()
		}
	}

	return m, nil
}

// Row builds the row for list position i
func (m Model) Row(i int) Row {
	rec := m.Records[i]
	return Row{
		Item:                    rec,
		Ticker:                  m.Config.Ticker(),
		Disabled:                m.Config.IsDisabled(rec.Address),
		Index:                   i,
		OnConnect:               m.OnConnect,
		OnRevoke:                m.OnRevoke,
		OnLongPress:             m.OnLongPress,
		UpdatedBalanceFromStore: Bind(rec, m.Snapshot),
		IdenticonSize:           m.Config.GetUI().IdenticonSize,
		Focused:                 i == m.Cursor,
		Pressed:                 m.pressed(i),
	}
}

func (m Model) pressed(i int) string {
	for _, target := range []string{FlashConnect, FlashRevoke, FlashLongPress} {
		if m.Flash.On(i, target) {
			return target
		}
	}
	return ""
}

func (m Model) focusedRow() (Row, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Records) {
		return Row{}, false
	}
	return m.Row(m.Cursor), true
}

func (m *Model) clampCursor() {
	if m.Cursor >= len(m.Records) {
		m.Cursor = len(m.Records) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}

	visible := m.visibleRows()
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+visible {
		m.Offset = m.Cursor - visible + 1
	}
	if m.Offset < 0 {
		m.Offset = 0
	}
}

func (m Model) visibleRows() int {
	if len(m.Records) == 0 {
		return 1
	}
	// header + footer + status line
	h := (m.Height - 3) / m.Row(0).Height()
	return maxi(h, 1)
}

// --- VIEW RENDERING ---

func (m Model) View() string {
	if m.Width == 0 {
		return "Loading..."
	}

	switch m.CurrentScreen {
	case ScreenLogs:
		return m.LogsView.Render(m.Width, m.Height)
	case ScreenHelp:
		return m.overlay(m.renderAccounts(), m.renderHelp())
	default:
		return m.renderAccounts()
	}
}

func (m Model) renderAccounts() string {
	header := m.Header.Render(m.Width, m.selectedLabel(), len(m.Records), m.UpdatedAt)

	var rows []string
	if len(m.Records) == 0 {
		rows = append(rows, StyleHelpText.Render("No accounts yet. Waiting for the wallet state feed..."))
	}
	end := mini(m.Offset+m.visibleRows(), len(m.Records))
	for i := m.Offset; i < end; i++ {
		rows = append(rows, m.Row(i).View(m.Width))
	}
	if end < len(m.Records) {
		rows = append(rows, lipgloss.NewStyle().Foreground(ColorSecondary).Render(fmt.Sprintf("... %d more ↓", len(m.Records)-end)))
	}

	status := lipgloss.NewStyle().Foreground(ColorSecondary).Render(truncate(m.Status, m.Width))
	m.Footer.Screen = string(m.CurrentScreen)
	return lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(rows, "\n"), status, m.Footer.Render(m.Width))
}

func (m Model) selectedLabel() string {
	for _, r := range m.Records {
		if r.IsSelected {
			return account.Label(r)
		}
	}
	return account.ShortAddress(m.Snapshot.SelectedAddress)
}

func (m Model) renderHelp() string {
	bindings := []key.Binding{keys.Up, keys.Down, keys.Connect, keys.Revoke, keys.Options, keys.Theme, keys.Logs, keys.Help, keys.Quit}
	var lines []string
	lines = append(lines, "KEYS", "")
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("%-10s %s", StyleKey.Render(h.Key), h.Desc))
	}
	lines = append(lines, "", StyleHelpText.Render("Theme: "+GetTheme().Name))
	return StyleModal.Render(strings.Join(lines, "\n"))
}

func (m Model) overlay(base, modal string) string {
	bLines := strings.Split(base, "\n")
	mLines := strings.Split(modal, "\n")

	y := (len(bLines) - len(mLines)) / 2
	if y < 0 {
		y = 0
	}

	for i, line := range mLines {
		if y+i < len(bLines) {
			bLines[y+i] = line
		} else {
			bLines = append(bLines, line)
		}
	}
	return strings.Join(bLines, "\n")
}

// --- COMPONENTS ---

// 1. HEADER
type HeaderComponent struct {
	CurrentTime time.Time
}

func (h HeaderComponent) Render(w int, selected string, count int, updated time.Time) string {
	status := lipgloss.NewStyle().Foreground(ColorSuccess).Render("● " + selected)
	accounts := fmt.Sprintf("Accounts: %d", count)

	fresh := "no state yet"
	if !updated.IsZero() {
		fresh = "updated " + humanize.Time(updated)
	}

	parts := []string{status, accounts, fresh}
	if !h.CurrentTime.IsZero() {
		parts = append(parts, h.CurrentTime.Format("15:04:05"))
	}
	return StyleHeader.Width(w).Render(strings.Join(parts, " │ "))
}

// 2. FOOTER
type FooterComponent struct{ Screen string }

func (f FooterComponent) Render(w int) string {
	var s string
	switch f.Screen {
	case string(ScreenAccounts):
		s = RenderHotKey("C", "onnect") + " " + RenderHotKey("R", "evoke") + " " + RenderHotKey("O", "ptions") + " " + RenderHotKey("T", "heme") + " " + RenderHotKey("L", "og") + " " + RenderHotKey("?", "Help") + " " + RenderHotKey("Q", "uit")
	case string(ScreenLogs), string(ScreenHelp):
		s = RenderHotKey("Esc", "Back")
	default:
		s = RenderHotKey("Q", "uit")
	}
	return StyleFooter.Width(w).Render(s)
}

// 3. LOGS VIEW
type LogsView struct{ Lines []string }

func NewLogsView() LogsView { return LogsView{Lines: []string{}} }
func (lv *LogsView) Add(l []string) {
	lv.Lines = append(lv.Lines, l...)
	if len(lv.Lines) > 500 {
		lv.Lines = lv.Lines[len(lv.Lines)-500:]
	}
}
func (lv LogsView) GetLastLine() string {
	if len(lv.Lines) == 0 {
		return ""
	}
	return lv.Lines[len(lv.Lines)-1]
}
func (lv LogsView) Render(w, h int) string {
	header := StyleHeader.Width(w).Render("SYSTEM LOGS")
	show := lv.Lines
	if len(show) > h-4 && h > 4 {
		show = show[len(show)-(h-4):]
	}
	footer := FooterComponent{Screen: string(ScreenLogs)}.Render(w)
	return lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(show, "\n"), footer)
}

// --- HELPERS ---
func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}
func mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}
func truncate(s string, n int) string { return runewidth.Truncate(s, n, "") }

// Send Funcs
func SendState(p *tea.Program, records []account.Record, snap account.Snapshot, at time.Time) {
	p.Send(StateMsg{Records: records, Snapshot: snap, UpdatedAt: at})
}
func SendLogs(p *tea.Program, l []string) { p.Send(LogMsg{l}) }
func SendConfig(p *tea.Program, ui config.UIConfig) { p.Send(ConfigMsg{UI: ui}) }
