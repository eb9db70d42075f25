package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wallet-account-picker/internal/account"
	"wallet-account-picker/internal/i18n"
	"wallet-account-picker/internal/identicon"
	"wallet-account-picker/internal/units"
)

// Row renders one account in the picker.
// It holds no state of its own; a host rebuilds it on every change.
type Row struct {
	Item     account.Record
	Ticker   string
	Disabled bool
	Index    int

	// Optional; each is called only when set
	OnConnect   func(index int)
	OnRevoke    func(index int)
	OnLongPress func(address string, isImported bool, index int)

	// Balance to display, resolved by Bind
	UpdatedBalanceFromStore string

	IdenticonSize int
	Focused       bool
	Pressed       string // flash target, see animation.go
}

// Affordances lists which parts of a row are visible
type Affordances struct {
	Imported     bool
	BalanceError bool
	Connect      bool
	Active       bool
	Switch       bool
	Revoke       bool
}

// Bind resolves the balance a row displays from the background state
func Bind(item account.Record, snap account.Snapshot) string {
	return account.EffectiveBalance(item, snap)
}

// Affordances computes visibility from the record and the Index prop
func (r Row) Affordances() Affordances {
	it := r.Item
	return Affordances{
		Imported:     it.IsImported,
		BalanceError: it.BalanceError != "",
		Connect:      !it.IsConnected,
		Active:       account.IsActive(it, r.Index),
		Switch:       !it.IsSelected && it.IsConnected,
		Revoke:       it.IsConnected,
	}
}

// Connect fires OnConnect with the record's index
func (r Row) Connect() {
	if r.OnConnect != nil {
		r.OnConnect(r.Item.Index)
	}
}

// Revoke fires OnRevoke with the record's index
func (r Row) Revoke() {
	if r.OnRevoke != nil {
		r.OnRevoke(r.Item.Index)
	}
}

// LongPress fires OnLongPress with the record's address, imported flag and index
func (r Row) LongPress() {
	if r.OnLongPress != nil {
		r.OnLongPress(r.Item.Address, r.Item.IsImported, r.Item.Index)
	}
}

// BalanceText is the balance line without styling
func (r Row) BalanceText() string {
	return units.RenderFromWei(r.UpdatedBalanceFromStore) + " " + units.Ticker(r.Ticker)
}

// ContainerStyle is the outer style; disabled rows are faint
func (r Row) ContainerStyle(width int) lipgloss.Style {
	s := lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(ColorBorder)
	if r.Focused {
		s = s.BorderForeground(ColorActive)
	}
	if r.Disabled {
		s = s.Faint(true)
	}
	return s
}

func (r Row) actionStyle(target string) lipgloss.Style {
	if r.Pressed == target {
		return StyleAction.Reverse(true)
	}
	return StyleAction
}

// Height is the number of lines View produces
func (r Row) Height() int {
	return maxi(identicon.New(r.Item.Address, r.IdenticonSize).Lines(), 2) + 1
}

// View renders the row at width
func (r Row) View(width int) string {
	a := r.Affordances()
	ic := identicon.New(r.Item.Address, r.IdenticonSize)

	var right []string
	if a.Imported {
		right = append(right, StyleBadge.Render(i18n.Strings(i18n.KeyImported)))
	}
	if a.Connect {
		right = append(right, r.actionStyle(FlashConnect).Render(i18n.Strings(i18n.KeyConnect)))
	}
	if a.Active {
		right = append(right, StyleActiveTag.Render(i18n.Strings(i18n.KeyActive)))
	}
	if a.Switch {
		right = append(right, StyleAction.Render(i18n.Strings(i18n.KeySwitch)))
	}
	if a.Revoke {
		right = append(right, r.actionStyle(FlashRevoke).Render(i18n.Strings(i18n.KeyRevoke)))
	}
	actions := strings.Join(right, " ")

	mainWidth := width - ic.Size - 2 - lipgloss.Width(actions) - 1
	if mainWidth < 8 {
		mainWidth = 8
	}

	labelStyle := StyleRowLabel
	if r.Focused {
		labelStyle = labelStyle.Bold(true)
	}
	if r.Pressed == FlashLongPress {
		labelStyle = labelStyle.Reverse(true)
	}
	label := labelStyle.Render(truncate(account.Label(r.Item), mainWidth))

	balance := StyleBalance.Render(r.BalanceText())
	if a.BalanceError {
		balance = lipgloss.JoinHorizontal(lipgloss.Top, balance, StyleBalanceError.Render(r.Item.BalanceError))
	}

	main := lipgloss.NewStyle().Width(mainWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, label, balance),
	)

	row := lipgloss.JoinHorizontal(lipgloss.Top, ic.Render(), "  ", main, " ", actions)
	return r.ContainerStyle(width).Render(row)
}
