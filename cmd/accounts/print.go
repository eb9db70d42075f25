package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"wallet-account-picker/internal/account"
	"wallet-account-picker/internal/config"
	"wallet-account-picker/internal/i18n"
	"wallet-account-picker/internal/tui"
)

var (
	colorLabel  = color.New(color.Bold)
	colorAction = color.New(color.FgCyan)
	colorActive = color.New(color.FgGreen, color.Bold)
	colorBadge  = color.New(color.FgHiBlack)
	colorError  = color.New(color.FgRed)
	colorFaint  = color.New(color.Faint)
)

type rowSource interface {
	Records() []account.Record
	Snapshot() account.Snapshot
}

// printAccounts writes one line per account, with the same affordances the TUI shows
func printAccounts(w io.Writer, src rowSource, cfg *config.Manager) {
	records := src.Records()
	snap := src.Snapshot()

	fmt.Fprintf(w, "--- %d accounts ---\n", len(records))
	for i, rec := range records {
		fmt.Fprintln(w, formatRow(tui.Row{
			Item:                    rec,
			Ticker:                  cfg.Ticker(),
			Disabled:                cfg.IsDisabled(rec.Address),
			Index:                   i,
			UpdatedBalanceFromStore: tui.Bind(rec, snap),
		}))
	}
}

func formatRow(r tui.Row) string {
	a := r.Affordances()

	parts := []string{
		colorLabel.Sprint(account.Label(r.Item)),
		account.ShortAddress(r.Item.Address),
		r.BalanceText(),
	}
	if a.BalanceError {
		parts = append(parts, colorError.Sprint(r.Item.BalanceError))
	}
	if a.Imported {
		parts = append(parts, colorBadge.Sprint("["+i18n.Strings(i18n.KeyImported)+"]"))
	}
	if a.Connect {
		parts = append(parts, colorAction.Sprint(i18n.Strings(i18n.KeyConnect)))
	}
	if a.Active {
		parts = append(parts, colorActive.Sprint(i18n.Strings(i18n.KeyActive)))
	}
	if a.Switch {
		parts = append(parts, colorAction.Sprint(i18n.Strings(i18n.KeySwitch)))
	}
	if a.Revoke {
		parts = append(parts, colorAction.Sprint(i18n.Strings(i18n.KeyRevoke)))
	}

	line := strings.Join(parts, "  ")
	if r.Disabled {
		return colorFaint.Sprint(line)
	}
	return line
}
