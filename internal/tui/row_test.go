package tui

import (
	"strings"
	"testing"

	"wallet-account-picker/internal/account"
)

func strPtr(s string) *string { return &s }

func oneEthSnapshot(addr string) account.Snapshot {
	return account.Snapshot{
		SelectedAddress: addr,
		Accounts:        map[string]account.Info{addr: {Balance: strPtr("0xde0b6b3a7640000")}},
	}
}

func TestRowSelectedConnectedUsesStoreBalance(t *testing.T) {
	rec := account.Record{Address: "0xabc", Name: "Account 1", Balance: "0x0", IsSelected: true, IsConnected: true}
	r := Row{Item: rec, Index: 0, UpdatedBalanceFromStore: Bind(rec, oneEthSnapshot("0xabc"))}

	if got := r.BalanceText(); got != "1 ETH" {
		t.Errorf("expected balance '1 ETH', got %q", got)
	}

	a := r.Affordances()
	if !a.Active {
		t.Error("expected Active indicator")
	}
	if !a.Revoke {
		t.Error("expected Revoke action")
	}
	if a.Connect {
		t.Error("Connect must be hidden for a connected account")
	}
	if a.Switch {
		t.Error("Switch must be hidden for the selected account")
	}

	view := r.View(80)
	for _, want := range []string{"Account 1", "1 ETH", "Active", "Revoke"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Connect") {
		t.Errorf("view should not show Connect:\n%s", view)
	}
}

func TestRowOwnBalanceWins(t *testing.T) {
	rec := account.Record{Address: "0xabc", Name: "Account 1", Balance: "0x1bc16d674ec80000", IsSelected: true}
	got := Bind(rec, oneEthSnapshot("0xabc"))
	if got != "0x1bc16d674ec80000" {
		t.Errorf("record balance should win when not empty, got %q", got)
	}

	r := Row{Item: rec, UpdatedBalanceFromStore: got}
	if r.BalanceText() != "2 ETH" {
		t.Errorf("expected 2 ETH, got %q", r.BalanceText())
	}
}

func TestRowStoreIgnoredForOtherAccounts(t *testing.T) {
	rec := account.Record{Address: "0xdef", Name: "Account 2", Balance: "0x0"}
	if got := Bind(rec, oneEthSnapshot("0xabc")); got != "0x0" {
		t.Errorf("unselected account should keep its own balance, got %q", got)
	}
}

func TestRowImportedBadge(t *testing.T) {
	for _, imported := range []bool{true, false} {
		r := Row{Item: account.Record{Address: "0xabc", Name: "Account 1", Balance: "0x0", IsImported: imported}}
		if r.Affordances().Imported != imported {
			t.Errorf("imported=%v: badge visibility mismatch", imported)
		}
		if strings.Contains(r.View(80), "IMPORTED") != imported {
			t.Errorf("imported=%v: badge text mismatch", imported)
		}
	}
}

func TestRowNotConnected(t *testing.T) {
	r := Row{Item: account.Record{Address: "0xabc", Name: "Account 3", Balance: "0x0"}, Index: 1}
	a := r.Affordances()
	if !a.Connect {
		t.Error("expected Connect for a disconnected account")
	}
	if a.Revoke || a.Active || a.Switch {
		t.Errorf("unexpected affordances for a disconnected account: %+v", a)
	}
}

func TestRowConnectedNotSelectedOffersSwitch(t *testing.T) {
	r := Row{Item: account.Record{Address: "0xabc", Name: "Account 3", Balance: "0x0", IsConnected: true}, Index: 2}
	a := r.Affordances()
	if !a.Switch || !a.Revoke {
		t.Errorf("expected Switch and Revoke, got %+v", a)
	}
	if a.Active {
		t.Error("Active requires selection outside index 1")
	}
	if !strings.Contains(r.View(100), "Switch to this account") {
		t.Error("switch label not rendered")
	}
}

func TestRowActiveAtIndexOne(t *testing.T) {
	r := Row{Item: account.Record{Address: "0xabc", Name: "Account 2", Balance: "0x0", IsConnected: true}, Index: 1}
	if !r.Affordances().Active {
		t.Error("a connected account at index 1 shows Active")
	}
}

func TestRowDisabledIsFaintButInteractive(t *testing.T) {
	var connected, revoked int = -1, -1
	var pressed string
	r := Row{
		Item:        account.Record{Address: "0xabc", Name: "Account 1", Balance: "0x0", Index: 4},
		Disabled:    true,
		OnConnect:   func(i int) { connected = i },
		OnRevoke:    func(i int) { revoked = i },
		OnLongPress: func(addr string, imported bool, i int) { pressed = addr },
	}

	if !r.ContainerStyle(80).GetFaint() {
		t.Error("disabled row should render faint")
	}
	if (Row{}).ContainerStyle(80).GetFaint() {
		t.Error("enabled row should not be faint")
	}

	r.Connect()
	r.Revoke()
	r.LongPress()
	if connected != 4 || revoked != 4 {
		t.Errorf("callbacks should receive the record index 4, got connect=%d revoke=%d", connected, revoked)
	}
	if pressed != "0xabc" {
		t.Errorf("long press got address %q", pressed)
	}
}

func TestRowNilCallbacks(t *testing.T) {
	r := Row{Item: account.Record{Address: "0xabc", Name: "Account 1", Balance: "0x0"}}
	r.Connect()
	r.Revoke()
	r.LongPress()
}

func TestRowLongPressArgs(t *testing.T) {
	var gotAddr string
	var gotImported bool
	var gotIndex int
	r := Row{
		Item: account.Record{Address: "0xabc", Name: "Account 7", Balance: "0x0", IsImported: true, Index: 6},
		OnLongPress: func(addr string, imported bool, i int) {
			gotAddr, gotImported, gotIndex = addr, imported, i
		},
	}
	r.LongPress()
	if gotAddr != "0xabc" || !gotImported || gotIndex != 6 {
		t.Errorf("unexpected long press args: %q %v %d", gotAddr, gotImported, gotIndex)
	}
}

func TestRowBalanceError(t *testing.T) {
	r := Row{Item: account.Record{Address: "0xabc", Name: "Account 1", Balance: "0x0", BalanceError: "rpc timeout"}}
	if !r.Affordances().BalanceError {
		t.Fatal("expected balance error affordance")
	}
	view := r.View(80)
	if !strings.Contains(view, "0 ETH") || !strings.Contains(view, "rpc timeout") {
		t.Errorf("balance and error should both render:\n%s", view)
	}
}

func TestRowENSLabel(t *testing.T) {
	r := Row{Item: account.Record{Address: "0xabc", Name: "Account 2", ENS: "vitalik.eth", Balance: "0x0"}}
	if !strings.Contains(r.View(80), "vitalik.eth") {
		t.Error("ENS name should replace the default name")
	}

	r.Item.Name = "Savings"
	view := r.View(80)
	if !strings.Contains(view, "Savings") || strings.Contains(view, "vitalik.eth") {
		t.Errorf("custom names win over ENS:\n%s", view)
	}
}

func TestRowTicker(t *testing.T) {
	r := Row{Item: account.Record{Address: "0xabc", Name: "Account 1", Balance: "0xde0b6b3a7640000"}, Ticker: "MATIC"}
	r.UpdatedBalanceFromStore = Bind(r.Item, account.Snapshot{})
	if r.BalanceText() != "1 MATIC" {
		t.Errorf("expected '1 MATIC', got %q", r.BalanceText())
	}
}
