package account

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
)

// EmptyBalance is the sentinel the wallet uses when no balance is known locally
const EmptyBalance = "0x0"

var (
	// ErrMissingAddress is returned for a record without an address
	ErrMissingAddress = errors.New("account record has no address")
	// ErrInvalidAddress is returned for an address that is not 20 bytes of hex
	ErrInvalidAddress = errors.New("invalid account address")
)

var defaultNamePattern = regexp.MustCompile(`^Account \d*$`)

// Record is one account as the wallet's keyring lists it.
// The picker only ever reads it.
type Record struct {
	Address      string `json:"address"`
	Name         string `json:"name"`
	ENS          string `json:"ens,omitempty"`
	Balance      string `json:"balance"`
	IsSelected   bool   `json:"isSelected"`
	IsImported   bool   `json:"isImported"`
	IsConnected  bool   `json:"isConnected"`
	BalanceError string `json:"balanceError,omitempty"`
	Index        int    `json:"index"`
}

// Info is the account tracker entry for one address.
// Balance is nil when the tracker has no balance field for the account.
type Info struct {
	Balance *string `json:"balance,omitempty"`
}

// Snapshot is the part of the background state the picker reads
type Snapshot struct {
	SelectedAddress string          `json:"selectedAddress"`
	Accounts        map[string]Info `json:"accounts"`
}

// StateReader supplies snapshots of the background state
type StateReader interface {
	Snapshot() Snapshot
}

// EffectiveBalance resolves the balance a row should display.
// The tracker balance wins only for the selected account, and only when the
// record itself carries the empty sentinel.
func EffectiveBalance(rec Record, snap Snapshot) string {
	if rec.Balance != EmptyBalance || snap.SelectedAddress != rec.Address {
		return rec.Balance
	}
	selected, ok := snap.Accounts[snap.SelectedAddress]
	if !ok || selected.Balance == nil {
		return rec.Balance
	}
	return *selected.Balance
}

// IsDefaultName reports whether name is a generated placeholder like "Account 2"
func IsDefaultName(name string) bool {
	return defaultNamePattern.MatchString(name)
}

// Label is the text shown for an account: its ENS name replaces a placeholder name
func Label(rec Record) string {
	if IsDefaultName(rec.Name) && rec.ENS != "" {
		return rec.ENS
	}
	return rec.Name
}

// IsActive reports whether the row shows the "Active" indicator.
// index == 1 is kept as the wallet ships it; see DESIGN.md.
func IsActive(rec Record, index int) bool {
	return (index == 1 && rec.IsConnected) || (rec.IsSelected && rec.IsConnected)
}

// Validate checks the minimum a row needs to render
func Validate(rec Record) error {
	if rec.Address == "" {
		return ErrMissingAddress
	}
	return nil
}

// ValidateHex checks that addr is a 0x-prefixed 20-byte hex address
func ValidateHex(addr string) error {
	if addr == "" {
		return ErrMissingAddress
	}
	if !common.IsHexAddress(addr) || len(addr) < 2 || (addr[:2] != "0x" && addr[:2] != "0X") {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return nil
}

// ChecksumAddress returns the EIP-55 form of a valid hex address.
// Anything else comes back unchanged.
func ChecksumAddress(addr string) string {
	if ValidateHex(addr) != nil {
		return addr
	}
	return common.HexToAddress(addr).Hex()
}

// ShortAddress renders 0x1234…abcd for headers and logs
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
