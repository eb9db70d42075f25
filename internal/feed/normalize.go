package feed

import (
	"fmt"

	"wallet-account-picker/internal/account"
	"wallet-account-picker/internal/state"
	"wallet-account-picker/internal/units"
)

// Normalize validates a patch received from outside the process and rewrites
// every address to its EIP-55 form so map keys and record addresses agree.
func Normalize(p *state.Patch) error {
	if p.SelectedAddress != nil && *p.SelectedAddress != "" {
		if err := account.ValidateHex(*p.SelectedAddress); err != nil {
			return fmt.Errorf("selectedAddress: %w", err)
		}
		sel := account.ChecksumAddress(*p.SelectedAddress)
		p.SelectedAddress = &sel
	}

	if len(p.Accounts) > 0 {
		accounts := make(map[string]state.AccountPatch, len(p.Accounts))
		for addr, ap := range p.Accounts {
			if err := account.ValidateHex(addr); err != nil {
				return fmt.Errorf("accounts: %w", err)
			}
			if ap.Balance != nil {
				if _, err := units.ParseWei(*ap.Balance); err != nil {
					return fmt.Errorf("accounts[%s].balance: %w", addr, err)
				}
			}
			accounts[account.ChecksumAddress(addr)] = ap
		}
		p.Accounts = accounts
	}

	for i := range p.Records {
		if err := account.ValidateHex(p.Records[i].Address); err != nil {
			return fmt.Errorf("records[%d]: %w", i, err)
		}
		p.Records[i].Address = account.ChecksumAddress(p.Records[i].Address)
		if p.Records[i].Balance == "" {
			p.Records[i].Balance = account.EmptyBalance
		}
	}
	return nil
}
