package state

import (
	"wallet-account-picker/internal/account"
)

// AccountPatch updates one tracker entry. Nil fields are left alone.
type AccountPatch struct {
	Balance      *string `json:"balance,omitempty"`
	BalanceError *string `json:"balanceError,omitempty"`
}

// Patch is a partial update of the background state
type Patch struct {
	SelectedAddress *string                 `json:"selectedAddress,omitempty"`
	Accounts        map[string]AccountPatch `json:"accounts,omitempty"`
	Records         []account.Record        `json:"records,omitempty"`
}

// Validate checks every record in the patch
func (p Patch) Validate() error {
	for _, rec := range p.Records {
		if err := account.Validate(rec); err != nil {
			return err
		}
	}
	return nil
}

// Empty reports whether the patch changes nothing
func (p Patch) Empty() bool {
	return p.SelectedAddress == nil && len(p.Accounts) == 0 && len(p.Records) == 0
}
