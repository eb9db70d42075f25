package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/params"
)

// DefaultTicker is shown when the network supplies no symbol
const DefaultTicker = "ETH"

// DisplayDecimals is how many fractional digits a balance keeps
const DisplayDecimals = 5

var (
	ether   = big.NewInt(params.Ether)
	minShow = big.NewRat(1, 100000) // 0.00001
)

// ParseWei reads a wei amount given as 0x-prefixed hex or base-10 digits.
// An empty string is zero.
func ParseWei(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := hexutil.DecodeBig(s)
		if err == nil {
			return v, nil
		}
		// trackers occasionally pad hex balances
		if errors.Is(err, hexutil.ErrLeadingZero) {
			if v, ok := new(big.Int).SetString(s[2:], 16); ok {
				return v, nil
			}
		}
		return nil, fmt.Errorf("parse hex wei %q: %w", s, err)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("parse wei %q: not a base-10 integer", s)
	}
	return v, nil
}

// RenderFromWei formats a wei amount in ether for display
func RenderFromWei(s string) string {
	wei, err := ParseWei(s)
	if err != nil || wei.Sign() == 0 {
		return "0"
	}

	eth := new(big.Rat).SetFrac(wei, ether)
	if eth.Sign() > 0 && eth.Cmp(minShow) < 0 {
		return "< 0.00001"
	}

	out := eth.FloatString(DisplayDecimals)
	out = strings.TrimRight(out, "0")
	out = strings.TrimSuffix(out, ".")
	if out == "-0" {
		return "0"
	}
	return out
}

// Ticker returns the network symbol, or ETH when none is configured
func Ticker(t string) string {
	if t == "" {
		return DefaultTicker
	}
	return t
}

// chainTickers maps well-known chain ids to their native currency symbol
var chainTickers = map[int64]string{
	params.MainnetChainConfig.ChainID.Int64(): "ETH",
	params.SepoliaChainConfig.ChainID.Int64(): "SepoliaETH",
	params.HoleskyChainConfig.ChainID.Int64(): "HoleskyETH",
	56:  "BNB",
	137: "POL",
}

// TickerFor prefers an explicit symbol, then the chain's native symbol, then ETH
func TickerFor(t string, chainID int64) string {
	if t != "" {
		return t
	}
	if sym, ok := chainTickers[chainID]; ok {
		return sym
	}
	return DefaultTicker
}
