package app

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawswap/x/amm/types"
	assettypes "github.com/paw-chain/pawswap/x/asset/types"
)

const (
	// Bech32PrefixAccAddr defines the Bech32 prefix of an account's address
	Bech32PrefixAccAddr = "paw"
	// Bech32PrefixAccPub defines the Bech32 prefix of an account's public key
	Bech32PrefixAccPub = "pawpub"

	// AppName is the binary and default home directory name.
	AppName = "pawswapd"

	// DefaultChainID is used when no chain-id is configured.
	DefaultChainID = "pawswap-local-1"

	// PoolAccountPrefix selects a pool custody address in account arguments,
	// for example "pool:3".
	PoolAccountPrefix = "pool:"
)

var setConfigOnce sync.Once

// SetConfig sets the address configuration for the pawswap network. It is
// safe to call more than once; only the first call takes effect.
func SetConfig() {
	setConfigOnce.Do(func() {
		config := sdk.GetConfig()
		config.SetBech32PrefixForAccount(Bech32PrefixAccAddr, Bech32PrefixAccPub)
		config.Seal()
	})
}

// ResolveAccount parses an account argument. It accepts a bech32 address,
// "pool:<id>" for a pool's custody address, or a plain name that is mapped
// to a derived address.
func ResolveAccount(s string) (sdk.AccAddress, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty account")
	}

	if rest, ok := strings.CutPrefix(s, PoolAccountPrefix); ok {
		poolID, err := strconv.ParseUint(rest, 10, 64)
		if err != nil || poolID == 0 {
			return nil, fmt.Errorf("invalid pool account %q", s)
		}
		return ammtypes.PoolAddress(poolID), nil
	}

	prefix := sdk.GetConfig().GetBech32AccountAddrPrefix()
	if strings.HasPrefix(s, prefix+"1") {
		addr, err := sdk.AccAddressFromBech32(s)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", s, err)
		}
		return addr, nil
	}

	if strings.ContainsAny(s, " \t\n:") {
		return nil, fmt.Errorf("invalid account name %q", s)
	}
	return assettypes.NamedAccount(s), nil
}
