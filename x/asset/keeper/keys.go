package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

var (
	// BalanceKeyPrefix is the prefix for holder balances
	BalanceKeyPrefix = []byte{0x01}

	// AllowanceKeyPrefix is the prefix for spender allowances
	AllowanceKeyPrefix = []byte{0x02}

	// SupplyKeyPrefix is the prefix for per-denom total supply
	SupplyKeyPrefix = []byte{0x03}
)

// BalanceKey returns the store key of holder's balance of denom
func BalanceKey(denom string, holder sdk.AccAddress) []byte {
	key := append([]byte{}, BalanceKeyPrefix...)
	key = append(key, address.MustLengthPrefix([]byte(denom))...)
	return append(key, holder.Bytes()...)
}

// AllowanceKey returns the store key of the allowance owner granted spender
func AllowanceKey(denom string, owner, spender sdk.AccAddress) []byte {
	key := append([]byte{}, AllowanceKeyPrefix...)
	key = append(key, address.MustLengthPrefix([]byte(denom))...)
	key = append(key, address.MustLengthPrefix(owner.Bytes())...)
	return append(key, spender.Bytes()...)
}

// SupplyKey returns the store key of denom's total supply
func SupplyKey(denom string) []byte {
	return append(append([]byte{}, SupplyKeyPrefix...), []byte(denom)...)
}

// splitLengthPrefixed reads one length-prefixed segment off the front of bz
func splitLengthPrefixed(bz []byte) (segment, rest []byte, err error) {
	if len(bz) == 0 {
		return nil, nil, fmt.Errorf("empty key segment")
	}
	n := int(bz[0])
	if len(bz) < 1+n {
		return nil, nil, fmt.Errorf("key segment of %d bytes truncated at %d", n, len(bz)-1)
	}
	return append([]byte{}, bz[1:1+n]...), append([]byte{}, bz[1+n:]...), nil
}

// parseBalanceKey splits a balance key, without its prefix, into denom and holder
func parseBalanceKey(key []byte) (string, sdk.AccAddress, error) {
	denom, holder, err := splitLengthPrefixed(key)
	if err != nil {
		return "", nil, err
	}
	return string(denom), sdk.AccAddress(holder), nil
}

// parseAllowanceKey splits an allowance key, without its prefix
func parseAllowanceKey(key []byte) (string, sdk.AccAddress, sdk.AccAddress, error) {
	denom, rest, err := splitLengthPrefixed(key)
	if err != nil {
		return "", nil, nil, err
	}
	owner, spender, err := splitLengthPrefixed(rest)
	if err != nil {
		return "", nil, nil, err
	}
	return string(denom), sdk.AccAddress(owner), sdk.AccAddress(spender), nil
}
