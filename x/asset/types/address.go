package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

// NamedAccount derives a stable account address from a human readable name.
func NamedAccount(name string) sdk.AccAddress {
	return sdk.AccAddress(address.Hash("account", []byte(name)))
}
