package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// AssetKeeper is the asset transfer capability the pools rely on. Allowance
// bookkeeping lives entirely behind this interface.
type AssetKeeper interface {
	// TransferFrom moves amount of denom from owner to recipient using an
	// allowance previously granted by owner to spender.
	TransferFrom(ctx context.Context, denom string, spender, owner, recipient sdk.AccAddress, amount math.Int) error

	// Transfer moves amount of denom out of sender's own balance.
	Transfer(ctx context.Context, denom string, sender, recipient sdk.AccAddress, amount math.Int) error

	// BalanceOf returns holder's balance of denom.
	BalanceOf(ctx context.Context, denom string, holder sdk.AccAddress) math.Int
}
