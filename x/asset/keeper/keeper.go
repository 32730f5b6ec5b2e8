package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/asset/types"
)

// Keeper of the asset store: a fungible token ledger keyed by denom, with
// balances, spender allowances and per-denom supply.
type Keeper struct {
	storeKey storetypes.StoreKey
}

// NewKeeper creates a new asset Keeper instance
func NewKeeper(key storetypes.StoreKey) Keeper {
	return Keeper{storeKey: key}
}

// getStore returns the KVStore for the asset module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

func (k Keeper) getAmount(ctx context.Context, key []byte) (math.Int, error) {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
		return math.ZeroInt(), nil
	}
	var amount math.Int
	if err := amount.Unmarshal(bz); err != nil {
		return math.ZeroInt(), fmt.Errorf("unmarshal amount: %w", err)
	}
	return amount, nil
}

// setAmount stores amount under key, deleting the entry when it is zero
func (k Keeper) setAmount(ctx context.Context, key []byte, amount math.Int) error {
	store := k.getStore(ctx)
	if amount.IsZero() {
		store.Delete(key)
		return nil
	}
	bz, err := amount.Marshal()
	if err != nil {
		return fmt.Errorf("marshal amount: %w", err)
	}
	store.Set(key, bz)
	return nil
}

func validateAmount(amount math.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrInvalidAmount.Wrapf("amount %s", amount)
	}
	return nil
}

// BalanceOf returns holder's balance of denom. Unreadable entries count as
// zero and are logged.
func (k Keeper) BalanceOf(ctx context.Context, denom string, holder sdk.AccAddress) math.Int {
	amount, err := k.getAmount(ctx, BalanceKey(denom, holder))
	if err != nil {
		k.Logger(ctx).Error("corrupt balance entry", "denom", denom, "holder", holder.String(), "error", err)
		return math.ZeroInt()
	}
	return amount
}

// TotalSupply returns the amount of denom minted so far.
func (k Keeper) TotalSupply(ctx context.Context, denom string) math.Int {
	amount, err := k.getAmount(ctx, SupplyKey(denom))
	if err != nil {
		k.Logger(ctx).Error("corrupt supply entry", "denom", denom, "error", err)
		return math.ZeroInt()
	}
	return amount
}

// Allowance returns how much of owner's denom spender may still move.
func (k Keeper) Allowance(ctx context.Context, denom string, owner, spender sdk.AccAddress) math.Int {
	amount, err := k.getAmount(ctx, AllowanceKey(denom, owner, spender))
	if err != nil {
		k.Logger(ctx).Error("corrupt allowance entry", "denom", denom, "owner", owner.String(), "error", err)
		return math.ZeroInt()
	}
	return amount
}

// Mint creates amount of denom in recipient's balance.
func (k Keeper) Mint(ctx context.Context, denom string, recipient sdk.AccAddress, amount math.Int) error {
	if err := types.ValidateDenom(denom); err != nil {
		return err
	}
	if err := validateAmount(amount); err != nil {
		return err
	}

	supply, err := k.TotalSupply(ctx, denom).SafeAdd(amount)
	if err != nil {
		return types.ErrInvalidAmount.Wrapf("supply of %s overflows: %v", denom, err)
	}
	balance, err := k.BalanceOf(ctx, denom, recipient).SafeAdd(amount)
	if err != nil {
		return types.ErrInvalidAmount.Wrapf("balance of %s overflows: %v", denom, err)
	}
	if err := k.setAmount(ctx, SupplyKey(denom), supply); err != nil {
		return fmt.Errorf("Mint: %w", err)
	}
	if err := k.setAmount(ctx, BalanceKey(denom, recipient), balance); err != nil {
		return fmt.Errorf("Mint: %w", err)
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeMint,
			sdk.NewAttribute(types.AttributeKeyDenom, denom),
			sdk.NewAttribute(types.AttributeKeyRecipient, recipient.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
		),
	)
	return nil
}

// Approve sets the amount of denom spender may move out of owner's balance,
// replacing any previous allowance.
func (k Keeper) Approve(ctx context.Context, denom string, owner, spender sdk.AccAddress, amount math.Int) error {
	if err := types.ValidateDenom(denom); err != nil {
		return err
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	if err := k.setAmount(ctx, AllowanceKey(denom, owner, spender), amount); err != nil {
		return fmt.Errorf("Approve: %w", err)
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeApproval,
			sdk.NewAttribute(types.AttributeKeyDenom, denom),
			sdk.NewAttribute(types.AttributeKeyOwner, owner.String()),
			sdk.NewAttribute(types.AttributeKeySpender, spender.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
		),
	)
	return nil
}

// Transfer moves amount of denom from sender's balance to recipient.
func (k Keeper) Transfer(ctx context.Context, denom string, sender, recipient sdk.AccAddress, amount math.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	from := k.BalanceOf(ctx, denom, sender)
	if from.LT(amount) {
		return types.ErrInsufficientFunds.Wrapf("%s has %s%s, needs %s", sender, from, denom, amount)
	}
	if err := k.setAmount(ctx, BalanceKey(denom, sender), from.Sub(amount)); err != nil {
		return fmt.Errorf("Transfer: %w", err)
	}
	// Read after the debit so a self transfer nets to zero.
	to := k.BalanceOf(ctx, denom, recipient)
	if err := k.setAmount(ctx, BalanceKey(denom, recipient), to.Add(amount)); err != nil {
		return fmt.Errorf("Transfer: %w", err)
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeTransfer,
			sdk.NewAttribute(types.AttributeKeyDenom, denom),
			sdk.NewAttribute(types.AttributeKeySender, sender.String()),
			sdk.NewAttribute(types.AttributeKeyRecipient, recipient.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
		),
	)
	return nil
}

// TransferFrom moves amount of denom from owner to recipient on behalf of
// spender, consuming spender's allowance.
func (k Keeper) TransferFrom(ctx context.Context, denom string, spender, owner, recipient sdk.AccAddress, amount math.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	allowance := k.Allowance(ctx, denom, owner, spender)
	if allowance.LT(amount) {
		return types.ErrInsufficientAllowance.Wrapf("%s may move %s%s of %s, needs %s", spender, allowance, denom, owner, amount)
	}
	if err := k.Transfer(ctx, denom, owner, recipient, amount); err != nil {
		return err
	}
	if err := k.setAmount(ctx, AllowanceKey(denom, owner, spender), allowance.Sub(amount)); err != nil {
		return fmt.Errorf("TransferFrom: %w", err)
	}
	return nil
}

// IterateBalances walks every balance in key order.
func (k Keeper) IterateBalances(ctx context.Context, cb func(denom string, holder sdk.AccAddress, amount math.Int) (stop bool)) error {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), BalanceKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		denom, holder, err := parseBalanceKey(iterator.Key()[len(BalanceKeyPrefix):])
		if err != nil {
			return fmt.Errorf("IterateBalances: %w", err)
		}
		var amount math.Int
		if err := amount.Unmarshal(iterator.Value()); err != nil {
			return fmt.Errorf("IterateBalances: %s/%s: %w", denom, holder, err)
		}
		if cb(denom, holder, amount) {
			break
		}
	}
	return nil
}

// IterateAllowances walks every allowance in key order.
func (k Keeper) IterateAllowances(ctx context.Context, cb func(denom string, owner, spender sdk.AccAddress, amount math.Int) (stop bool)) error {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), AllowanceKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		denom, owner, spender, err := parseAllowanceKey(iterator.Key()[len(AllowanceKeyPrefix):])
		if err != nil {
			return fmt.Errorf("IterateAllowances: %w", err)
		}
		var amount math.Int
		if err := amount.Unmarshal(iterator.Value()); err != nil {
			return fmt.Errorf("IterateAllowances: %s/%s: %w", denom, owner, err)
		}
		if cb(denom, owner, spender, amount) {
			break
		}
	}
	return nil
}
