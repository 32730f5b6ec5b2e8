package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/paw-chain/pawswap/x/amm/types"
)

var (
	// PoolKeyPrefix is the prefix for pool store keys
	PoolKeyPrefix = []byte{0x01}

	// NextPoolIDKey is the key for the next pool ID counter
	NextPoolIDKey = []byte{0x02}

	// PoolByPairKeyPrefix is the prefix for indexing pools by canonical pair
	PoolByPairKeyPrefix = []byte{0x03}

	// SharesKeyPrefix is the prefix for share ledger entries
	SharesKeyPrefix = []byte{0x04}

	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x05}

	// PoolListKeyPrefix is the prefix for the creation-ordered pool list
	PoolListKeyPrefix = []byte{0x06}

	// PoolCountKey is the key for the length of the pool list
	PoolCountKey = []byte{0x07}

	// ReentrancyLockKeyPrefix is the prefix for reentrancy protection locks
	ReentrancyLockKeyPrefix = []byte{0x08}

	// PoolByAddressKeyPrefix is the prefix for indexing pools by custody address
	PoolByAddressKeyPrefix = []byte{0x09}
)

// PoolKey returns the store key for a pool by ID
func PoolKey(poolID uint64) []byte {
	return append(append([]byte{}, PoolKeyPrefix...), sdk.Uint64ToBigEndian(poolID)...)
}

// PoolByPairKey returns the index key of a pair. Both assets are length
// prefixed so denoms containing separators cannot collide.
func PoolByPairKey(pair types.Pair) []byte {
	key := append([]byte{}, PoolByPairKeyPrefix...)
	key = append(key, address.MustLengthPrefix([]byte(pair.AssetA))...)
	return append(key, address.MustLengthPrefix([]byte(pair.AssetB))...)
}

// PoolByAddressKey returns the index key of a pool custody address
func PoolByAddressKey(addr sdk.AccAddress) []byte {
	return append(append([]byte{}, PoolByAddressKeyPrefix...), address.MustLengthPrefix(addr)...)
}

// SharesKeyByPoolPrefix returns the prefix of every ledger entry of a pool
func SharesKeyByPoolPrefix(poolID uint64) []byte {
	return append(append([]byte{}, SharesKeyPrefix...), sdk.Uint64ToBigEndian(poolID)...)
}

// SharesKey returns the ledger key of owner in a pool
func SharesKey(poolID uint64, owner sdk.AccAddress) []byte {
	return append(SharesKeyByPoolPrefix(poolID), owner.Bytes()...)
}

// PoolListKey returns the key of the pool at a position of the pool list
func PoolListKey(index uint64) []byte {
	return append(append([]byte{}, PoolListKeyPrefix...), sdk.Uint64ToBigEndian(index)...)
}

// ReentrancyLockKey returns the store key for a reentrancy lock
func ReentrancyLockKey(lockName string) []byte {
	return append(append([]byte{}, ReentrancyLockKeyPrefix...), []byte(lockName)...)
}

// poolLockName names the lock held while a pool calls out to the asset keeper
func poolLockName(poolID uint64) string {
	return fmt.Sprintf("pool/%d", poolID)
}
