package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pawswap/testutil/keeper"
)

const (
	denomD = "udai"
	denomW = "uweth"
)

var (
	alice = keepertest.Account("alice")
	bob   = keepertest.Account("bob")
	carol = keepertest.Account("carol")
)

// requireEvent asserts that events contain typ carrying every given attribute.
func requireEvent(t *testing.T, events sdk.Events, typ string, attrs map[string]string) {
	t.Helper()
	for _, ev := range events {
		if ev.Type != typ {
			continue
		}
		matched := 0
		for _, attr := range ev.Attributes {
			if want, ok := attrs[attr.Key]; ok && want == attr.Value {
				matched++
			}
		}
		if matched == len(attrs) {
			return
		}
	}
	require.Failf(t, "event not found", "no %s event with attributes %v in %v", typ, attrs, events)
}

// requireNoEvent asserts that events contain no event of type typ.
func requireNoEvent(t *testing.T, events sdk.Events, typ string) {
	t.Helper()
	for _, ev := range events {
		require.NotEqual(t, typ, ev.Type, "unexpected %s event", typ)
	}
}

func requireInt(t *testing.T, expected int64, actual math.Int, msgAndArgs ...interface{}) {
	t.Helper()
	require.Equal(t, math.NewInt(expected).String(), actual.String(), msgAndArgs...)
}

// freshEvents returns ctx with an empty event manager.
func freshEvents(ctx sdk.Context) sdk.Context {
	return ctx.WithEventManager(sdk.NewEventManager())
}
