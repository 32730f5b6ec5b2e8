package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())
	require.Equal(t, uint32(30), p.FeeBasisPoints)
	require.False(t, p.RestrictPoolCreation)
	require.Contains(t, p.String(), "fee_basis_points: 30")
}

func TestParams_Validate(t *testing.T) {
	require.NoError(t, NewParams(0, true).Validate())
	require.NoError(t, NewParams(FeeDenominator-1, false).Validate())
	require.ErrorIs(t, NewParams(FeeDenominator, false).Validate(), ErrInvalidParams)
}
