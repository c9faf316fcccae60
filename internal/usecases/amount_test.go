package usecases_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/usecases"
)

func TestCanonicalAmount(t *testing.T) {
	cases := map[string]string{
		"0.0001":               "0.0001",
		"0.05":                 "0.05",
		" 1.50 ":               "1.50",
		"1e-4":                 "0.0001",
		"1.5e3":                "1500",
		"12":                   "12",
		"0.000000000000000001": "0.000000000000000001",
	}
	for in, want := range cases {
		got, err := usecases.CanonicalAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.NotContains(t, got, "e", in)
	}
}

func TestCanonicalAmount_Rejects(t *testing.T) {
	for _, in := range []string{"", "0", "0.000", "-1", "abc", "1e-19", "NaN"} {
		_, err := usecases.CanonicalAmount(in)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidAmount, in)
		assert.ErrorIs(t, err, domainerrors.ErrValidation, in)
	}
}

func TestAmountToWei(t *testing.T) {
	wei, err := usecases.AmountToWei("0.0001")
	require.NoError(t, err)
	assert.Equal(t, "100000000000000", wei.String())

	wei, err = usecases.AmountToWei("0.05")
	require.NoError(t, err)
	assert.Equal(t, "50000000000000000", wei.String())
}

func TestWeiToEther(t *testing.T) {
	oneEther, _ := new(big.Int).SetString("1000000000000000000", 10)
	assert.Equal(t, "1", usecases.WeiToEther(oneEther))
	assert.Equal(t, "0.0001", usecases.WeiToEther(big.NewInt(100000000000000)))
	assert.Equal(t, "0", usecases.WeiToEther(nil))
}
