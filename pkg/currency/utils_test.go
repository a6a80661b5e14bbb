package currency

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToCents(t *testing.T) {
	u := NewCurrencyUtils()

	var tests = []struct {
		name      string
		amount    string
		expected  int64
		expectErr bool
	}{
		{name: "integer", amount: "50000", expected: 5000000},
		{name: "two fraction digits", amount: "49.99", expected: 4999},
		{name: "one fraction digit", amount: "10.5", expected: 1050},
		{name: "trailing point", amount: "10.", expected: 1000},
		{name: "minimum", amount: "1.00", expected: 100},
		{name: "three fraction digits", amount: "1.005", expectErr: true},
		{name: "empty", amount: "", expectErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cents, err := u.ToCents(tt.amount)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, cents)
		})
	}
}

func TestBankersRound(t *testing.T) {
	u := NewCurrencyUtils()

	require.Equal(t, int64(1050), u.BankersRound(10.50))
	require.Equal(t, int64(1002), u.BankersRound(10.025))
	require.Equal(t, int64(1000), u.BankersRound(10.0))
}

func TestFormat(t *testing.T) {
	u := NewCurrencyUtils()

	require.Equal(t, "49.99 USD", u.Format(4999, "USD"))
	require.Equal(t, "0.01 EUR", u.Format(1, "EUR"))
}
