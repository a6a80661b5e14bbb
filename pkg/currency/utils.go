package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type CurrencyUtils struct{}

func NewCurrencyUtils() *CurrencyUtils {
	return &CurrencyUtils{}
}

// ToCents parses a sanitized decimal string (at most two fraction digits)
// into an integer cent amount.
func (u *CurrencyUtils) ToCents(amount string) (int64, error) {
	if amount == "" {
		return 0, fmt.Errorf("invalid amount: empty")
	}

	whole, frac, found := strings.Cut(amount, ".")
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	cents := units * 100
	if found && frac != "" {
		if len(frac) > 2 {
			return 0, fmt.Errorf("invalid amount %q: more than two fraction digits", amount)
		}
		for len(frac) < 2 {
			frac += "0"
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
		}
		cents += f
	}

	return cents, nil
}

// BankersRound applies banker's rounding to a float64 value
func (u *CurrencyUtils) BankersRound(value float64) int64 {
	cents := value * 100
	rounded := math.Round(cents)

	// Check if we're exactly halfway between two integers
	if math.Abs(cents-rounded) == 0.5 {
		// Banker's rounding: round to nearest even number
		if int64(rounded)%2 == 0 {
			return int64(rounded)
		}
		return int64(rounded) - 1
	}

	return int64(math.Round(cents))
}

// CentsToUnits converts cents to major units for display
func (u *CurrencyUtils) CentsToUnits(cents int64) float64 {
	return float64(cents) / 100.0
}

// Format formats a cent amount with its currency code, e.g. "49.99 USD"
func (u *CurrencyUtils) Format(cents int64, code string) string {
	return fmt.Sprintf("%.2f %s", u.CentsToUnits(cents), code)
}
