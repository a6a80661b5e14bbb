package paymentservice

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/tixora/payments/internal/domain/models"
	"github.com/tixora/payments/pkg/config"
)

// amountPattern allows whole amounts or at most two fraction digits.
var amountPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// Validate checks a sanitized request against the payment rules and
// returns a field -> messages map, or nil when the request is valid. Each
// message is prefixed with its "field.rule" code.
func Validate(req *models.SanitizedRequest, cfg config.PaymentsConfig) map[string][]string {
	fieldErrors := make(map[string][]string)

	validateMethod(req.Method, fieldErrors)
	validateAmount(req.Amount, cfg, fieldErrors)
	validateCurrency(req.Currency, req.Method, cfg, fieldErrors)

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

func validateMethod(method string, fieldErrors map[string][]string) {
	if method == "" {
		fieldErrors["payment_method"] = append(fieldErrors["payment_method"], "payment_method.required: payment method is required")
		return
	}
	if method != string(models.MethodCard) && method != string(models.MethodCrypto) {
		fieldErrors["payment_method"] = append(fieldErrors["payment_method"], "payment_method.in: payment method must be card or crypto")
	}
}

func validateAmount(amount string, cfg config.PaymentsConfig, fieldErrors map[string][]string) {
	if amount == "" {
		fieldErrors["amount"] = append(fieldErrors["amount"], "amount.required: amount is required")
		return
	}
	if !amountPattern.MatchString(amount) {
		fieldErrors["amount"] = append(fieldErrors["amount"], "amount.regex: amount must be a number with at most 2 decimal places")
		return
	}

	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		fieldErrors["amount"] = append(fieldErrors["amount"], "amount.numeric: amount must be numeric")
		return
	}
	if value < cfg.MinAmount {
		fieldErrors["amount"] = append(fieldErrors["amount"], fmt.Sprintf("amount.min: amount must be at least %.2f", cfg.MinAmount))
	}
	if value > cfg.MaxAmount {
		fieldErrors["amount"] = append(fieldErrors["amount"], fmt.Sprintf("amount.max: amount may not exceed %.2f", cfg.MaxAmount))
	}
}

// validateCurrency reconciles the allow-list per payment method: card
// accepts the fiat list, crypto additionally accepts the crypto list.
func validateCurrency(currency, method string, cfg config.PaymentsConfig, fieldErrors map[string][]string) {
	if currency == "" {
		fieldErrors["currency"] = append(fieldErrors["currency"], "currency.required: currency is required")
		return
	}

	allowed := make([]string, 0, len(cfg.FiatCurrencies)+len(cfg.CryptoCurrencies))
	allowed = append(allowed, cfg.FiatCurrencies...)
	if method == string(models.MethodCrypto) {
		allowed = append(allowed, cfg.CryptoCurrencies...)
	}

	for _, code := range allowed {
		if currency == code {
			return
		}
	}
	fieldErrors["currency"] = append(fieldErrors["currency"], "currency.in: currency is not supported for this payment method")
}
