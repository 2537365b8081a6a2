package aggregate

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"classroom-ledger/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report json field names instead of Go struct names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("payment_status", func(fl validator.FieldLevel) bool {
		return domain.PaymentStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("payment_type", func(fl validator.FieldLevel) bool {
		return domain.PaymentType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("payment_category", func(fl validator.FieldLevel) bool {
		return domain.PaymentCategory(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		switch domain.Currency(fl.Field().String()) {
		case domain.CurrencyDZD, domain.CurrencyEUR, domain.CurrencyUSD:
			return true
		}
		return false
	})
	return v
}

// Validator exposes the engine's validator so request structs share its custom tags.
func Validator() *validator.Validate {
	return validate
}
