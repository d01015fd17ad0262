package validator

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var rules = map[string]validator.Func{
	"notblank": notBlank,
}

// New creates a validator with the custom rules used by the voucher form
// and the HTTP request bodies. It panics if a rule cannot be registered.
func New() *validator.Validate {
	v := validator.New()
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// Register adds the custom rules to an existing validator, such as the one
// gin uses for request binding.
func Register(v *validator.Validate) error {
	return register(v, rules)
}

func register(v *validator.Validate, rules map[string]validator.Func) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return errors.Wrapf(err, "register %q rule", tag)
		}
	}
	return nil
}

// notBlank rejects empty and whitespace-only strings.
func notBlank(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return true
	}
	return strings.TrimSpace(str) != ""
}
