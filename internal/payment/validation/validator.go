package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payrecord/internal/payment/domain"
)

var decimalPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Amounts are stored as NUMERIC(19,2).
const (
	maxFractionDigits = 2
	maxIntegerDigits  = 17
)

var amountUpperBound = decimal.New(1, maxIntegerDigits)

// Validator checks create requests before they reach the store.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	rules := map[string]validator.Func{
		"notblank":          notBlank,
		"decimal_format":    decimalFormat,
		"decimal_positive":  decimalPositive,
		"decimal_precision": decimalPrecision,
		"decimal_range":     decimalRange,
		"currency":          supportedCurrency,
	}
	for tag, fn := range rules {
		// Registration only fails on an empty tag or nil func.
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register validation %q: %v", tag, err))
		}
	}
	return &Validator{validate: v}
}

// Validate returns every field violation, in field order, first failing rule per field.
// An empty result means the request is acceptable.
func (v *Validator) Validate(req domain.CreatePaymentRequest) domain.Violations {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.Violations{{Field: "request", Code: domain.CodeInvalidFormat, Message: err.Error()}}
	}

	violations := make(domain.Violations, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, toViolation(fe))
	}
	return violations
}

func toViolation(fe validator.FieldError) domain.Violation {
	field := fe.Field()
	switch fe.Tag() {
	case "notblank":
		return domain.Violation{Field: field, Code: domain.CodeRequired, Message: field + " is required"}
	case "max":
		return domain.Violation{Field: field, Code: domain.CodeTooLong, Message: fmt.Sprintf("%s must be less than %s characters", field, fe.Param())}
	case "decimal_format":
		return domain.Violation{Field: field, Code: domain.CodeInvalidFormat, Message: field + " must be a decimal number"}
	case "decimal_positive":
		return domain.Violation{Field: field, Code: domain.CodeNotPositive, Message: field + " must be greater than zero"}
	case "decimal_precision":
		return domain.Violation{Field: field, Code: domain.CodeInvalidPrecision, Message: fmt.Sprintf("%s must have at most %d decimal places", field, maxFractionDigits)}
	case "decimal_range":
		return domain.Violation{Field: field, Code: domain.CodeOutOfRange, Message: fmt.Sprintf("%s must have at most %d integer digits", field, maxIntegerDigits)}
	case "currency":
		return domain.Violation{Field: field, Code: domain.CodeUnsupportedCurrency, Message: field + " must be PEN or USD"}
	default:
		return domain.Violation{Field: field, Code: fe.Tag(), Message: fmt.Sprintf("%s is invalid", field)}
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func decimalFormat(fl validator.FieldLevel) bool {
	return decimalPattern.MatchString(fl.Field().String())
}

func decimalPositive(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive()
}

func decimalPrecision(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	idx := strings.IndexByte(value, '.')
	if idx < 0 {
		return true
	}
	return len(value)-idx-1 <= maxFractionDigits
}

func decimalRange(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.Abs().LessThan(amountUpperBound)
}

func supportedCurrency(fl validator.FieldLevel) bool {
	return domain.Currency(fl.Field().String()).Supported()
}
