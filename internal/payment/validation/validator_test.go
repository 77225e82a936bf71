package validation

import (
	"strings"
	"testing"

	"github.com/smallbiznis/payrecord/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() domain.CreatePaymentRequest {
	return domain.CreatePaymentRequest{
		ExternalID: "ORD-1",
		Email:      "a@b.com",
		Amount:     "20.00",
		Currency:   "USD",
	}
}

func TestValidateAcceptsValidRequest(t *testing.T) {
	assert.Empty(t, New().Validate(validRequest()))
}

func TestValidateReportsEveryField(t *testing.T) {
	violations := New().Validate(domain.CreatePaymentRequest{})

	require.Len(t, violations, 4)
	fields := []string{violations[0].Field, violations[1].Field, violations[2].Field, violations[3].Field}
	assert.Equal(t, []string{"external_id", "email", "amount", "currency"}, fields)
	for _, v := range violations {
		assert.Equal(t, domain.CodeRequired, v.Code)
	}
	assert.Equal(t,
		"external_id is required. email is required. amount is required. currency is required.",
		violations.Message(),
	)
}

func TestValidateBlankIsRequired(t *testing.T) {
	req := validRequest()
	req.Email = "   "

	violations := New().Validate(req)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.Violation{Field: "email", Code: domain.CodeRequired, Message: "email is required"}, violations[0])
}

func TestValidateLengthLimit(t *testing.T) {
	req := validRequest()
	req.ExternalID = strings.Repeat("x", 100)
	assert.Empty(t, New().Validate(req))

	req.ExternalID = strings.Repeat("x", 101)
	violations := New().Validate(req)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.CodeTooLong, violations[0].Code)
	assert.Equal(t, "external_id must be less than 100 characters", violations[0].Message)
}

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		amount string
		code   string
	}{
		{amount: "20", code: ""},
		{amount: "20.5", code: ""},
		{amount: "0.01", code: ""},
		{amount: "abc", code: domain.CodeInvalidFormat},
		{amount: "1e3", code: domain.CodeInvalidFormat},
		{amount: "20.", code: domain.CodeInvalidFormat},
		{amount: "0", code: domain.CodeNotPositive},
		{amount: "-5.00", code: domain.CodeNotPositive},
		{amount: "1.234", code: domain.CodeInvalidPrecision},
		{amount: "99999999999999999.99", code: ""},
		{amount: "000000000000000000001.00", code: ""},
		{amount: "100000000000000000.00", code: domain.CodeOutOfRange},
		{amount: "123456789012345678901234.00", code: domain.CodeOutOfRange},
	}
	v := New()
	for _, tc := range cases {
		req := validRequest()
		req.Amount = tc.amount
		violations := v.Validate(req)
		if tc.code == "" {
			assert.Empty(t, violations, tc.amount)
			continue
		}
		if assert.Len(t, violations, 1, tc.amount) {
			assert.Equal(t, "amount", violations[0].Field)
			assert.Equal(t, tc.code, violations[0].Code, tc.amount)
		}
	}
}

func TestValidateAmountRangeMessage(t *testing.T) {
	req := validRequest()
	req.Amount = "123456789012345678901234.00"

	violations := New().Validate(req)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.Violation{
		Field:   "amount",
		Code:    domain.CodeOutOfRange,
		Message: "amount must have at most 17 integer digits",
	}, violations[0])
}

func TestValidateCurrency(t *testing.T) {
	v := New()
	for _, currency := range []string{"PEN", "USD"} {
		req := validRequest()
		req.Currency = currency
		assert.Empty(t, v.Validate(req), currency)
	}

	req := validRequest()
	req.Currency = "EUR"
	violations := v.Validate(req)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.Violation{Field: "currency", Code: domain.CodeUnsupportedCurrency, Message: "currency must be PEN or USD"}, violations[0])

	req.Currency = ""
	violations = v.Validate(req)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.CodeRequired, violations[0].Code)
}
