package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesSentinelByKind(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("create: %w", NewCreateError("ORD-1", cause))

	assert.ErrorIs(t, err, ErrCreateFailed)
	assert.NotErrorIs(t, err, ErrDuplicateExternalID)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindCreateFailed, KindOf(err))

	var domainErr *Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ORD-1", domainErr.ExternalID)
}

func TestKindOfUnknownError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("boom")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "Payment with external_id ORD-1 already exists", NewDuplicateError("ORD-1").Error())
	assert.Equal(t, "Payment with external_id ORD-9 not found", NewNotFoundError("ORD-9").Error())
	assert.Equal(t, "Error getting payment: timeout", NewLookupError("", errors.New("timeout")).Error())
}

func TestViolationsMessage(t *testing.T) {
	v := Violations{
		{Field: "email", Code: CodeRequired, Message: "email is required"},
		{Field: "currency", Code: CodeUnsupportedCurrency, Message: "currency must be PEN or USD"},
	}
	assert.Equal(t, "email is required. currency must be PEN or USD.", v.Message())
	assert.Equal(t, v.Message(), NewValidationError(v).Error())
	assert.Equal(t, "", Violations(nil).Message())
}
