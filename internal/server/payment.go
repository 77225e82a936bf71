package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/payrecord/internal/payment/domain"
)

type createPaymentRequest struct {
	ExternalID string       `json:"external_id"`
	Email      string       `json:"email"`
	Amount     amountString `json:"amount"`
	Currency   string       `json:"currency"`
}

// amountString accepts the amount as a JSON string or a JSON number and keeps
// the literal text so no precision is lost before validation.
type amountString string

func (a *amountString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return errors.New("amount must be a string or a number")
		}
		*a = amountString(n.String())
		return nil
	}
}

func (s *Server) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError("malformed JSON body"))
		return
	}

	resp, err := s.paymentSvc.Create(c.Request.Context(), paymentdomain.CreatePaymentRequest{
		ExternalID: strings.TrimSpace(req.ExternalID),
		Email:      strings.TrimSpace(req.Email),
		Amount:     strings.TrimSpace(string(req.Amount)),
		Currency:   strings.TrimSpace(req.Currency),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetPayment(c *gin.Context) {
	externalID := strings.TrimSpace(c.Param("external_id"))

	resp, err := s.paymentSvc.GetByExternalID(c.Request.Context(), externalID)
	if err != nil {
		AbortWithError(c, withLookupCode(err, legacyCodeLookupByID))
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListPaymentsByEmail(c *gin.Context) {
	email := strings.TrimSpace(c.Param("email"))

	resp, err := s.paymentSvc.ListByEmail(c.Request.Context(), email)
	if err != nil {
		AbortWithError(c, withLookupCode(err, legacyCodeLookupByEmail))
		return
	}

	c.JSON(http.StatusOK, resp)
}
