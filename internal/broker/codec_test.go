package broker

import (
	"testing"

	"ticketshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseRequestRoundTrip(t *testing.T) {
	req := &models.PurchaseRequest{
		Username:       "alice",
		OrderID:        42,
		TotalPrice:     125.0,
		CardNumber:     4111111111111111,
		ExpirationDate: "08-2028",
		CVV:            123,
		CardHolder:     "Alice Doe",
	}

	data, err := EncodePurchaseRequest(req)
	require.NoError(t, err)

	decoded, err := DecodePurchaseRequest(data)
	require.NoError(t, err)
	assert.Equal(t, req, decoded)
}

func TestPurchaseOutcomeRoundTrip(t *testing.T) {
	out := &models.PurchaseOutcome{OrderID: 42, Status: models.OrderStatusAccepted}

	data, err := EncodePurchaseOutcome(out)
	require.NoError(t, err)

	decoded, err := DecodePurchaseOutcome(data)
	require.NoError(t, err)
	assert.Equal(t, out, decoded)
}

func TestDecodePurchaseRequest_Malformed(t *testing.T) {
	cases := map[string][]byte{
		"garbage":          []byte("not json"),
		"missing order id": []byte(`{"username":"alice"}`),
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePurchaseRequest(payload)
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}

func TestDecodePurchaseOutcome_Malformed(t *testing.T) {
	cases := map[string][]byte{
		"garbage":          []byte("{"),
		"missing order id": []byte(`{"status":"ACCEPTED"}`),
		"unknown status":   []byte(`{"order_id":42,"status":"MAYBE"}`),
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePurchaseOutcome(payload)
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}
