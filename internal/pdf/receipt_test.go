package pdf

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderdomain "github.com/bondexsafety/backoffice/internal/order/domain"
)

func sampleOrder() *orderdomain.Response {
	return &orderdomain.Response{
		ID:          "1234567890",
		OrderNumber: "ORD2503100001",
		Customer: orderdomain.CustomerSnapshot{
			Name:  "Jane Wanjiku",
			Email: "jane@example.com",
			Phone: "+254700000001",
		},
		ShippingAddress: orderdomain.Address{
			Street:  "Moi Avenue 12",
			City:    "Nairobi",
			Country: "Kenya",
		},
		Items: []orderdomain.ItemResponse{
			{ProductID: "1", Name: "Safety Helmet", Quantity: 2, UnitPrice: 1000, Total: 2000},
		},
		Pricing: orderdomain.PricingResponse{
			Subtotal:     2000,
			ShippingCost: 300,
			Tax:          320,
			TotalAmount:  2620,
		},
		Payment: orderdomain.PaymentResponse{
			Method: "mpesa",
			Status: "paid",
		},
		Status:    "delivered",
		CreatedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestOrderReceipt(t *testing.T) {
	r := NewRenderer()

	reader, err := r.OrderReceipt(context.Background(), sampleOrder())
	require.NoError(t, err)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "expected a PDF document")
}

func TestOrderReceiptWithRefund(t *testing.T) {
	r := NewRenderer()

	order := sampleOrder()
	refundedAt := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	order.Payment.Status = "refunded"
	order.Payment.RefundAmount = 2620
	order.Payment.RefundedAt = &refundedAt
	order.Pricing.Discount = 100
	order.Pricing.TotalAmount = 2520

	reader, err := r.OrderReceipt(context.Background(), order)
	require.NoError(t, err)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestFormatAddress(t *testing.T) {
	full := orderdomain.Address{Street: "Moi Avenue 12", City: "Nairobi", PostalCode: "00100", Country: "Kenya"}
	assert.Equal(t, "Moi Avenue 12, Nairobi, 00100, Kenya", formatAddress(full))

	sparse := orderdomain.Address{City: "Garissa"}
	assert.Equal(t, "Garissa", formatAddress(sparse))
}
