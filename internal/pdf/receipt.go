// Package pdf renders order receipts for download from the admin panel.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	orderdomain "github.com/bondexsafety/backoffice/internal/order/domain"
)

const storeName = "Bondex Safety Ltd"

type Renderer interface {
	OrderReceipt(ctx context.Context, order *orderdomain.Response) (io.Reader, error)
}

type receiptRenderer struct{}

func NewRenderer() Renderer {
	return &receiptRenderer{}
}

func kes(amount int64) string {
	return fmt.Sprintf("KES %d", amount)
}

func formatAddress(a orderdomain.Address) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func (r *receiptRenderer) OrderReceipt(ctx context.Context, order *orderdomain.Response) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(24,
		text.NewCol(6, storeName, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(6, "Order Receipt", props.Text{
			Size:  14,
			Align: align.Right,
			Top:   4,
		}),
	)

	placed := order.CreatedAt.UTC().Format("02 Jan 2006")
	m.AddRow(20,
		col.New(6).Add(
			text.New("Order number: "+order.OrderNumber, props.Text{Top: 0}),
			text.New("Placed on: "+placed, props.Text{Top: 4}),
			text.New("Payment: "+order.Payment.Method+" ("+order.Payment.Status+")", props.Text{Top: 8}),
		),
		col.New(6),
	)

	m.AddRow(30,
		col.New(6).Add(
			text.New("Billed to", props.Text{Style: fontstyle.Bold}),
			text.New(order.Customer.Name, props.Text{Top: 5}),
			text.New(order.Customer.Email, props.Text{Top: 9}),
			text.New(order.Customer.Phone, props.Text{Top: 13}),
		),
		col.New(6).Add(
			text.New("Ship to", props.Text{Style: fontstyle.Bold}),
			text.New(formatAddress(order.ShippingAddress), props.Text{Top: 5}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range order.Items {
		m.AddRow(12,
			text.NewCol(6, item.Name, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, kes(item.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, kes(item.Total), props.Text{Size: 9, Align: align.Right}),
		)
	}

	totals := []struct {
		label  string
		amount int64
	}{
		{"Subtotal", order.Pricing.Subtotal},
		{"Shipping", order.Pricing.ShippingCost},
		{"VAT (16%)", order.Pricing.Tax},
	}
	if order.Pricing.Discount > 0 {
		totals = append(totals, struct {
			label  string
			amount int64
		}{"Discount", -order.Pricing.Discount})
	}

	for _, row := range totals {
		m.AddRow(8,
			col.New(8),
			text.NewCol(2, row.label, props.Text{Size: 9}),
			text.NewCol(2, kes(row.amount), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, kes(order.Pricing.TotalAmount), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	if order.Payment.RefundAmount > 0 {
		refunded := ""
		if order.Payment.RefundedAt != nil {
			refunded = " on " + order.Payment.RefundedAt.UTC().Format("02 Jan 2006")
		}
		m.AddRow(10,
			text.NewCol(12, kes(order.Payment.RefundAmount)+" refunded"+refunded, props.Text{Size: 9, Top: 2}),
		)
	}

	m.AddRow(16,
		text.NewCol(12, "Thank you for shopping with "+storeName+".", props.Text{
			Size: 9,
			Top:  6,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
