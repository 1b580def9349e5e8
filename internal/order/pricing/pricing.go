// Package pricing computes the order pricing breakdown. All amounts are
// whole Kenyan Shillings.
package pricing

import "strings"

const (
	// BaseShippingFee is the flat delivery fee.
	BaseShippingFee int64 = 300
	// FreeShippingThreshold waives shipping entirely at and above this
	// subtotal.
	FreeShippingThreshold int64 = 5000
	// RemoteAreaSurcharge is added on top of the base fee for remote
	// towns.
	RemoteAreaSurcharge int64 = 200
	// VATPercent is the flat VAT rate applied to the subtotal.
	VATPercent int64 = 16
)

// remoteCities are matched case-insensitively against the shipping city.
var remoteCities = map[string]struct{}{
	"lodwar":  {},
	"mandera": {},
	"wajir":   {},
	"garissa": {},
}

// Breakdown is the computed pricing of an order.
type Breakdown struct {
	Subtotal     int64
	ShippingCost int64
	Tax          int64
	Discount     int64
	TotalAmount  int64
}

// ShippingCost applies the delivery rule: free at or above the threshold,
// base fee otherwise, plus a surcharge for remote cities.
func ShippingCost(subtotal int64, city string) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	cost := BaseShippingFee
	if IsRemoteCity(city) {
		cost += RemoteAreaSurcharge
	}
	return cost
}

func IsRemoteCity(city string) bool {
	_, ok := remoteCities[strings.ToLower(strings.TrimSpace(city))]
	return ok
}

// Tax is VAT rounded to the nearest shilling.
func Tax(subtotal int64) int64 {
	return (subtotal*VATPercent + 50) / 100
}

// Compute derives the full breakdown from a subtotal and shipping city.
func Compute(subtotal int64, city string, discount int64) Breakdown {
	shipping := ShippingCost(subtotal, city)
	tax := Tax(subtotal)
	return Breakdown{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Discount:     discount,
		TotalAmount:  subtotal + shipping + tax - discount,
	}
}
