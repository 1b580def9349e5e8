package pricing

import "testing"

func TestShippingCost(t *testing.T) {
	cases := []struct {
		name     string
		subtotal int64
		city     string
		want     int64
	}{
		{"base fee", 2000, "Nairobi", 300},
		{"remote surcharge", 2000, "Garissa", 500},
		{"remote surcharge lowercase", 2000, "lodwar", 500},
		{"remote surcharge mixed case", 2000, "MANDERA", 500},
		{"free above threshold", 6000, "Nairobi", 0},
		{"free above threshold remote", 6000, "Wajir", 0},
		{"free exactly at threshold", 5000, "Nairobi", 0},
		{"just below threshold", 4999, "Nairobi", 300},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShippingCost(tc.subtotal, tc.city); got != tc.want {
				t.Fatalf("ShippingCost(%d, %q) = %d, want %d", tc.subtotal, tc.city, got, tc.want)
			}
		})
	}
}

func TestTax(t *testing.T) {
	cases := []struct {
		subtotal int64
		want     int64
	}{
		{2000, 320},
		{6000, 960},
		{0, 0},
		{1, 0},    // 0.16 rounds down
		{4, 1},    // 0.64 rounds up
		{997, 160}, // 159.52 rounds up
	}

	for _, tc := range cases {
		if got := Tax(tc.subtotal); got != tc.want {
			t.Fatalf("Tax(%d) = %d, want %d", tc.subtotal, got, tc.want)
		}
	}
}

func TestComputeScenarios(t *testing.T) {
	// price=1000 x2, Nairobi: 2000 + 300 + 320 = 2620
	got := Compute(2000, "Nairobi", 0)
	if got.TotalAmount != 2620 {
		t.Fatalf("Nairobi total = %d, want 2620", got.TotalAmount)
	}

	// Same basket delivered to Garissa: 2000 + 500 + 320 = 2820
	got = Compute(2000, "Garissa", 0)
	if got.TotalAmount != 2820 {
		t.Fatalf("Garissa total = %d, want 2820", got.TotalAmount)
	}

	// Subtotal 6000 ships free anywhere.
	got = Compute(6000, "Garissa", 0)
	if got.ShippingCost != 0 {
		t.Fatalf("shipping = %d, want 0", got.ShippingCost)
	}
	if got.TotalAmount != 6000+960 {
		t.Fatalf("total = %d, want %d", got.TotalAmount, 6000+960)
	}
}

func TestComputeEquation(t *testing.T) {
	for _, subtotal := range []int64{0, 1, 499, 2000, 4999, 5000, 12345} {
		for _, city := range []string{"Nairobi", "garissa", "Mombasa"} {
			b := Compute(subtotal, city, 100)
			if b.TotalAmount != b.Subtotal+b.ShippingCost+b.Tax-b.Discount {
				t.Fatalf("breakdown inconsistent: %+v", b)
			}
		}
	}
}
