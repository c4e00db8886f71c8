package totals

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeEmpty(t *testing.T) {
	got := Compute(nil, DiscountFixed, 0, 0)
	require.Equal(t, Totals{}, got)
}

func TestComputeSingleItemWithTax(t *testing.T) {
	got := Compute([]LineItem{
		{Name: "Widget", Quantity: 2, Rate: 50, TaxRate: 10},
	}, DiscountFixed, 0, 0)

	require.Equal(t, 100.0, got.Subtotal)
	require.Equal(t, 0.0, got.DiscountAmount)
	require.Equal(t, 10.0, got.TaxAmount)
	require.Equal(t, 110.0, got.GrandTotal)
}

func TestComputePercentDiscount(t *testing.T) {
	got := Compute([]LineItem{
		{Name: "A", Quantity: 1, Rate: 100, TaxRate: 0},
		{Name: "B", Quantity: 1, Rate: 100, TaxRate: 0},
	}, DiscountPercent, 10, 0)

	require.Equal(t, 200.0, got.Subtotal)
	require.Equal(t, 20.0, got.DiscountAmount)
	require.Equal(t, 0.0, got.TaxAmount)
	require.Equal(t, 180.0, got.GrandTotal)
}

func TestComputeFixedDiscountExceedsSubtotal(t *testing.T) {
	got := Compute([]LineItem{
		{Name: "A", Quantity: 1, Rate: 100, TaxRate: 20},
	}, DiscountFixed, 150, 0)

	// Discount is reported unclamped; the taxable base floors at zero
	// and tax stays computed on the undiscounted amount.
	require.Equal(t, 100.0, got.Subtotal)
	require.Equal(t, 150.0, got.DiscountAmount)
	require.Equal(t, 20.0, got.TaxAmount)
	require.Equal(t, 20.0, got.GrandTotal)
}

func TestComputeNegativeAdjustment(t *testing.T) {
	got := Compute([]LineItem{
		{Name: "Widget", Quantity: 2, Rate: 50, TaxRate: 10},
	}, DiscountFixed, 0, -15)

	require.Equal(t, 95.0, got.GrandTotal)
}

func TestComputeOrderIndependent(t *testing.T) {
	a := []LineItem{
		{Name: "A", Quantity: 3, Rate: 19.99, TaxRate: 7},
		{Name: "B", Quantity: 1, Rate: 250, TaxRate: 19},
		{Name: "C", Quantity: "2", Rate: "12.5", TaxRate: 0},
	}
	b := []LineItem{a[2], a[0], a[1]}

	first := Compute(a, DiscountPercent, 5, 2.5)
	second := Compute(b, DiscountPercent, 5, 2.5)
	require.Equal(t, first, second)

	// Idempotent on repeated invocation.
	require.Equal(t, first, Compute(a, DiscountPercent, 5, 2.5))
}

func TestComputeRoundsHalfUp(t *testing.T) {
	got := Compute([]LineItem{
		{Name: "A", Quantity: 1, Rate: 19.995, TaxRate: 0},
	}, DiscountFixed, 0, 0)

	require.Equal(t, 20.0, got.Subtotal)
	require.Equal(t, 20.0, got.GrandTotal)
}

func TestComputeCoercesNonNumeric(t *testing.T) {
	got := Compute([]LineItem{
		{Name: "A", Quantity: "", Rate: 100, TaxRate: 10},
		{Name: "B", Quantity: "not-a-number", Rate: 50, TaxRate: 5},
		{Name: "C", Quantity: 1, Rate: nil, TaxRate: 7},
		{Name: "D", Quantity: "2", Rate: "25", TaxRate: "10"},
	}, DiscountFixed, "", "")

	require.Equal(t, 50.0, got.Subtotal)
	require.Equal(t, 0.0, got.DiscountAmount)
	require.Equal(t, 5.0, got.TaxAmount)
	require.Equal(t, 55.0, got.GrandTotal)
}

func TestCoerce(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{nil, 0},
		{"", 0},
		{"  ", 0},
		{"12.5", 12.5},
		{" 7 ", 7},
		{"abc", 0},
		{3, 3},
		{int64(4), 4},
		{2.25, 2.25},
		{true, 1},
		{false, 0},
		{[]string{"x"}, 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Coerce(tc.in), "coerce(%v)", tc.in)
	}
}
