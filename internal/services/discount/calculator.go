// Package discount prices orders for senior citizen and PWD customers. Everything here is
// pure: prices are always recomputed from the original unit price, so toggling eligibility
// on and off lands back on the undiscounted order.
package discount

import (
	"github.com/shopspring/decimal"

	"restaurant-pos/internal/models"
)

var (
	// Rate is the senior/PWD discount on each unit
	Rate = decimal.RequireFromString("0.20")
	// VATRate is the value added tax included in every total
	VATRate = decimal.RequireFromString("0.12")
	// LegacyRate is printed on receipts of orders that carry no discount amount
	LegacyRate = decimal.RequireFromString("0.15")
)

// Result is a repriced order
type Result struct {
	Items         []models.OrderItem
	TotalPrice    decimal.Decimal
	TotalDiscount decimal.Decimal
}

// Apply sets every line's discounted price and sums the order
func Apply(items []models.OrderItem, eligible bool) Result {
	res := Result{
		Items:         make([]models.OrderItem, len(items)),
		TotalPrice:    decimal.Zero,
		TotalDiscount: decimal.Zero,
	}

	for i, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		unitDiscount := decimal.Zero
		if eligible {
			unitDiscount = item.Price.Mul(Rate)
		}

		item.DiscountedPrice = item.Price.Sub(unitDiscount)
		res.Items[i] = item
		res.TotalPrice = res.TotalPrice.Add(item.DiscountedPrice.Mul(qty))
		res.TotalDiscount = res.TotalDiscount.Add(unitDiscount.Mul(qty))
	}
	return res
}

// Breakdown is the tax split printed under the items
type Breakdown struct {
	VAT      decimal.Decimal
	Subtotal decimal.Decimal
}

// Split takes the VAT out of a tax-inclusive total
func Split(total decimal.Decimal) Breakdown {
	vat := total.Mul(VATRate)
	return Breakdown{
		VAT:      vat,
		Subtotal: total.Sub(vat),
	}
}

// LegacyDiscount is the fixed-rate discount shown when an order has no discount amount
func LegacyDiscount(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(LegacyRate).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Format renders an amount with two decimals
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
