package receipt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"restaurant-pos/internal/models"
	"restaurant-pos/internal/services/discount"
)

const (
	qtyWidth      = 3
	priceWidth    = 8
	subtotalWidth = 9
)

// Formatter lays a receipt out for a fixed-width thermal printer
type Formatter struct {
	Width      int
	Restaurant string
	Now        func() time.Time
}

// NewFormatter creates a formatter for a paper roll width columns wide
func NewFormatter(width int, restaurant string) *Formatter {
	return &Formatter{
		Width:      width,
		Restaurant: restaurant,
		Now:        time.Now,
	}
}

// Abbreviate drops the vowels of every word and joins the capitalized rest
func Abbreviate(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		consonants := strings.Map(func(r rune) rune {
			if strings.ContainsRune("aeiouAEIOU", r) {
				return -1
			}
			return r
		}, word)
		if consonants == "" {
			continue
		}
		first, size := utf8.DecodeRuneInString(consonants)
		b.WriteRune(unicode.ToUpper(first))
		b.WriteString(consonants[size:])
	}
	return b.String()
}

// Totals are the amounts printed under the items
type Totals struct {
	VAT      decimal.Decimal
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Compute sums the receipt. Lines are charged at their discounted price when one is set,
// and a receipt without a discount amount shows the fixed-rate legacy discount.
func Compute(r models.Receipt) Totals {
	total := decimal.Zero
	for _, item := range r.Items {
		price := item.Price
		if !item.DiscountedPrice.IsZero() {
			price = item.DiscountedPrice
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	total = total.Round(2)

	vat := discount.Split(total).VAT.Round(2)
	d := discount.LegacyDiscount(r.Items)
	if r.TotalDiscount != nil {
		d = *r.TotalDiscount
	}

	return Totals{
		VAT:      vat,
		Subtotal: total.Sub(vat),
		Discount: d,
		Total:    total,
	}
}

// Format renders the receipt as printable text
func (f *Formatter) Format(r models.Receipt) string {
	var b strings.Builder
	divider := strings.Repeat("-", f.Width)

	b.WriteString(f.center(strconv.FormatInt(r.OrderNumber, 10)))
	b.WriteString(f.center(strings.ToUpper(f.Restaurant) + " BILL"))
	b.WriteString("\n")
	f.line(&b, "Trans. No: "+r.TransactionNumber)
	f.line(&b, fmt.Sprintf("Table No: %d", r.TableNumber))
	f.line(&b, "Dine-in/Takeout: "+string(r.DineInOrTakeout))
	f.line(&b, "Cashier: "+r.CashierName)
	f.line(&b, divider)

	nameWidth := f.nameWidth()
	f.line(&b, fmt.Sprintf("%-*s %-*s %*s %*s",
		qtyWidth, "Qty", nameWidth, "Item", priceWidth, "Price", subtotalWidth, "Subtotal"))
	for _, item := range r.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		f.line(&b, fmt.Sprintf("%-*d %-*s %*s %*s",
			qtyWidth, item.Quantity,
			nameWidth, truncate(Abbreviate(item.Name), nameWidth),
			priceWidth, discount.Format(item.Price),
			subtotalWidth, discount.Format(item.Price.Mul(qty))))
	}

	totals := Compute(r)
	f.amount(&b, "VAT", totals.VAT)
	f.amount(&b, "Subtotal", totals.Subtotal)
	f.amount(&b, "Discount", totals.Discount)
	f.amount(&b, "Total", totals.Total)

	f.line(&b, divider)
	f.line(&b, "Payment Method: Cash")
	f.line(&b, "Date: "+f.Now().Format("01/02/2006 15:04:05"))
	b.WriteString("\n")
	b.WriteString(f.center("Thank you for your purchase!"))
	b.WriteString(f.center("Visit us again!"))
	f.line(&b, divider)
	b.WriteString("\n")

	return b.String()
}

func (f *Formatter) nameWidth() int {
	return f.Width - qtyWidth - priceWidth - subtotalWidth - 3
}

func (f *Formatter) line(b *strings.Builder, s string) {
	b.WriteString(truncate(s, f.Width))
	b.WriteString("\n")
}

func (f *Formatter) amount(b *strings.Builder, label string, d decimal.Decimal) {
	f.line(b, fmt.Sprintf("%*s %*s", f.Width-subtotalWidth-1, label, subtotalWidth, discount.Format(d)))
}

func (f *Formatter) center(s string) string {
	s = truncate(s, f.Width)
	pad := (f.Width - utf8.RuneCountInString(s)) / 2
	return strings.Repeat(" ", pad) + s + "\n"
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}
