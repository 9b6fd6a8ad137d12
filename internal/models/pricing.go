package models

import "github.com/shopspring/decimal"

var (
	freeShippingOver = decimal.NewFromInt(100)
	flatShipping     = decimal.NewFromInt(10)
	taxRate          = decimal.RequireFromString("0.15")
)

// Line is the price-relevant part of a cart or order line.
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// Prices are the derived money fields of a cart or order.
type Prices struct {
	ItemsPrice    decimal.Decimal `json:"itemsPrice"`
	ShippingPrice decimal.Decimal `json:"shippingPrice"`
	TaxPrice      decimal.Decimal `json:"taxPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

// CalcPrices sums the lines and applies shipping and tax, rounding every
// component to cents.
func CalcPrices(lines []Line) Prices {
	items := decimal.Zero
	for _, l := range lines {
		items = items.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	items = items.Round(2)

	shipping := flatShipping
	if items.GreaterThan(freeShippingOver) || items.IsZero() {
		shipping = decimal.Zero
	}
	tax := items.Mul(taxRate).Round(2)

	return Prices{
		ItemsPrice:    items,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    items.Add(shipping).Add(tax).Round(2),
	}
}
