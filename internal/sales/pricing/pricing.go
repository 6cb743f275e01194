// Package pricing derives sell prices from cost and margin and rolls item
// lines up into quotation totals.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Line is a priced quotation item.
type Line struct {
	CostPrice decimal.Decimal
	SellPrice decimal.Decimal
	Quantity  int
	TotalCost decimal.Decimal
	TotalSell decimal.Decimal
}

// Totals aggregates priced lines.
type Totals struct {
	TotalCost   decimal.Decimal
	TotalSell   decimal.Decimal
	TotalProfit decimal.Decimal
	// Margin is nil when neither the lines nor the previous value define one.
	Margin *decimal.Decimal
}

// ResolveMargin picks the item override, then the quotation default, then zero.
func ResolveMargin(itemOverride, quotationDefault *decimal.Decimal) decimal.Decimal {
	if itemOverride != nil {
		return *itemOverride
	}
	if quotationDefault != nil {
		return *quotationDefault
	}
	return decimal.Zero
}

// SellPrice returns cost + cost*margin/100.
func SellPrice(cost, margin decimal.Decimal) decimal.Decimal {
	return cost.Add(cost.Mul(margin).Div(hundred))
}

// PriceLine prices quantity units of a service at the given cost and margin.
func PriceLine(cost decimal.Decimal, quantity int, margin decimal.Decimal) Line {
	qty := decimal.NewFromInt(int64(quantity))
	sell := SellPrice(cost, margin)
	return Line{
		CostPrice: cost,
		SellPrice: sell,
		Quantity:  quantity,
		TotalCost: cost.Mul(qty),
		TotalSell: sell.Mul(qty),
	}
}

// Summarize sums line totals. The effective margin is recomputed as
// profit/cost*100 when cost is positive; otherwise current is kept.
func Summarize(lines []Line, current *decimal.Decimal) Totals {
	totals := Totals{TotalCost: decimal.Zero, TotalSell: decimal.Zero}
	for _, l := range lines {
		totals.TotalCost = totals.TotalCost.Add(l.TotalCost)
		totals.TotalSell = totals.TotalSell.Add(l.TotalSell)
	}
	totals.TotalProfit = totals.TotalSell.Sub(totals.TotalCost)
	if totals.TotalCost.IsPositive() {
		m := totals.TotalProfit.Div(totals.TotalCost).Mul(hundred)
		totals.Margin = &m
	} else if current != nil {
		m := *current
		totals.Margin = &m
	}
	return totals
}
