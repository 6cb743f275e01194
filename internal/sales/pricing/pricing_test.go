package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func TestPriceLineWorkedExample(t *testing.T) {
	line := PriceLine(d("100"), 2, d("25"))

	assert.True(t, line.SellPrice.Equal(d("125")), line.SellPrice.String())
	assert.True(t, line.TotalCost.Equal(d("200")))
	assert.True(t, line.TotalSell.Equal(d("250")))

	totals := Summarize([]Line{line}, ptr("25"))
	assert.True(t, totals.TotalProfit.Equal(d("50")))
	require.NotNil(t, totals.Margin)
	assert.True(t, totals.Margin.Equal(d("25")))
}

func TestResolveMarginPrecedence(t *testing.T) {
	assert.True(t, ResolveMargin(ptr("10"), ptr("25")).Equal(d("10")))
	assert.True(t, ResolveMargin(nil, ptr("25")).Equal(d("25")))
	assert.True(t, ResolveMargin(nil, nil).IsZero())
	assert.True(t, ResolveMargin(ptr("0"), ptr("25")).IsZero(), "explicit zero override wins")
}

func TestSellPriceMatchesMarkupFormula(t *testing.T) {
	cases := []struct{ cost, margin string }{
		{"100", "25"},
		{"3450.75", "12.5"},
		{"999.99", "0"},
		{"80", "-10"},
		{"0", "40"},
	}
	for _, tc := range cases {
		cost, margin := d(tc.cost), d(tc.margin)
		want := cost.Mul(decimal.NewFromInt(1).Add(margin.Div(hundred)))
		got := SellPrice(cost, margin)
		assert.True(t, got.Equal(want), "cost=%s margin=%s got=%s want=%s", tc.cost, tc.margin, got, want)
	}
}

func TestSummarizeProfitIsSellMinusCost(t *testing.T) {
	lines := []Line{
		PriceLine(d("15000"), 3, d("20")),
		PriceLine(d("4200.50"), 1, d("35")),
		PriceLine(d("750"), 4, d("0")),
	}
	totals := Summarize(lines, nil)

	assert.True(t, totals.TotalProfit.Equal(totals.TotalSell.Sub(totals.TotalCost)))
	assert.True(t, totals.TotalCost.Equal(d("52200.5")))
	require.NotNil(t, totals.Margin)
	want := totals.TotalProfit.Div(totals.TotalCost).Mul(hundred)
	assert.True(t, totals.Margin.Equal(want))
}

func TestSummarizeKeepsMarginWhenCostIsZero(t *testing.T) {
	totals := Summarize(nil, ptr("25"))
	assert.True(t, totals.TotalCost.IsZero())
	assert.True(t, totals.TotalProfit.IsZero())
	require.NotNil(t, totals.Margin)
	assert.True(t, totals.Margin.Equal(d("25")))

	free := Summarize([]Line{PriceLine(d("0"), 2, d("30"))}, nil)
	assert.Nil(t, free.Margin)
}
