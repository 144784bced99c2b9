package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/AngelCh415/perfdash/internal/models"
)

// ComputeWaterfall derives the margin cascade. Monthly expenses are prorated
// by the range's day count, not the calendar month's. The stage order is
// fixed: each DB level is computed from the previous one.
func ComputeWaterfall(revenue decimal.Decimal, orders int64, socialSpend, searchSpend decimal.Decimal, e models.StaticExpenseConfig, days int) models.Waterfall {
	w := models.Waterfall{Revenue: revenue, Orders: orders, Days: days}
	if days <= 0 {
		days = 1
	}
	d := decimal.NewFromInt(int64(days))

	w.COGS = revenue.Mul(e.CogsPercentage)
	w.DB1 = revenue.Sub(w.COGS)

	w.Shipping = decimal.NewFromInt(orders).Mul(e.ShippingCostPerOrder)
	w.TransactionCosts = revenue.Mul(e.TransactionCostPercentage)
	w.DB2 = w.DB1.Sub(w.Shipping).Sub(w.TransactionCosts)

	w.MarketingSpend = socialSpend.Add(searchSpend)
	w.MarketingBureauProrated = e.MarketingBureauCost.Div(d)
	w.MarketingToolingProrated = e.MarketingToolingCost.Div(d)
	w.DB3 = w.DB2.Sub(w.MarketingSpend).Sub(w.MarketingBureauProrated).Sub(w.MarketingToolingProrated)

	w.FixedExpensesProrated = e.FixedExpenses.Div(d)
	w.Result = w.DB3.Sub(w.FixedExpensesProrated)

	w.TotalCosts = w.COGS.
		Add(w.Shipping).
		Add(w.TransactionCosts).
		Add(w.MarketingSpend).
		Add(w.MarketingBureauProrated).
		Add(w.MarketingToolingProrated).
		Add(w.FixedExpensesProrated)

	// 0 rather than null at this level.
	w.RealizedROAS = safeDiv(revenue, w.MarketingSpend)
	w.BreakEvenROAS = safeDiv(w.TotalCosts, w.MarketingSpend)

	w.DB1Pct = safeDiv(w.DB1, revenue).Mul(hundred)
	w.DB2Pct = safeDiv(w.DB2, revenue).Mul(hundred)
	w.DB3Pct = safeDiv(w.DB3, revenue).Mul(hundred)
	return w
}
