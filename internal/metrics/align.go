package metrics

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AngelCh415/perfdash/internal/models"
)

// Align joins the two spend series onto the revenue series' dates. The
// revenue series defines the date axis and its order: spend on a date with
// no revenue record is dropped, and a revenue date without spend gets 0.
// A date repeated within a spend series keeps its last value.
func Align(revenue, social, search []models.DailyRecord) []models.JoinedDailyRow {
	socialByDate := spendByDate(social)
	searchByDate := spendByDate(search)

	out := make([]models.JoinedDailyRow, 0, len(revenue))
	for _, r := range revenue {
		d := normDate(r.Date)
		out = append(out, models.JoinedDailyRow{
			Date:         d,
			Orders:       max0(r.Orders),
			RevenueGross: r.Revenue,
			SocialSpend:  spendOrZero(socialByDate, d),
			SearchSpend:  spendOrZero(searchByDate, d),
		})
	}
	return out
}

func spendByDate(recs []models.DailyRecord) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(recs))
	for _, r := range recs {
		m[normDate(r.Date)] = r.Spend
	}
	return m
}

func spendOrZero(m map[string]decimal.Decimal, date string) decimal.Decimal {
	if v, ok := m[date]; ok {
		return v
	}
	return decimal.Zero
}

func normDate(s string) string { return strings.TrimSpace(s) }

func max0(i int64) int64 {
	if i < 0 {
		return 0
	}
	return i
}
