package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AngelCh415/perfdash/internal/models"
)

// CumulativeSpend merges both ad sources by date (union of their dates,
// ascending) and returns the running total rounded to cents.
func CumulativeSpend(series ...[]models.DailyRecord) []models.CumulativePoint {
	byDate := map[string]decimal.Decimal{}
	for _, recs := range series {
		for _, r := range recs {
			d := normDate(r.Date)
			byDate[d] = byDate[d].Add(r.Spend)
		}
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]models.CumulativePoint, 0, len(dates))
	running := decimal.Zero
	for _, d := range dates {
		running = running.Add(byDate[d])
		out = append(out, models.CumulativePoint{Date: d, CumulativeSpend: running.Round(2)})
	}
	return out
}

// MonthsInRange lists the lowercase month names of every calendar month the
// range touches, in order.
func MonthsInRange(start, end time.Time) []string {
	var out []string
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(last) {
		out = append(out, strings.ToLower(cursor.Month().String()))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return out
}

// RangeBudget sums the marketing budget of each month overlapping the range.
// A month spanned twice (ranges over a year) is counted twice. A zero sum
// becomes 1 so the pacing ratios stay defined.
func RangeBudget(objectives models.PropertyObjectives, start, end time.Time) decimal.Decimal {
	budget := decimal.Zero
	for _, m := range MonthsInRange(start, end) {
		if o, ok := objectives[m]; ok {
			budget = budget.Add(o.MarketingBudget)
		}
	}
	if budget.IsZero() {
		return one
	}
	return budget
}

// AnalyzePace compares cumulative spend with a linear spend of the range
// budget and suggests the daily spend needed for the rest of the end month.
func AnalyzePace(spend []models.CumulativePoint, objectives models.PropertyObjectives, start, end time.Time) models.PaceAnalysis {
	budget := RangeBudget(objectives, start, end)
	totalDays := DayCount(start, end)
	return Pace(spend, budget, totalDays, DaysInMonth(end))
}

// Pace holds the arithmetic of AnalyzePace once the budget, range length and
// length of the end month are known.
func Pace(spend []models.CumulativePoint, budget decimal.Decimal, totalDays, daysInMonth int) models.PaceAnalysis {
	if totalDays <= 0 {
		totalDays = 1
	}
	p := models.PaceAnalysis{
		Budget:     budget,
		TotalDays:  totalDays,
		SpendDaily: spend,
	}
	if p.SpendDaily == nil {
		p.SpendDaily = []models.CumulativePoint{}
	}
	p.DailyTarget = budget.Div(decimal.NewFromInt(int64(totalDays)))
	p.IdealSpendToDate = p.DailyTarget.Mul(decimal.NewFromInt(int64(totalDays)))
	if n := len(spend); n > 0 {
		p.ActualSpendToDate = spend[n-1].CumulativeSpend
	}
	if p.IdealSpendToDate.IsPositive() {
		p.Pace = p.ActualSpendToDate.Div(p.IdealSpendToDate)
	}

	p.DaysLeft = daysInMonth - totalDays
	if p.DaysLeft < 0 {
		p.DaysLeft = 0
	}
	remaining := budget.Sub(p.ActualSpendToDate)
	switch {
	case p.DaysLeft > 0:
		p.SuggestedDailyAdjustment = remaining.Div(decimal.NewFromInt(int64(p.DaysLeft)))
	case remaining.IsPositive():
		p.SuggestedDailyAdjustment = remaining
	}

	p.BudgetDaily = make([]models.BudgetPoint, 0, len(spend))
	for i, s := range spend {
		target := p.DailyTarget.Mul(decimal.NewFromInt(int64(i + 1)))
		p.BudgetDaily = append(p.BudgetDaily, models.BudgetPoint{Date: s.Date, Budget: target.Round(2)})
	}
	return p
}
