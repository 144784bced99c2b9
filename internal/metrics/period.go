package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AngelCh415/perfdash/internal/models"
)

// MaxRangeDays bounds a report range so month walks and vendor fetches stay
// finite.
const MaxRangeDays = 3 * 366

// ParseRange validates an ISO start/end pair. End before start, a range
// longer than MaxRangeDays, or a date that does not parse is the one input
// a report cannot recover from.
func ParseRange(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(models.DateLayout, strings.TrimSpace(start))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %q", models.ErrInvalidDateRange, start)
	}
	e, err := time.Parse(models.DateLayout, strings.TrimSpace(end))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %q", models.ErrInvalidDateRange, end)
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %s before start %s", models.ErrInvalidDateRange, end, start)
	}
	if n := DayCount(s, e); n > MaxRangeDays {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %d days exceeds %d", models.ErrInvalidDateRange, n, MaxRangeDays)
	}
	return s, e, nil
}

// DayCount is the inclusive number of UTC calendar days from start to end.
// It counts on Unix days, so it does not saturate the way a Duration does.
func DayCount(start, end time.Time) int {
	return int(unixDay(end)-unixDay(start)) + 1
}

func unixDay(t time.Time) int64 {
	sec := t.Unix()
	d := sec / 86400
	if sec%86400 < 0 {
		d--
	}
	return d
}

func NewRange(start, end time.Time) models.DateRange {
	return models.DateRange{
		Start: start.Format(models.DateLayout),
		End:   end.Format(models.DateLayout),
		Days:  DayCount(start, end),
	}
}

// PriorPeriod is the range of equal length that ends the day before start.
func PriorPeriod(start, end time.Time) (time.Time, time.Time) {
	days := DayCount(start, end)
	prevEnd := start.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(days - 1))
	return prevStart, prevEnd
}

// SameRangeLastYear moves both endpoints back one calendar year. A date
// that does not exist in the earlier year (Feb 29) becomes the last valid
// day of that month instead of rolling into the next one.
func SameRangeLastYear(start, end time.Time) (time.Time, time.Time) {
	return yearEarlier(start), yearEarlier(end)
}

func yearEarlier(t time.Time) time.Time {
	y, m, d := t.Date()
	if last := daysIn(y-1, m); d > last {
		d = last
	}
	return time.Date(y-1, m, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysInMonth is the length of the calendar month containing t.
func DaysInMonth(t time.Time) int {
	return daysIn(t.Year(), t.Month())
}

// PercentChange is (current-prior)/|prior|*100, undefined for a zero prior.
func PercentChange(current, prior decimal.Decimal) decimal.NullDecimal {
	if prior.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(current.Sub(prior).Div(prior.Abs()).Mul(hundred))
}

// Delta compares one metric across two periods. Either side being
// undefined leaves delta and percent change undefined too.
func Delta(metric string, current, prior decimal.NullDecimal) models.MetricDelta {
	md := models.MetricDelta{Metric: metric, Current: current, Previous: prior}
	if current.Valid && prior.Valid {
		md.Delta = decimal.NewNullDecimal(current.Decimal.Sub(prior.Decimal))
		md.PercentChange = PercentChange(current.Decimal, prior.Decimal)
	}
	return md
}

// Deltas compares the headline aggregates of two periods.
func Deltas(current, prior models.AggregateMetrics) []models.MetricDelta {
	valid := decimal.NewNullDecimal
	return []models.MetricDelta{
		Delta("revenue", valid(current.Revenue), valid(prior.Revenue)),
		Delta("orders", valid(decimal.NewFromInt(current.Orders)), valid(decimal.NewFromInt(prior.Orders))),
		Delta("cost", valid(current.Cost), valid(prior.Cost)),
		Delta("roas", current.ROAS, prior.ROAS),
		Delta("poas", current.POAS, prior.POAS),
		Delta("aov", current.AOV, prior.AOV),
		Delta("cac", current.CAC, prior.CAC),
	}
}
