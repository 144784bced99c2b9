package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/AngelCh415/perfdash/internal/models"
)

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
	one      = decimal.NewFromInt(1)
)

// Cost is the combined ad spend of a row.
func Cost(row models.JoinedDailyRow) decimal.Decimal {
	return row.SocialSpend.Add(row.SearchSpend)
}

// ROAS is revenue over cost, undefined when there is no cost.
func ROAS(revenue, cost decimal.Decimal) decimal.NullDecimal {
	if !cost.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(revenue.Div(cost))
}

// POAS is ((revenue*cogsPct) - cost) / cost, undefined when there is no cost.
func POAS(revenue, cost, cogsPct decimal.Decimal) decimal.NullDecimal {
	if !cost.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(revenue.Mul(cogsPct).Sub(cost).Div(cost))
}

// AOV is revenue per order, undefined without orders.
func AOV(revenue decimal.Decimal, orders int64) decimal.NullDecimal {
	if orders <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(revenue.Div(decimal.NewFromInt(orders)))
}

// CAC is marketing spend per order, undefined without orders.
func CAC(cost decimal.Decimal, orders int64) decimal.NullDecimal {
	if orders <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(cost.Div(decimal.NewFromInt(orders)))
}

// The delivery ratios below fall back to 0, unlike ROAS/POAS/AOV.

func CTR(clicks, impressions int64) decimal.Decimal {
	if impressions <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(clicks).Div(decimal.NewFromInt(impressions))
}

func CPC(spend decimal.Decimal, clicks int64) decimal.Decimal {
	if clicks <= 0 {
		return decimal.Zero
	}
	return spend.Div(decimal.NewFromInt(clicks))
}

func CPM(spend decimal.Decimal, impressions int64) decimal.Decimal {
	if impressions <= 0 {
		return decimal.Zero
	}
	return spend.Div(decimal.NewFromInt(impressions)).Mul(thousand)
}

func ConvRate(conversions decimal.Decimal, clicks int64) decimal.Decimal {
	if clicks <= 0 {
		return decimal.Zero
	}
	return conversions.Div(decimal.NewFromInt(clicks))
}

func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// ExTax strips VAT from a gross amount.
func ExTax(gross, vatRate decimal.Decimal) decimal.Decimal {
	return gross.Div(one.Add(vatRate))
}

// EffectiveCogs is the percentage used for POAS: an unset (zero) COGS
// percentage counts as 1.
func EffectiveCogs(e models.StaticExpenseConfig) decimal.Decimal {
	if e.CogsPercentage.IsZero() {
		return one
	}
	return e.CogsPercentage
}

// Daily derives the per-day ratios of joined rows.
func Daily(rows []models.JoinedDailyRow, cogsPct, vatRate decimal.Decimal) []models.DailyMetrics {
	out := make([]models.DailyMetrics, 0, len(rows))
	for _, r := range rows {
		cost := Cost(r)
		out = append(out, models.DailyMetrics{
			JoinedDailyRow: r,
			RevenueExTax:   ExTax(r.RevenueGross, vatRate),
			Cost:           cost,
			ROAS:           ROAS(r.RevenueGross, cost),
			POAS:           POAS(r.RevenueGross, cost, cogsPct),
			AOV:            AOV(r.RevenueGross, r.Orders),
		})
	}
	return out
}

// Aggregate sums the rows first and divides the sums, so a period ratio is
// never an average of daily ratios.
func Aggregate(rows []models.JoinedDailyRow, cogsPct, vatRate decimal.Decimal) models.AggregateMetrics {
	var agg models.AggregateMetrics
	for _, r := range rows {
		agg.Revenue = agg.Revenue.Add(r.RevenueGross)
		agg.Orders += r.Orders
		agg.SocialSpend = agg.SocialSpend.Add(r.SocialSpend)
		agg.SearchSpend = agg.SearchSpend.Add(r.SearchSpend)
	}
	agg.RevenueExTax = ExTax(agg.Revenue, vatRate)
	agg.Cost = agg.SocialSpend.Add(agg.SearchSpend)
	agg.ROAS = ROAS(agg.Revenue, agg.Cost)
	agg.POAS = POAS(agg.Revenue, agg.Cost, cogsPct)
	agg.AOV = AOV(agg.Revenue, agg.Orders)
	agg.CAC = CAC(agg.Cost, agg.Orders)
	return agg
}

// Channel derives one ad source's delivery metrics per day and in total,
// plus its topN campaigns and their day series. recs may hold one row per
// date and campaign; days are summed across campaigns.
func Channel(source string, recs []models.DailyRecord, topN int) models.ChannelSummary {
	days := SumByDate(recs)
	sum := models.ChannelSummary{Source: source, Daily: make([]models.ChannelDay, 0, len(days))}
	var total models.ChannelDay
	for _, r := range days {
		day := channelDay(r.Date, r.Spend, r.Clicks, r.Impressions, r.Conversions, r.ConversionValue)
		sum.Daily = append(sum.Daily, day)
		total.Spend = total.Spend.Add(r.Spend)
		total.Clicks += max0(r.Clicks)
		total.Impressions += max0(r.Impressions)
		total.Conversions = total.Conversions.Add(r.Conversions)
		total.ConversionValue = total.ConversionValue.Add(r.ConversionValue)
	}
	sum.Total = channelDay("", total.Spend, total.Clicks, total.Impressions, total.Conversions, total.ConversionValue)
	sum.TopCampaigns = TopCampaigns(recs, topN)
	sum.CampaignsByDate = CampaignsByDate(recs, sum.TopCampaigns)
	return sum
}

func channelDay(date string, spend decimal.Decimal, clicks, impressions int64, conv, convValue decimal.Decimal) models.ChannelDay {
	clicks, impressions = max0(clicks), max0(impressions)
	return models.ChannelDay{
		Date:            normDate(date),
		Spend:           spend,
		Clicks:          clicks,
		Impressions:     impressions,
		Conversions:     conv,
		ConversionValue: convValue,
		CTR:             CTR(clicks, impressions),
		CPC:             CPC(spend, clicks),
		CPM:             CPM(spend, impressions),
		ConvRate:        ConvRate(conv, clicks),
		ROAS:            safeDiv(convValue, spend),
	}
}
