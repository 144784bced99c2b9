package models

import "github.com/shopspring/decimal"

// DailyMetrics is a joined day with its derived ratios. A ratio without a
// defined value (zero denominator) is null, not zero.
type DailyMetrics struct {
	JoinedDailyRow
	RevenueExTax decimal.Decimal     `json:"revenue_ex_tax"`
	Cost         decimal.Decimal     `json:"cost"`
	ROAS         decimal.NullDecimal `json:"roas"`
	POAS         decimal.NullDecimal `json:"poas"`
	AOV          decimal.NullDecimal `json:"aov"`
}

// AggregateMetrics sums numerators and denominators over a period before
// dividing.
type AggregateMetrics struct {
	Revenue      decimal.Decimal     `json:"revenue"`
	RevenueExTax decimal.Decimal     `json:"revenue_ex_tax"`
	Orders       int64               `json:"orders"`
	SocialSpend  decimal.Decimal     `json:"social_spend"`
	SearchSpend  decimal.Decimal     `json:"search_spend"`
	Cost         decimal.Decimal     `json:"cost"`
	ROAS         decimal.NullDecimal `json:"roas"`
	POAS         decimal.NullDecimal `json:"poas"`
	AOV          decimal.NullDecimal `json:"aov"`
	CAC          decimal.NullDecimal `json:"cac"`
}

// ChannelDay holds one ad channel's delivery figures for a day, a campaign,
// or a campaign on a day. Its ratios use 0 when the denominator is missing.
type ChannelDay struct {
	Date            string          `json:"date,omitempty"`
	Campaign        string          `json:"campaign,omitempty"`
	Spend           decimal.Decimal `json:"spend"`
	Clicks          int64           `json:"clicks"`
	Impressions     int64           `json:"impressions"`
	Conversions     decimal.Decimal `json:"conversions"`
	ConversionValue decimal.Decimal `json:"conversion_value"`
	CTR             decimal.Decimal `json:"ctr"`
	CPC             decimal.Decimal `json:"cpc"`
	CPM             decimal.Decimal `json:"cpm"`
	ConvRate        decimal.Decimal `json:"conv_rate"`
	ROAS            decimal.Decimal `json:"roas"`
}

// ChannelSummary is one ad channel's day series and totals, plus its
// highest-ranked campaigns and their day series.
type ChannelSummary struct {
	Source          string       `json:"source"`
	Daily           []ChannelDay `json:"daily"`
	Total           ChannelDay   `json:"total"`
	TopCampaigns    []ChannelDay `json:"top_campaigns"`
	CampaignsByDate []ChannelDay `json:"campaigns_by_date"`
}

// Waterfall is the DB1/DB2/DB3 margin cascade for a period.
type Waterfall struct {
	Revenue                  decimal.Decimal `json:"revenue"`
	Orders                   int64           `json:"orders"`
	Days                     int             `json:"days"`
	COGS                     decimal.Decimal `json:"cogs"`
	DB1                      decimal.Decimal `json:"db1"`
	Shipping                 decimal.Decimal `json:"shipping"`
	TransactionCosts         decimal.Decimal `json:"transaction_costs"`
	DB2                      decimal.Decimal `json:"db2"`
	MarketingSpend           decimal.Decimal `json:"marketing_spend"`
	MarketingBureauProrated  decimal.Decimal `json:"marketing_bureau_prorated"`
	MarketingToolingProrated decimal.Decimal `json:"marketing_tooling_prorated"`
	DB3                      decimal.Decimal `json:"db3"`
	FixedExpensesProrated    decimal.Decimal `json:"fixed_expenses_prorated"`
	Result                   decimal.Decimal `json:"result"`
	TotalCosts               decimal.Decimal `json:"total_costs"`
	RealizedROAS             decimal.Decimal `json:"realized_roas"`
	BreakEvenROAS            decimal.Decimal `json:"break_even_roas"`
	DB1Pct                   decimal.Decimal `json:"db1_pct"`
	DB2Pct                   decimal.Decimal `json:"db2_pct"`
	DB3Pct                   decimal.Decimal `json:"db3_pct"`
}

type CumulativePoint struct {
	Date            string          `json:"date"`
	CumulativeSpend decimal.Decimal `json:"cumulative_spend"`
}

type BudgetPoint struct {
	Date   string          `json:"date"`
	Budget decimal.Decimal `json:"budget"`
}

type PaceAnalysis struct {
	Budget                   decimal.Decimal   `json:"budget"`
	TotalDays                int               `json:"total_days"`
	DailyTarget              decimal.Decimal   `json:"daily_target"`
	IdealSpendToDate         decimal.Decimal   `json:"ideal_spend_to_date"`
	ActualSpendToDate        decimal.Decimal   `json:"actual_spend_to_date"`
	Pace                     decimal.Decimal   `json:"pace"`
	DaysLeft                 int               `json:"days_left"`
	SuggestedDailyAdjustment decimal.Decimal   `json:"suggested_daily_adjustment"`
	SpendDaily               []CumulativePoint `json:"spend_daily"`
	BudgetDaily              []BudgetPoint     `json:"budget_daily"`
}

type MetricDelta struct {
	Metric        string              `json:"metric"`
	Current       decimal.NullDecimal `json:"current"`
	Previous      decimal.NullDecimal `json:"previous"`
	Delta         decimal.NullDecimal `json:"delta"`
	PercentChange decimal.NullDecimal `json:"percent_change"`
}

type Comparison struct {
	Kind    string           `json:"kind"`
	Range   DateRange        `json:"range"`
	Sources []SourceResult   `json:"sources"`
	Daily   []DailyMetrics   `json:"daily"`
	Totals  AggregateMetrics `json:"totals"`
	Deltas  []MetricDelta    `json:"deltas"`
}

// Comparison kinds.
const (
	ComparePriorPeriod = "prior_period"
	CompareLastYear    = "last_year"
)

// Report is everything the dashboard needs for one customer and range.
type Report struct {
	CustomerID  string           `json:"customer_id"`
	Currency    string           `json:"currency"`
	Range       DateRange        `json:"range"`
	Sources     []SourceResult   `json:"sources"`
	Daily       []DailyMetrics   `json:"daily"`
	Totals      AggregateMetrics `json:"totals"`
	Social      ChannelSummary   `json:"social"`
	Search      ChannelSummary   `json:"search"`
	Waterfall   Waterfall        `json:"waterfall"`
	Pace        PaceAnalysis     `json:"pace"`
	Comparisons []Comparison     `json:"comparisons"`
}
