package models

import (
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of every calendar date.
const DateLayout = "2006-01-02"

// DailyRecord is one source's figures for one calendar date, as normalized by
// a vendor adapter. Fields a source does not report stay zero. Ad sources
// emit one record per date and campaign; Campaign is empty otherwise.
type DailyRecord struct {
	Date            string          `json:"date"`
	Campaign        string          `json:"campaign,omitempty"`
	Revenue         decimal.Decimal `json:"revenue"`
	Orders          int64           `json:"orders"`
	Spend           decimal.Decimal `json:"spend"`
	Clicks          int64           `json:"clicks"`
	Impressions     int64           `json:"impressions"`
	Conversions     decimal.Decimal `json:"conversions"`
	ConversionValue decimal.Decimal `json:"conversion_value"`
}

// JoinedDailyRow is a revenue day with the spend of both ad sources attached.
type JoinedDailyRow struct {
	Date         string          `json:"date"`
	Orders       int64           `json:"orders"`
	RevenueGross decimal.Decimal `json:"revenue_gross"`
	SocialSpend  decimal.Decimal `json:"social_spend"`
	SearchSpend  decimal.Decimal `json:"search_spend"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

type SourceStatus string

const (
	SourceOK       SourceStatus = "ok"
	SourceDegraded SourceStatus = "degraded"
)

// Source names.
const (
	SourceRevenue = "revenue"
	SourceSocial  = "social"
	SourceSearch  = "search"
)

// SourceResult tags a fetched series so that "no spend" and "fetch failed"
// stay distinguishable. A degraded source always carries an empty series.
type SourceResult struct {
	Source  string        `json:"source"`
	Status  SourceStatus  `json:"status"`
	Reason  string        `json:"reason,omitempty"`
	Records []DailyRecord `json:"-"`
}

func OK(source string, recs []DailyRecord) SourceResult {
	return SourceResult{Source: source, Status: SourceOK, Records: recs}
}

func Degraded(source, reason string) SourceResult {
	return SourceResult{Source: source, Status: SourceDegraded, Reason: reason, Records: []DailyRecord{}}
}
