package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Months lists the objective keys in calendar order.
var Months = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// DefaultVATRate is applied when a customer has no VAT rate configured.
var DefaultVATRate = decimal.RequireFromString("0.25")

type StaticExpenseConfig struct {
	CogsPercentage            decimal.Decimal `json:"cogs_percentage" yaml:"cogs_percentage"`
	ShippingCostPerOrder      decimal.Decimal `json:"shipping_cost_per_order" yaml:"shipping_cost_per_order"`
	TransactionCostPercentage decimal.Decimal `json:"transaction_cost_percentage" yaml:"transaction_cost_percentage"`
	MarketingBureauCost       decimal.Decimal `json:"marketing_bureau_cost" yaml:"marketing_bureau_cost"`
	MarketingToolingCost      decimal.Decimal `json:"marketing_tooling_cost" yaml:"marketing_tooling_cost"`
	FixedExpenses             decimal.Decimal `json:"fixed_expenses" yaml:"fixed_expenses"`
}

type MonthObjective struct {
	RevenueTarget   decimal.Decimal `json:"revenue_target" yaml:"revenue_target"`
	MarketingBudget decimal.Decimal `json:"marketing_budget" yaml:"marketing_budget"`
}

// PropertyObjectives maps a lowercase month name to that month's targets.
type PropertyObjectives map[string]MonthObjective

// DefaultObjectives uses 1 rather than 0 so budget divisions stay defined.
func DefaultObjectives() PropertyObjectives {
	out := make(PropertyObjectives, len(Months))
	for _, m := range Months {
		out[m] = MonthObjective{RevenueTarget: decimal.NewFromInt(1), MarketingBudget: decimal.NewFromInt(1)}
	}
	return out
}

// CustomerSettings carries the vendor credentials and presentation choices.
type CustomerSettings struct {
	MetricPreference    string           `json:"metric_preference" yaml:"metric_preference"`
	StoreCurrency       string           `json:"store_currency" yaml:"store_currency"`
	RevenueType         string           `json:"revenue_type" yaml:"revenue_type"`
	VATRate             *decimal.Decimal `json:"vat_rate,omitempty" yaml:"vat_rate,omitempty"`
	ShopifyURL          string           `json:"shopify_url" yaml:"shopify_url"`
	ShopifyAccessToken  string           `json:"shopify_access_token,omitempty" yaml:"shopify_access_token"`
	FacebookAdAccountID string           `json:"facebook_ad_account_id" yaml:"facebook_ad_account_id"`
	MetaCountryCode     string           `json:"meta_country_code" yaml:"meta_country_code"`
	GoogleAdsCustomerID string           `json:"google_ads_customer_id" yaml:"google_ads_customer_id"`
}

func (s CustomerSettings) VAT() decimal.Decimal {
	if s.VATRate == nil {
		return DefaultVATRate
	}
	return *s.VATRate
}

// Customer is one property with its persisted configuration.
type Customer struct {
	ID             string              `json:"id" yaml:"id"`
	Name           string              `json:"name" yaml:"name"`
	Type           string              `json:"type" yaml:"type"`
	ParentID       string              `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Archived       bool                `json:"archived" yaml:"archived"`
	Settings       CustomerSettings    `json:"settings" yaml:"settings"`
	StaticExpenses StaticExpenseConfig `json:"static_expenses" yaml:"static_expenses"`
	Objectives     PropertyObjectives  `json:"objectives" yaml:"objectives"`
	CreatedAt      time.Time           `json:"created_at" yaml:"-"`
	UpdatedAt      time.Time           `json:"updated_at" yaml:"-"`
}

// ApplyDefaults fills the values an omitted field falls back to.
// Redacted returns a copy safe to send to API clients: write-only
// credentials are blanked.
func (c Customer) Redacted() Customer {
	c.Settings.ShopifyAccessToken = ""
	return c
}

func (c *Customer) ApplyDefaults() {
	if c.Type == "" {
		c.Type = "Shopify"
	}
	if c.Settings.MetricPreference == "" {
		c.Settings.MetricPreference = "ROAS/POAS"
	}
	if c.Settings.StoreCurrency == "" {
		c.Settings.StoreCurrency = "DKK"
	}
	if c.Settings.RevenueType == "" {
		c.Settings.RevenueType = "total_sales"
	}
	if c.Objectives == nil {
		c.Objectives = PropertyObjectives{}
	}
	def := DefaultObjectives()
	for _, m := range Months {
		if _, ok := c.Objectives[m]; !ok {
			c.Objectives[m] = def[m]
		}
	}
}

// Validate checks a customer once at the write boundary.
func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidConfig)
	}
	switch c.Type {
	case "", "Shopify", "WooCommerce", "Other":
	default:
		return fmt.Errorf("%w: unknown customer type %q", ErrInvalidConfig, c.Type)
	}
	switch c.Settings.MetricPreference {
	case "", "ROAS/POAS", "Spendshare":
	default:
		return fmt.Errorf("%w: unknown metric preference %q", ErrInvalidConfig, c.Settings.MetricPreference)
	}
	switch c.Settings.RevenueType {
	case "", "total_sales", "net_sales":
	default:
		return fmt.Errorf("%w: unknown revenue type %q", ErrInvalidConfig, c.Settings.RevenueType)
	}
	if c.Settings.VATRate != nil && !isFraction(*c.Settings.VATRate) {
		return fmt.Errorf("%w: vat_rate must be within [0,1]", ErrInvalidConfig)
	}

	e := c.StaticExpenses
	fractions := map[string]decimal.Decimal{
		"cogs_percentage":             e.CogsPercentage,
		"transaction_cost_percentage": e.TransactionCostPercentage,
	}
	for name, v := range fractions {
		if !isFraction(v) {
			return fmt.Errorf("%w: %s must be within [0,1]", ErrInvalidConfig, name)
		}
	}
	amounts := map[string]decimal.Decimal{
		"shipping_cost_per_order": e.ShippingCostPerOrder,
		"marketing_bureau_cost":   e.MarketingBureauCost,
		"marketing_tooling_cost":  e.MarketingToolingCost,
		"fixed_expenses":          e.FixedExpenses,
	}
	for name, v := range amounts {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
		}
	}

	for month, o := range c.Objectives {
		if !isMonth(month) {
			return fmt.Errorf("%w: unknown objective month %q", ErrInvalidConfig, month)
		}
		if o.MarketingBudget.IsNegative() || o.RevenueTarget.IsNegative() {
			return fmt.Errorf("%w: %s objectives must not be negative", ErrInvalidConfig, month)
		}
	}
	return nil
}

func isFraction(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
}

func isMonth(s string) bool {
	for _, m := range Months {
		if m == s {
			return true
		}
	}
	return false
}
