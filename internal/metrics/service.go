package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/perfdash/internal/models"
	"github.com/AngelCh415/perfdash/internal/observability"
)

// CustomerProvider loads a customer's persisted configuration.
type CustomerProvider interface {
	Get(ctx context.Context, id string) (models.Customer, error)
}

// RevenueProvider returns the store's daily revenue and orders.
type RevenueProvider interface {
	RevenueSeries(ctx context.Context, s models.CustomerSettings, start, end string) ([]models.DailyRecord, error)
}

// SocialProvider returns the social-ads account's daily delivery.
type SocialProvider interface {
	SocialSeries(ctx context.Context, s models.CustomerSettings, start, end string) ([]models.DailyRecord, error)
}

// SearchProvider returns the search-ads account's daily delivery, with cost
// already in currency units.
type SearchProvider interface {
	SearchSeries(ctx context.Context, s models.CustomerSettings, start, end string) ([]models.DailyRecord, error)
}

// Campaign ranking depth per ad source.
const (
	socialTopCampaigns = 5
	searchTopCampaigns = 1000
)

type Service struct {
	customers CustomerProvider
	revenue   RevenueProvider
	social    SocialProvider
	search    SearchProvider
	log       *slog.Logger
}

func NewService(customers CustomerProvider, revenue RevenueProvider, social SocialProvider, search SearchProvider, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{customers: customers, revenue: revenue, social: social, search: search, log: log}
}

// period is one fetched date range with its three tagged sources.
type period struct {
	start, end time.Time
	revenue    models.SourceResult
	social     models.SourceResult
	search     models.SourceResult
}

func (p period) sources() []models.SourceResult {
	return []models.SourceResult{p.revenue, p.social, p.search}
}

// BuildReport assembles the full report for a customer and an inclusive
// date range. Vendor failures only degrade their source; a bad range or a
// missing customer is returned as an error.
func (s *Service) BuildReport(ctx context.Context, customerID, start, end string) (models.Report, error) {
	began := time.Now()
	rep, err := s.buildReport(ctx, customerID, start, end)
	observability.ObserveReport(err, time.Since(began))
	return rep, err
}

func (s *Service) buildReport(ctx context.Context, customerID, start, end string) (models.Report, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return models.Report{}, models.ErrMissingCustomerID
	}
	from, to, err := ParseRange(start, end)
	if err != nil {
		return models.Report{}, err
	}
	cust, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return models.Report{}, fmt.Errorf("load customer %s: %w", customerID, err)
	}

	prevFrom, prevTo := PriorPeriod(from, to)
	lyFrom, lyTo := SameRangeLastYear(from, to)
	periods := []*period{
		{start: from, end: to},
		{start: prevFrom, end: prevTo},
		{start: lyFrom, end: lyTo},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range periods {
		g.Go(func() error {
			return s.fetch(gctx, cust, p)
		})
	}
	if err := g.Wait(); err != nil {
		return models.Report{}, err
	}

	cogs := EffectiveCogs(cust.StaticExpenses)
	vat := cust.Settings.VAT()
	cur := periods[0]

	rows := Align(cur.revenue.Records, SumByDate(cur.social.Records), SumByDate(cur.search.Records))
	totals := Aggregate(rows, cogs, vat)
	rng := NewRange(cur.start, cur.end)

	rep := models.Report{
		CustomerID: cust.ID,
		Currency:   cust.Settings.StoreCurrency,
		Range:      rng,
		Sources:    cur.sources(),
		Daily:      Daily(rows, cogs, vat),
		Totals:     totals,
		Social:     Channel(models.SourceSocial, cur.social.Records, socialTopCampaigns),
		Search:     Channel(models.SourceSearch, cur.search.Records, searchTopCampaigns),
		Waterfall:  ComputeWaterfall(totals.Revenue, totals.Orders, totals.SocialSpend, totals.SearchSpend, cust.StaticExpenses, rng.Days),
		Pace:       AnalyzePace(CumulativeSpend(cur.social.Records, cur.search.Records), cust.Objectives, cur.start, cur.end),
	}
	kinds := []string{models.ComparePriorPeriod, models.CompareLastYear}
	for i, p := range periods[1:] {
		prow := Align(p.revenue.Records, SumByDate(p.social.Records), SumByDate(p.search.Records))
		ptotals := Aggregate(prow, cogs, vat)
		rep.Comparisons = append(rep.Comparisons, models.Comparison{
			Kind:    kinds[i],
			Range:   NewRange(p.start, p.end),
			Sources: p.sources(),
			Daily:   Daily(prow, cogs, vat),
			Totals:  ptotals,
			Deltas:  Deltas(totals, ptotals),
		})
	}
	s.log.Debug("report built",
		slog.String("customer_id", cust.ID),
		slog.String("start", rng.Start),
		slog.String("end", rng.End),
		slog.Int("rows", len(rows)))
	return rep, nil
}

// fetch loads the three sources of one period concurrently. A vendor
// failure only degrades its own source; the only error returned is the
// context's.
func (s *Service) fetch(ctx context.Context, cust models.Customer, p *period) error {
	start, end := p.start.Format(models.DateLayout), p.end.Format(models.DateLayout)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.revenue = s.source(cust.ID, models.SourceRevenue, func() ([]models.DailyRecord, error) {
			if s.revenue == nil {
				return nil, models.ErrNotConfigured
			}
			return s.revenue.RevenueSeries(gctx, cust.Settings, start, end)
		})
		return gctx.Err()
	})
	g.Go(func() error {
		p.social = s.source(cust.ID, models.SourceSocial, func() ([]models.DailyRecord, error) {
			if s.social == nil {
				return nil, models.ErrNotConfigured
			}
			return s.social.SocialSeries(gctx, cust.Settings, start, end)
		})
		return gctx.Err()
	})
	g.Go(func() error {
		p.search = s.source(cust.ID, models.SourceSearch, func() ([]models.DailyRecord, error) {
			if s.search == nil {
				return nil, models.ErrNotConfigured
			}
			return s.search.SearchSeries(gctx, cust.Settings, start, end)
		})
		return gctx.Err()
	})
	return g.Wait()
}

func (s *Service) source(customerID, name string, fn func() ([]models.DailyRecord, error)) models.SourceResult {
	began := time.Now()
	recs, err := fn()
	var res models.SourceResult
	switch {
	case err == nil:
		if recs == nil {
			recs = []models.DailyRecord{}
		}
		res = models.OK(name, recs)
	case errors.Is(err, models.ErrNotConfigured):
		s.log.Debug("source not configured", slog.String("source", name), slog.String("customer_id", customerID), slog.String("err", err.Error()))
		res = models.Degraded(name, err.Error())
	default:
		s.log.Warn("vendor fetch failed", slog.String("source", name), slog.String("customer_id", customerID), slog.String("err", err.Error()))
		res = models.Degraded(name, err.Error())
	}
	observability.ObserveFetch(name, string(res.Status), time.Since(began))
	return res
}
