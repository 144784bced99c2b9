package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/perfdash/internal/models"
)

type fakeCustomers map[string]models.Customer

func (f fakeCustomers) Get(_ context.Context, id string) (models.Customer, error) {
	c, ok := f[id]
	if !ok {
		return models.Customer{}, models.ErrNotFound
	}
	return c, nil
}

// fakeSeries serves canned records keyed by the requested start date.
type fakeSeries struct {
	mu     sync.Mutex
	byFrom map[string][]models.DailyRecord
	err    error
	calls  []string
	onCall func()
}

func (f *fakeSeries) series(start, end string) ([]models.DailyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, start+".."+end)
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.byFrom[start], nil
}

func (f *fakeSeries) RevenueSeries(_ context.Context, _ models.CustomerSettings, start, end string) ([]models.DailyRecord, error) {
	return f.series(start, end)
}

func (f *fakeSeries) SocialSeries(_ context.Context, _ models.CustomerSettings, start, end string) ([]models.DailyRecord, error) {
	return f.series(start, end)
}

func (f *fakeSeries) SearchSeries(_ context.Context, _ models.CustomerSettings, start, end string) ([]models.DailyRecord, error) {
	return f.series(start, end)
}

func testCustomer() models.Customer {
	c := models.Customer{
		ID:   "c1",
		Name: "Shop",
		StaticExpenses: models.StaticExpenseConfig{
			CogsPercentage: dec("0.4"),
		},
	}
	c.ApplyDefaults()
	c.Objectives["january"] = models.MonthObjective{RevenueTarget: dec("10000"), MarketingBudget: dec("3100")}
	return c
}

func newTestService(revenue, social, search *fakeSeries) *Service {
	var (
		rp RevenueProvider
		sp SocialProvider
		gp SearchProvider
	)
	if revenue != nil {
		rp = revenue
	}
	if social != nil {
		sp = social
	}
	if search != nil {
		gp = search
	}
	return NewService(fakeCustomers{"c1": testCustomer()}, rp, sp, gp, nil)
}

func TestBuildReportDegradesFailingSource(t *testing.T) {
	revenue := &fakeSeries{byFrom: map[string][]models.DailyRecord{
		"2025-01-01": {rev("2025-01-01", "1000", 10), rev("2025-01-02", "500", 5)},
		"2024-12-30": {rev("2024-12-30", "750", 5)},
	}}
	social := &fakeSeries{err: errors.New("facebook: status 500: boom")}
	search := &fakeSeries{byFrom: map[string][]models.DailyRecord{
		"2025-01-01": {spend("2025-01-01", "100")},
	}}

	rep, err := newTestService(revenue, social, search).BuildReport(context.Background(), " c1 ", "2025-01-01", "2025-01-02")
	require.NoError(t, err)

	assert.Equal(t, "c1", rep.CustomerID)
	assert.Equal(t, "DKK", rep.Currency)
	assert.Equal(t, models.DateRange{Start: "2025-01-01", End: "2025-01-02", Days: 2}, rep.Range)

	require.Len(t, rep.Sources, 3)
	assert.Equal(t, models.SourceOK, rep.Sources[0].Status)
	assert.Equal(t, models.SourceDegraded, rep.Sources[1].Status)
	assert.Contains(t, rep.Sources[1].Reason, "boom")
	assert.Equal(t, models.SourceOK, rep.Sources[2].Status)

	require.Len(t, rep.Daily, 2)
	assertDec(t, "0", rep.Daily[0].SocialSpend)
	assertDec(t, "100", rep.Daily[0].SearchSpend)
	assertNullDec(t, "10", rep.Daily[0].ROAS)
	assertNull(t, rep.Daily[1].ROAS)

	assertDec(t, "1500", rep.Totals.Revenue)
	assert.Equal(t, int64(15), rep.Totals.Orders)
	assertDec(t, "100", rep.Totals.Cost)
	assertNullDec(t, "15", rep.Totals.ROAS)
	assertNullDec(t, "100", rep.Totals.AOV)

	assert.Empty(t, rep.Social.Daily)
	assertDec(t, "100", rep.Search.Total.Spend)

	assertDec(t, "600", rep.Waterfall.COGS)
	assert.Equal(t, 2, rep.Waterfall.Days)

	assertDec(t, "3100", rep.Pace.Budget)
	assert.Equal(t, 2, rep.Pace.TotalDays)
	assert.Equal(t, 29, rep.Pace.DaysLeft)
	assertDec(t, "100", rep.Pace.ActualSpendToDate)
}

func TestBuildReportComparisons(t *testing.T) {
	revenue := &fakeSeries{byFrom: map[string][]models.DailyRecord{
		"2025-01-10": {rev("2025-01-10", "200", 2)},
		"2025-01-03": {rev("2025-01-03", "100", 1)},
	}}
	rep, err := newTestService(revenue, &fakeSeries{}, &fakeSeries{}).BuildReport(context.Background(), "c1", "2025-01-10", "2025-01-16")
	require.NoError(t, err)

	require.Len(t, rep.Comparisons, 2)
	prior := rep.Comparisons[0]
	assert.Equal(t, models.ComparePriorPeriod, prior.Kind)
	assert.Equal(t, models.DateRange{Start: "2025-01-03", End: "2025-01-09", Days: 7}, prior.Range)
	assertDec(t, "100", prior.Totals.Revenue)
	require.NotEmpty(t, prior.Deltas)
	assert.Equal(t, "revenue", prior.Deltas[0].Metric)
	assertNullDec(t, "100", prior.Deltas[0].Delta)
	assertNullDec(t, "100", prior.Deltas[0].PercentChange)

	ly := rep.Comparisons[1]
	assert.Equal(t, models.CompareLastYear, ly.Kind)
	assert.Equal(t, models.DateRange{Start: "2024-01-10", End: "2024-01-16", Days: 7}, ly.Range)
	assert.Empty(t, ly.Daily)
	assertDec(t, "0", ly.Totals.Revenue)
	assertNull(t, ly.Deltas[0].PercentChange)

	assert.ElementsMatch(t, []string{"2025-01-10..2025-01-16", "2025-01-03..2025-01-09", "2024-01-10..2024-01-16"}, revenue.calls)
}

func TestBuildReportUnconfiguredProvidersDegrade(t *testing.T) {
	rep, err := newTestService(nil, nil, nil).BuildReport(context.Background(), "c1", "2025-01-01", "2025-01-01")
	require.NoError(t, err)
	for _, s := range rep.Sources {
		assert.Equal(t, models.SourceDegraded, s.Status, s.Source)
	}
	assert.Empty(t, rep.Daily)
	assertNull(t, rep.Totals.ROAS)
}

func TestBuildReportErrors(t *testing.T) {
	svc := newTestService(&fakeSeries{}, &fakeSeries{}, &fakeSeries{})
	ctx := context.Background()

	_, err := svc.BuildReport(ctx, "  ", "2025-01-01", "2025-01-02")
	assert.ErrorIs(t, err, models.ErrMissingCustomerID)

	_, err = svc.BuildReport(ctx, "c1", "2025-01-05", "2025-01-01")
	assert.ErrorIs(t, err, models.ErrInvalidDateRange)

	_, err = svc.BuildReport(ctx, "c1", "2025-13-01", "2025-01-01")
	assert.ErrorIs(t, err, models.ErrInvalidDateRange)

	_, err = svc.BuildReport(ctx, "missing", "2025-01-01", "2025-01-02")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBuildReportCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestService(&fakeSeries{}, &fakeSeries{}, &fakeSeries{}).BuildReport(ctx, "c1", "2025-01-01", "2025-01-02")
	assert.ErrorIs(t, err, context.Canceled)
}

// waitingSeries blocks until its context is done.
type waitingSeries struct{}

func (waitingSeries) SocialSeries(ctx context.Context, _ models.CustomerSettings, _, _ string) ([]models.DailyRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestBuildReportCanceledDuringFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	revenue := &fakeSeries{onCall: cancel}
	svc := NewService(fakeCustomers{"c1": testCustomer()}, revenue, waitingSeries{}, &fakeSeries{}, nil)

	_, err := svc.BuildReport(ctx, "c1", "2025-01-01", "2025-01-02")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildReportCampaigns(t *testing.T) {
	revenue := &fakeSeries{byFrom: map[string][]models.DailyRecord{
		"2025-01-01": {rev("2025-01-01", "1000", 10), rev("2025-01-02", "500", 5)},
	}}
	var social []models.DailyRecord
	for i, name := range []string{"a", "b", "c", "d", "e", "f"} {
		social = append(social, models.DailyRecord{Date: "2025-01-01", Campaign: name, Spend: dec("10"), Clicks: int64(10 - i), Impressions: 100})
	}
	social = append(social, models.DailyRecord{Date: "2025-01-02", Campaign: "a", Spend: dec("40"), Clicks: 1, Impressions: 10})
	search := &fakeSeries{byFrom: map[string][]models.DailyRecord{
		"2025-01-01": {
			{Date: "2025-01-01", Campaign: "Brand", Spend: dec("30"), Clicks: 3},
			{Date: "2025-01-01", Campaign: "Shopping", Spend: dec("20"), Clicks: 6},
		},
	}}
	svc := newTestService(revenue, &fakeSeries{byFrom: map[string][]models.DailyRecord{"2025-01-01": social}}, search)

	rep, err := svc.BuildReport(context.Background(), "c1", "2025-01-01", "2025-01-02")
	require.NoError(t, err)

	require.Len(t, rep.Daily, 2)
	assertDec(t, "60", rep.Daily[0].SocialSpend)
	assertDec(t, "50", rep.Daily[0].SearchSpend)
	assertDec(t, "40", rep.Daily[1].SocialSpend)
	assertDec(t, "150", rep.Totals.Cost)
	assertDec(t, "150", rep.Pace.ActualSpendToDate)

	require.Len(t, rep.Social.Daily, 2)
	assertDec(t, "60", rep.Social.Daily[0].Spend)
	require.Len(t, rep.Social.TopCampaigns, 5)
	assert.Equal(t, "a", rep.Social.TopCampaigns[0].Campaign)
	assert.Equal(t, int64(11), rep.Social.TopCampaigns[0].Clicks)
	assert.Equal(t, "e", rep.Social.TopCampaigns[4].Campaign)
	for _, c := range rep.Social.CampaignsByDate {
		assert.NotEqual(t, "f", c.Campaign)
	}
	require.Len(t, rep.Social.CampaignsByDate, 6)
	assert.Equal(t, "2025-01-02", rep.Social.CampaignsByDate[5].Date)

	require.Len(t, rep.Search.TopCampaigns, 2)
	assert.Equal(t, "Shopping", rep.Search.TopCampaigns[0].Campaign)
	assert.Equal(t, "Brand", rep.Search.TopCampaigns[1].Campaign)
}

func TestBuildReportIsIdempotent(t *testing.T) {
	revenue := &fakeSeries{byFrom: map[string][]models.DailyRecord{
		"2025-01-01": {rev("2025-01-01", "1000", 10), rev("2025-01-02", "500", 5)},
	}}
	search := &fakeSeries{byFrom: map[string][]models.DailyRecord{
		"2025-01-01": {spend("2025-01-01", "100"), spend("2025-01-02", "50")},
	}}
	svc := newTestService(revenue, &fakeSeries{}, search)

	a, err := svc.BuildReport(context.Background(), "c1", "2025-01-01", "2025-01-02")
	require.NoError(t, err)
	b, err := svc.BuildReport(context.Background(), "c1", "2025-01-01", "2025-01-02")
	require.NoError(t, err)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(ja), string(jb))
	assert.Equal(t, ja, jb)
}
