package metrics

import (
	"sort"

	"github.com/AngelCh415/perfdash/internal/models"
)

// SumByDate folds per-campaign rows into one row per date, ordered by date.
// Rows without a date are dropped.
func SumByDate(recs []models.DailyRecord) []models.DailyRecord {
	byDate := map[string]*models.DailyRecord{}
	for _, r := range recs {
		d := normDate(r.Date)
		if d == "" {
			continue
		}
		cur, ok := byDate[d]
		if !ok {
			cur = &models.DailyRecord{Date: d}
			byDate[d] = cur
		}
		addRecord(cur, r)
	}
	out := make([]models.DailyRecord, 0, len(byDate))
	for _, r := range byDate {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func addRecord(dst *models.DailyRecord, r models.DailyRecord) {
	dst.Revenue = dst.Revenue.Add(r.Revenue)
	dst.Orders += max0(r.Orders)
	dst.Spend = dst.Spend.Add(r.Spend)
	dst.Clicks += max0(r.Clicks)
	dst.Impressions += max0(r.Impressions)
	dst.Conversions = dst.Conversions.Add(r.Conversions)
	dst.ConversionValue = dst.ConversionValue.Add(r.ConversionValue)
}

// TopCampaigns totals each named campaign over the range and keeps the n
// best, ranked by clicks, then spend, then name. n <= 0 keeps all.
func TopCampaigns(recs []models.DailyRecord, n int) []models.ChannelDay {
	byName := map[string]*models.DailyRecord{}
	for _, r := range recs {
		if r.Campaign == "" {
			continue
		}
		cur, ok := byName[r.Campaign]
		if !ok {
			cur = &models.DailyRecord{Campaign: r.Campaign}
			byName[r.Campaign] = cur
		}
		addRecord(cur, r)
	}
	out := make([]models.ChannelDay, 0, len(byName))
	for name, r := range byName {
		c := channelDay("", r.Spend, r.Clicks, r.Impressions, r.Conversions, r.ConversionValue)
		c.Campaign = name
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Clicks != b.Clicks {
			return a.Clicks > b.Clicks
		}
		if c := a.Spend.Cmp(b.Spend); c != 0 {
			return c > 0
		}
		return a.Campaign < b.Campaign
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CampaignsByDate returns the day rows of the given campaigns, ordered by
// date and then by clicks within a day.
func CampaignsByDate(recs []models.DailyRecord, top []models.ChannelDay) []models.ChannelDay {
	keep := make(map[string]bool, len(top))
	for _, c := range top {
		keep[c.Campaign] = true
	}
	type key struct{ date, campaign string }
	byKey := map[key]*models.DailyRecord{}
	for _, r := range recs {
		d := normDate(r.Date)
		if d == "" || !keep[r.Campaign] {
			continue
		}
		k := key{d, r.Campaign}
		cur, ok := byKey[k]
		if !ok {
			cur = &models.DailyRecord{Date: d, Campaign: r.Campaign}
			byKey[k] = cur
		}
		addRecord(cur, r)
	}
	out := make([]models.ChannelDay, 0, len(byKey))
	for _, r := range byKey {
		c := channelDay(r.Date, r.Spend, r.Clicks, r.Impressions, r.Conversions, r.ConversionValue)
		c.Campaign = r.Campaign
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Clicks != b.Clicks {
			return a.Clicks > b.Clicks
		}
		return a.Campaign < b.Campaign
	})
	return out
}
