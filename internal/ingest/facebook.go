package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AngelCh415/perfdash/internal/models"
)

const (
	sourceFacebook  = "facebook"
	maxInsightPages = 50
)

// purchaseActions are checked in order; the first one present counts.
var purchaseActions = []string{"purchase", "omni_purchase", "offsite_conversion.fb_pixel_purchase"}

// FacebookProvider reads campaign-level daily insights from the Graph API.
type FacebookProvider struct {
	c          *Client
	baseURL    string
	apiVersion string
	token      string
}

func NewFacebookProvider(c *Client, baseURL, apiVersion, appToken string) *FacebookProvider {
	return &FacebookProvider{
		c:          c,
		baseURL:    strings.TrimRight(coalesce(baseURL, "https://graph.facebook.com"), "/"),
		apiVersion: coalesce(apiVersion, "v21.0"),
		token:      appToken,
	}
}

type fbAction struct {
	ActionType string `json:"action_type"`
	Value      num    `json:"value"`
}

type fbRow struct {
	DateStart    string     `json:"date_start"`
	CampaignID   string     `json:"campaign_id"`
	CampaignName string     `json:"campaign_name"`
	Country      string     `json:"country"`
	Spend        num        `json:"spend"`
	Clicks       num        `json:"clicks"`
	Impressions  num        `json:"impressions"`
	Actions      []fbAction `json:"actions"`
	ActionValues []fbAction `json:"action_values"`
}

type fbResp struct {
	Data   []fbRow `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func actionValue(actions []fbAction) decimal.Decimal {
	for _, t := range purchaseActions {
		for _, a := range actions {
			if a.ActionType == t && !a.Value.dec().IsZero() {
				return a.Value.dec()
			}
		}
	}
	return decimal.Zero
}

func accountPath(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "act_") {
		return id
	}
	return "act_" + id
}

func (p *FacebookProvider) insightsURL(accountID, country, start, end string) string {
	tr, _ := json.Marshal(map[string]string{"since": start, "until": end})
	q := url.Values{}
	q.Set("access_token", p.token)
	q.Set("time_range", string(tr))
	q.Set("time_increment", "1")
	q.Set("fields", "campaign_id,campaign_name,spend,clicks,impressions,actions,action_values,date_start")
	q.Set("level", "campaign")
	q.Set("limit", "1000")
	if country != "" {
		q.Set("breakdowns", "country")
	}
	return p.baseURL + "/" + p.apiVersion + "/" + accountPath(accountID) + "/insights?" + q.Encode()
}

// SocialSeries returns spend and delivery per day and campaign, ordered by
// date. With a country code set only rows for that country are kept.
func (p *FacebookProvider) SocialSeries(ctx context.Context, s models.CustomerSettings, start, end string) ([]models.DailyRecord, error) {
	if strings.TrimSpace(s.FacebookAdAccountID) == "" {
		return nil, fmt.Errorf("%w: facebook ad account id", models.ErrNotConfigured)
	}
	if p.token == "" {
		return nil, fmt.Errorf("%w: facebook app token", models.ErrNotConfigured)
	}
	country := strings.ToUpper(strings.TrimSpace(s.MetaCountryCode))

	acc := newAccumulator()
	next := p.insightsURL(s.FacebookAdAccountID, country, start, end)
	for page := 0; next != "" && page < maxInsightPages; page++ {
		var out fbResp
		if err := p.c.getJSON(ctx, sourceFacebook, next, nil, &out); err != nil {
			return nil, err
		}
		if out.Error != nil {
			return nil, &VendorError{Source: sourceFacebook, Err: errors.New(out.Error.Message)}
		}
		for _, r := range out.Data {
			if country != "" && !strings.EqualFold(r.Country, country) {
				continue
			}
			acc.add(models.DailyRecord{
				Date:            r.DateStart,
				Campaign:        campaignName(r.CampaignName, r.CampaignID),
				Spend:           r.Spend.dec(),
				Clicks:          r.Clicks.int(),
				Impressions:     r.Impressions.int(),
				Conversions:     actionValue(r.Actions),
				ConversionValue: actionValue(r.ActionValues),
			})
		}
		next = out.Paging.Next
	}
	return acc.records(), nil
}
