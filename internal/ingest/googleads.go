package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"

	"github.com/AngelCh415/perfdash/internal/models"
)

const (
	sourceGoogleAds = "google_ads"
	maxSearchPages  = 100
)

var micros = decimal.NewFromInt(1_000_000)

type GoogleAdsConfig struct {
	BaseURL           string
	APIVersion        string
	DeveloperToken    string
	ManagerCustomerID string
}

// GoogleAdsProvider reads campaign-level daily metrics through the search
// reporting endpoint.
type GoogleAdsProvider struct {
	c      *Client
	cfg    GoogleAdsConfig
	tokens oauth2.TokenSource
}

func NewGoogleAdsProvider(c *Client, cfg GoogleAdsConfig, tokens oauth2.TokenSource) *GoogleAdsProvider {
	cfg.BaseURL = strings.TrimRight(coalesce(cfg.BaseURL, "https://googleads.googleapis.com"), "/")
	cfg.APIVersion = coalesce(cfg.APIVersion, "v18")
	return &GoogleAdsProvider{c: c, cfg: cfg, tokens: tokens}
}

// NewRefreshTokenSource exchanges a stored refresh token for access tokens.
func NewRefreshTokenSource(ctx context.Context, clientID, clientSecret, refreshToken, tokenURL string) oauth2.TokenSource {
	if clientID == "" || refreshToken == "" {
		return nil
	}
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: coalesce(tokenURL, "https://oauth2.googleapis.com/token")},
	}
	return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}

type gadsRow struct {
	Campaign struct {
		ID   num    `json:"id"`
		Name string `json:"name"`
	} `json:"campaign"`
	Segments struct {
		Date string `json:"date"`
	} `json:"segments"`
	Metrics struct {
		Clicks           num `json:"clicks"`
		Impressions      num `json:"impressions"`
		Conversions      num `json:"conversions"`
		ConversionsValue num `json:"conversionsValue"`
		CostMicros       num `json:"costMicros"`
	} `json:"metrics"`
}

type gadsResp struct {
	Results       []gadsRow `json:"results"`
	NextPageToken string    `json:"nextPageToken"`
}

func gaql(start, end string) string {
	return "SELECT campaign.id, campaign.name, segments.date, metrics.clicks, metrics.impressions, " +
		"metrics.conversions, metrics.conversions_value, metrics.cost_micros " +
		"FROM campaign WHERE segments.date BETWEEN '" + start + "' AND '" + end + "' " +
		"ORDER BY segments.date ASC"
}

// campaignName falls back to the campaign id when the name is blank.
func campaignName(name, id string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if id == "" || id == "0" {
		return ""
	}
	return "campaign " + id
}

func digits(id string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(id))
}

// SearchSeries returns spend (converted from micros) and delivery per day
// and campaign, ordered by date.
func (p *GoogleAdsProvider) SearchSeries(ctx context.Context, s models.CustomerSettings, start, end string) ([]models.DailyRecord, error) {
	cid := digits(s.GoogleAdsCustomerID)
	if cid == "" {
		return nil, fmt.Errorf("%w: google ads customer id", models.ErrNotConfigured)
	}
	if p.cfg.DeveloperToken == "" || p.tokens == nil {
		return nil, fmt.Errorf("%w: google ads api credentials", models.ErrNotConfigured)
	}
	tok, err := p.tokens.Token()
	if err != nil {
		return nil, &VendorError{Source: sourceGoogleAds, Err: fmt.Errorf("oauth token: %w", stripURL(err))}
	}

	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+tok.AccessToken)
	hdr.Set("developer-token", p.cfg.DeveloperToken)
	if m := digits(p.cfg.ManagerCustomerID); m != "" {
		hdr.Set("login-customer-id", m)
	}
	endpoint := p.cfg.BaseURL + "/" + p.cfg.APIVersion + "/customers/" + cid + "/googleAds:search"

	acc := newAccumulator()
	body := map[string]string{"query": gaql(start, end)}
	for page := 0; page < maxSearchPages; page++ {
		var out gadsResp
		if err := p.c.postJSON(ctx, sourceGoogleAds, endpoint, hdr, body, &out); err != nil {
			return nil, err
		}
		for _, r := range out.Results {
			acc.add(models.DailyRecord{
				Date:            r.Segments.Date,
				Campaign:        campaignName(r.Campaign.Name, r.Campaign.ID.dec().String()),
				Spend:           r.Metrics.CostMicros.dec().Div(micros),
				Clicks:          r.Metrics.Clicks.int(),
				Impressions:     r.Metrics.Impressions.int(),
				Conversions:     r.Metrics.Conversions.dec(),
				ConversionValue: r.Metrics.ConversionsValue.dec(),
			})
		}
		if out.NextPageToken == "" {
			return acc.records(), nil
		}
		body = map[string]string{"query": gaql(start, end), "pageToken": out.NextPageToken}
	}
	return nil, &VendorError{Source: sourceGoogleAds, Err: errors.New("too many result pages")}
}
