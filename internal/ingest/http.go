package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AngelCh415/perfdash/internal/models"
)

func readSnippet(resp *http.Response) string {
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	s := strings.TrimSpace(string(b))
	if s == "" {
		s = http.StatusText(resp.StatusCode)
	}
	return s
}

func (c *Client) getJSON(ctx context.Context, source, url string, header http.Header, dst any) error {
	return c.sendJSON(ctx, source, http.MethodGet, url, header, nil, dst)
}

func (c *Client) postJSON(ctx context.Context, source, url string, header http.Header, body, dst any) error {
	return c.sendJSON(ctx, source, http.MethodPost, url, header, body, dst)
}

func (c *Client) sendJSON(ctx context.Context, source, method, url string, header http.Header, body, dst any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &VendorError{Source: source, Err: fmt.Errorf("encode request: %w", err)}
		}
		payload = b
	}
	resp, err := c.do(ctx, source, func(ctx context.Context) (*http.Request, error) {
		var rdr io.Reader
		if payload != nil {
			rdr = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rdr)
		if err != nil {
			return nil, err
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &VendorError{Source: source, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// num decodes a JSON number or numeric string. Anything unparsable becomes
// 0 so one bad vendor value cannot fail the whole series.
type num struct{ d decimal.Decimal }

func (n *num) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	d, err := decimal.NewFromString(s)
	if err != nil {
		n.d = decimal.Zero
		return nil
	}
	n.d = d
	return nil
}

func (n num) dec() decimal.Decimal { return n.d }

func (n num) int() int64 { return n.d.IntPart() }

// dayKey returns the YYYY-MM-DD prefix of a vendor date, or "" when it is
// not a calendar date.
func dayKey(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	if _, err := time.Parse(models.DateLayout, s); err != nil {
		return ""
	}
	return s
}

// accumulator sums vendor rows per calendar date and campaign.
type accumulator struct {
	byKey map[string]*models.DailyRecord
}

func newAccumulator() *accumulator {
	return &accumulator{byKey: map[string]*models.DailyRecord{}}
}

func (a *accumulator) add(r models.DailyRecord) {
	d := dayKey(r.Date)
	if d == "" {
		return
	}
	campaign := strings.TrimSpace(r.Campaign)
	k := d + "\x00" + campaign
	cur, ok := a.byKey[k]
	if !ok {
		cur = &models.DailyRecord{Date: d, Campaign: campaign}
		a.byKey[k] = cur
	}
	cur.Revenue = cur.Revenue.Add(r.Revenue)
	cur.Orders += r.Orders
	cur.Spend = cur.Spend.Add(r.Spend)
	cur.Clicks += r.Clicks
	cur.Impressions += r.Impressions
	cur.Conversions = cur.Conversions.Add(r.Conversions)
	cur.ConversionValue = cur.ConversionValue.Add(r.ConversionValue)
}

// records returns the sums ordered by date, then campaign.
func (a *accumulator) records() []models.DailyRecord {
	out := make([]models.DailyRecord, 0, len(a.byKey))
	for _, r := range a.byKey {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Campaign < out[j].Campaign
	})
	return out
}

func coalesce(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}
