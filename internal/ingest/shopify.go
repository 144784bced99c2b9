package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/AngelCh415/perfdash/internal/models"
)

const sourceShopify = "shopify"

// ShopifyProvider reads daily sales through the ShopifyQL analytics query.
type ShopifyProvider struct {
	c          *Client
	apiVersion string
}

func NewShopifyProvider(c *Client, apiVersion string) *ShopifyProvider {
	return &ShopifyProvider{c: c, apiVersion: coalesce(apiVersion, "2025-10")}
}

type shopifyResp struct {
	Data struct {
		ShopifyqlQuery struct {
			TableData struct {
				Rows []shopifyRow `json:"rows"`
			} `json:"tableData"`
			ParseErrors []json.RawMessage `json:"parseErrors"`
		} `json:"shopifyqlQuery"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type shopifyRow struct {
	Day        string `json:"day"`
	TotalSales num    `json:"total_sales"`
	NetSales   num    `json:"net_sales"`
	Orders     num    `json:"orders"`
}

// endpoint accepts a bare shop domain or a full base URL.
func (p *ShopifyProvider) endpoint(shop string) string {
	shop = strings.TrimRight(strings.TrimSpace(shop), "/")
	if !strings.HasPrefix(shop, "http://") && !strings.HasPrefix(shop, "https://") {
		shop = "https://" + shop
	}
	return shop + "/admin/api/" + p.apiVersion + "/graphql.json"
}

func revenueColumn(revenueType string) string {
	if revenueType == "net_sales" {
		return "net_sales"
	}
	return "total_sales"
}

// RevenueSeries returns revenue and orders per day, ascending.
func (p *ShopifyProvider) RevenueSeries(ctx context.Context, s models.CustomerSettings, start, end string) ([]models.DailyRecord, error) {
	if strings.TrimSpace(s.ShopifyURL) == "" {
		return nil, fmt.Errorf("%w: shopify url", models.ErrNotConfigured)
	}
	if strings.TrimSpace(s.ShopifyAccessToken) == "" {
		return nil, fmt.Errorf("%w: shopify access token", models.ErrNotConfigured)
	}
	col := revenueColumn(s.RevenueType)
	ql := fmt.Sprintf("FROM sales SHOW %s, orders GROUP BY day SINCE %s UNTIL %s", col, start, end)
	body := map[string]string{
		"query": fmt.Sprintf(`query { shopifyqlQuery(query: %q) { tableData { columns { name dataType displayName } rows } parseErrors } }`, ql),
	}
	hdr := http.Header{}
	hdr.Set("X-Shopify-Access-Token", s.ShopifyAccessToken)

	var out shopifyResp
	if err := p.c.postJSON(ctx, sourceShopify, p.endpoint(s.ShopifyURL), hdr, body, &out); err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return nil, &VendorError{Source: sourceShopify, Err: errors.New(out.Errors[0].Message)}
	}
	if pe := out.Data.ShopifyqlQuery.ParseErrors; len(pe) > 0 {
		return nil, &VendorError{Source: sourceShopify, Err: fmt.Errorf("shopifyql parse error: %s", string(pe[0]))}
	}

	acc := newAccumulator()
	for _, r := range out.Data.ShopifyqlQuery.TableData.Rows {
		revenue := r.TotalSales.dec()
		if col == "net_sales" {
			revenue = r.NetSales.dec()
		}
		acc.add(models.DailyRecord{Date: r.Day, Revenue: revenue, Orders: r.Orders.int()})
	}
	return acc.records(), nil
}
