package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/D3fc0n3-1/Deal-hunter/logger"
	apperr "github.com/D3fc0n3-1/Deal-hunter/pkg/errors"

	"github.com/go-resty/resty/v2"
)

// BestBuy is the API-family backend: it queries the official Best Buy
// products API and maps the structured response directly, with no selector
// maintenance. An API key is required.
type BestBuy struct {
	Base
	client      *resty.Client
	urlTemplate string
	apiKey      string
}

type bestBuyProduct struct {
	Name      string  `json:"name"`
	SalePrice float64 `json:"salePrice"`
	URL       string  `json:"url"`
}

type bestBuySearchResponse struct {
	Products []bestBuyProduct `json:"products"`
}

// NewBestBuy creates the Best Buy API backend. A missing API key is a
// configuration error.
func NewBestBuy(urlTemplate, apiKey string, base Base) (*BestBuy, error) {
	if apiKey == "" {
		return nil, apperr.NewConfiguration("BESTBUY_API_KEY is required for the bestbuy platform", nil)
	}

	base.Provider = "BestBuy"

	client := resty.New()
	client.SetHeader("User-Agent", base.UserAgent)
	client.SetTimeout(base.Client.Timeout)

	return &BestBuy{
		Base:        base,
		client:      client,
		urlTemplate: urlTemplate,
		apiKey:      apiKey,
	}, nil
}

// Search queries the products API and returns the filtered listings.
func (b *BestBuy) Search(ctx context.Context, req SearchRequest) ([]Listing, error) {
	if err := b.prepare(ctx); err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf(b.urlTemplate, url.QueryEscape(req.Name))

	var result bestBuySearchResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format":   "json",
			"apiKey":   b.apiKey,
			"pageSize": "25",
			"show":     "name,salePrice,url",
		}).
		SetResult(&result).
		Get(searchURL)
	if err != nil {
		return nil, apperr.NewNetwork(b.Provider, "products API request failed", err)
	}

	switch {
	case resp.StatusCode() == http.StatusForbidden, resp.StatusCode() == http.StatusUnauthorized:
		return nil, apperr.NewNetwork(b.Provider, "products API rejected the key: "+resp.Status(), nil)
	case resp.StatusCode() == http.StatusTooManyRequests:
		b.markBlocked()
		return nil, apperr.NewRateLimit(b.Provider, b.BlockTime)
	case !resp.IsSuccess():
		return nil, apperr.NewNetwork(b.Provider, "products API returned "+resp.Status(), nil)
	}

	listings := make([]Listing, 0, len(result.Products))
	for _, p := range result.Products {
		if p.Name == "" || p.URL == "" {
			continue
		}
		// The API does not expose a seller rating; the rating floor is
		// always satisfied here.
		if !b.keep(req, p.Name, p.SalePrice, nil, false) {
			continue
		}
		listings = append(listings, Listing{
			Platform:   b.Provider,
			SearchTerm: req.Name,
			Title:      p.Name,
			Price:      p.SalePrice,
			URL:        p.URL,
		})
	}

	logger.ForPlatform(b.Provider).Debug().
		Str("search_term", req.Name).
		Int("raw", len(result.Products)).
		Int("kept", len(listings)).
		Msg("API search finished")

	return listings, nil
}
