package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/D3fc0n3-1/Deal-hunter/helpers"
	"github.com/D3fc0n3-1/Deal-hunter/logger"
	apperr "github.com/D3fc0n3-1/Deal-hunter/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// Scraper is the scraping-family backend: it builds a search URL, fetches
// raw markup and extracts listing fields via configurable selectors. One
// Scraper per marketplace, differing only in its BackendConfig.
type Scraper struct {
	Base
	cfg BackendConfig
}

// NewScraper creates a scraping backend from a marketplace description
func NewScraper(cfg BackendConfig, base Base) *Scraper {
	base.Provider = cfg.Provider
	return &Scraper{
		Base: base,
		cfg:  cfg,
	}
}

// Search fetches the marketplace's results page for the request and returns
// the cleaned, filtered listings. An empty result-container match is not an
// error; transport failures, blocking responses and unparseable documents
// are.
func (s *Scraper) Search(ctx context.Context, req SearchRequest) ([]Listing, error) {
	searchURL := fmt.Sprintf(s.cfg.URLTemplate, url.QueryEscape(req.Name))

	body, err := s.fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := s.document(body)
	if err != nil {
		return nil, err
	}

	if s.cfg.DetectBlock != nil && s.cfg.DetectBlock(doc) {
		s.markBlocked()
		return nil, apperr.NewRateLimit(s.Provider, s.BlockTime)
	}

	candidates := s.candidates(doc)

	log := logger.ForPlatform(s.Provider)
	listings := make([]Listing, 0, len(candidates))
	for _, c := range candidates {
		listing, ok := s.normalize(req, searchURL, c)
		if !ok {
			continue
		}
		if s.keep(req, listing.Title, listing.Price, listing.SellerRating, s.exposesRating()) {
			listings = append(listings, listing)
		}
	}

	log.Debug().
		Str("search_term", req.Name).
		Int("raw", len(candidates)).
		Int("kept", len(listings)).
		Msg("Scrape finished")

	return listings, nil
}

func (s *Scraper) exposesRating() bool {
	return s.cfg.Selectors.SellerInfo != ""
}

// candidates extracts raw result rows. Embedded JSON product data is
// preferred when the marketplace provides it; element selectors are the
// fallback.
func (s *Scraper) candidates(doc *goquery.Document) []Candidate {
	if s.cfg.ParseEmbedded != nil {
		if found, ok := s.cfg.ParseEmbedded(doc); ok {
			return found
		}
	}

	var out []Candidate
	doc.Find(s.cfg.Selectors.ResultItem).Each(func(_ int, sel *goquery.Selection) {
		if s.cfg.Selectors.Sponsored != "" && sel.Find(s.cfg.Selectors.Sponsored).Length() > 0 {
			return
		}

		var title string
		if s.cfg.TitleHandler != nil {
			title = s.cfg.TitleHandler(sel)
		} else {
			title = defaultTitle(sel, s.cfg.Selectors.Title)
		}

		link, _ := sel.Find(s.cfg.Selectors.Link).First().Attr("href")

		var priceText string
		if s.cfg.PriceHandler != nil {
			priceText = s.cfg.PriceHandler(sel)
		} else {
			priceText = sel.Find(s.cfg.Selectors.Price).First().Text()
		}

		var ratingText string
		if s.cfg.Selectors.SellerInfo != "" {
			ratingText = sel.Find(s.cfg.Selectors.SellerInfo).First().Text()
		}

		out = append(out, Candidate{
			Title:      strings.TrimSpace(title),
			Link:       strings.TrimSpace(link),
			PriceText:  strings.TrimSpace(priceText),
			RatingText: strings.TrimSpace(ratingText),
		})
	})
	return out
}

// normalize cleans one candidate into a Listing. Candidates with missing
// fields or unparseable prices are dropped individually, never failing the
// whole batch.
func (s *Scraper) normalize(req SearchRequest, searchURL string, c Candidate) (Listing, bool) {
	log := logger.ForPlatform(s.Provider)

	if c.Title == "" || c.Link == "" {
		log.Debug().Str("title", c.Title).Msg("Dropping candidate with missing fields")
		return Listing{}, false
	}

	price, err := helpers.CleanPrice(c.PriceText)
	if err != nil {
		log.Debug().Str("title", c.Title).Str("price", c.PriceText).Msg("Dropping candidate with unparseable price")
		return Listing{}, false
	}

	var rating *float64
	if c.RatingText != "" {
		if parsed, err := helpers.CleanRating(c.RatingText); err == nil {
			rating = &parsed
		}
	}

	return Listing{
		Platform:     s.Provider,
		SearchTerm:   req.Name,
		Title:        c.Title,
		Price:        price,
		SellerRating: rating,
		URL:          resolveLink(searchURL, c.Link),
	}, true
}

func defaultTitle(sel *goquery.Selection, selector string) string {
	titleSel := sel.Find(selector).First()
	if titleSel.Length() == 0 {
		return ""
	}
	if attr, exists := titleSel.Attr("title"); exists && attr != "" {
		return attr
	}
	return titleSel.Text()
}

// resolveLink turns a possibly relative href into an absolute URL against
// the page it was scraped from.
func resolveLink(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
