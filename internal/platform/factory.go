package platform

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/D3fc0n3-1/Deal-hunter/config"
	"github.com/D3fc0n3-1/Deal-hunter/helpers"
	"github.com/D3fc0n3-1/Deal-hunter/logger"
	"github.com/D3fc0n3-1/Deal-hunter/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// Selector values per marketplace. These rot when the live sites change
// their markup; fixing a scraper means editing them, not the control flow.
var (
	ebaySelectors = Selectors{
		ResultItem: "li.s-item",
		Title:      "div.s-item__title span[role='heading']",
		Price:      "span.s-item__price",
		Link:       "a.s-item__link",
		SellerInfo: "span.s-item__seller-info-text",
	}

	amazonSelectors = Selectors{
		ResultItem: "div[data-component-type='s-search-result']",
		Title:      "h2 a span.a-text-normal",
		Price:      "span.a-price-whole",
		Link:       "h2 a.a-link-normal",
		Sponsored:  "span[data-component-type='s-ads-indicator-text']",
	}

	walmartSelectors = Selectors{
		ResultItem:   "div[data-item-id]",
		Title:        "span[data-automation-id='product-title']",
		Price:        "div[data-automation-id='product-price']",
		Link:         "a[link-identifier]",
		EmbeddedJSON: "script[type='application/json']",
	}
)

// CreatePlatforms builds the enabled backends in configured order. A
// platform that fails to construct is logged and skipped; the caller decides
// whether an empty set is fatal.
func CreatePlatforms(cfg *config.Config, cacheSvc cache.Service) []Platform {
	base := Base{
		Client:        helpers.NewClient(cfg.RequestTimeout),
		UserAgent:     cfg.UserAgent,
		Delay:         cfg.RequestDelay,
		BlockTime:     cfg.BlockTime,
		CacheSvc:      cacheSvc,
		MinSimilarity: cfg.MinTitleSimilarity,
	}

	var platforms []Platform
	for _, name := range cfg.EnabledPlatforms {
		switch name {
		case "ebay":
			platforms = append(platforms, NewScraper(ebayBackend(cfg.EbayURL), base))
		case "amazon":
			platforms = append(platforms, NewScraper(amazonBackend(cfg.AmazonURL), base))
		case "walmart":
			platforms = append(platforms, NewScraper(walmartBackend(cfg.WalmartURL), base))
		case "bestbuy":
			bb, err := NewBestBuy(cfg.BestBuyURL, cfg.BestBuyAPIKey, base)
			if err != nil {
				logger.ForPlatform("BestBuy").Error().Err(err).Msg("Skipping platform")
				continue
			}
			platforms = append(platforms, bb)
		default:
			logger.Warn("Skipping unknown platform %q", name)
		}
	}
	return platforms
}

func ebayBackend(urlTemplate string) BackendConfig {
	return BackendConfig{
		Provider:    "eBay",
		URLTemplate: urlTemplate,
		Selectors:   ebaySelectors,
		TitleHandler: func(s *goquery.Selection) string {
			title := s.Find(ebaySelectors.Title).First().Text()
			if title == "" {
				title = s.Find(ebaySelectors.Link).First().Text()
			}
			return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(title), "New Listing"))
		},
		PriceHandler: func(s *goquery.Selection) string {
			// Price ranges ("$12.99 to $15.99") keep the low bound
			price := s.Find(ebaySelectors.Price).First().Text()
			return strings.TrimSpace(strings.Split(price, " to ")[0])
		},
	}
}

func amazonBackend(urlTemplate string) BackendConfig {
	return BackendConfig{
		Provider:    "Amazon",
		URLTemplate: urlTemplate,
		Selectors:   amazonSelectors,
		PriceHandler: func(s *goquery.Selection) string {
			whole := strings.TrimSpace(s.Find("span.a-price-whole").First().Text())
			if whole == "" {
				return ""
			}
			fraction := strings.TrimSpace(s.Find("span.a-price-fraction").First().Text())
			whole = strings.TrimSuffix(whole, ".")
			if fraction == "" {
				return whole
			}
			return whole + "." + fraction
		},
		DetectBlock: func(doc *goquery.Document) bool {
			text := strings.ToLower(doc.Text())
			return strings.Contains(text, "captcha") || strings.Contains(text, "robot check")
		},
	}
}

func walmartBackend(urlTemplate string) BackendConfig {
	return BackendConfig{
		Provider:    "Walmart",
		URLTemplate: urlTemplate,
		Selectors:   walmartSelectors,
		// Walmart embeds search results as JSON inside script tags; that is
		// more stable than its generated class names, so prefer it and fall
		// back to element selectors.
		ParseEmbedded: parseWalmartEmbedded,
	}
}

type walmartEmbeddedDoc struct {
	SearchContent struct {
		Preso struct {
			Items []struct {
				Title          string `json:"title"`
				ProductPageURL string `json:"productPageUrl"`
				PrimaryOffer   struct {
					OfferPrice float64 `json:"offerPrice"`
				} `json:"primaryOffer"`
			} `json:"items"`
		} `json:"preso"`
	} `json:"searchContent"`
}

func parseWalmartEmbedded(doc *goquery.Document) ([]Candidate, bool) {
	var candidates []Candidate
	found := false

	doc.Find(walmartSelectors.EmbeddedJSON).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, "searchContent") {
			return true
		}

		var embedded walmartEmbeddedDoc
		if err := json.Unmarshal([]byte(text), &embedded); err != nil {
			return true
		}

		items := embedded.SearchContent.Preso.Items
		if len(items) == 0 {
			return true
		}

		for _, item := range items {
			if item.PrimaryOffer.OfferPrice <= 0 {
				continue
			}
			candidates = append(candidates, Candidate{
				Title:     strings.TrimSpace(item.Title),
				Link:      strings.TrimSpace(item.ProductPageURL),
				PriceText: strconv.FormatFloat(item.PrimaryOffer.OfferPrice, 'f', -1, 64),
			})
		}
		found = true
		return false
	})

	return candidates, found
}
