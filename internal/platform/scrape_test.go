package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperr "github.com/D3fc0n3-1/Deal-hunter/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsHTML = `
<!DOCTYPE html>
<html>
<body>
	<div class="results">
		<div class="item">
			<h3 class="title">Wireless Mouse Basic</h3>
			<a class="link" href="/listing/1">view</a>
			<div class="price">$30.00</div>
			<span class="seller">basicgear_outlet (12,304) 97.5%</span>
		</div>
		<div class="item">
			<h3 class="title">Wireless Mouse Pro</h3>
			<a class="link" href="/listing/2">view</a>
			<div class="price">$75.00</div>
			<span class="seller">99.1% positive feedback</span>
		</div>
		<div class="item">
			<h3 class="title">Wireless Mouse Compact</h3>
			<a class="link" href="/listing/3">view</a>
			<div class="price">$45.00</div>
			<span class="seller">88.0% positive feedback</span>
		</div>
		<div class="item">
			<h3 class="title">Wireless Mouse Mystery</h3>
			<a class="link" href="/listing/4">view</a>
			<div class="price">Free</div>
		</div>
	</div>
</body>
</html>
`

func testSelectors() Selectors {
	return Selectors{
		ResultItem: "div.item",
		Title:      "h3.title",
		Price:      "div.price",
		Link:       "a.link",
		SellerInfo: "span.seller",
	}
}

func newTestScraper(serverURL string, selectors Selectors) *Scraper {
	return NewScraper(BackendConfig{
		Provider:    "TestMarket",
		URLTemplate: serverURL + "/search?q=%s",
		Selectors:   selectors,
	}, Base{
		Client:    &http.Client{Timeout: 5 * time.Second},
		UserAgent: "DealHunterTest/1.0",
	})
}

func TestScraperFiltersByPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsHTML))
	}))
	defer server.Close()

	scraper := newTestScraper(server.URL, testSelectors())
	listings, err := scraper.Search(context.Background(), SearchRequest{
		Name:     "wireless mouse",
		MaxPrice: 50,
	})
	require.NoError(t, err)

	// 75.00 exceeds the ceiling, "Free" fails price parsing
	require.Len(t, listings, 2)
	assert.Equal(t, 30.0, listings[0].Price)
	assert.Equal(t, 45.0, listings[1].Price)
	for _, l := range listings {
		assert.Equal(t, "TestMarket", l.Platform)
		assert.Equal(t, "wireless mouse", l.SearchTerm)
		assert.Contains(t, l.URL, server.URL+"/listing/")
	}
}

func TestScraperFiltersBySellerRating(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsHTML))
	}))
	defer server.Close()

	scraper := newTestScraper(server.URL, testSelectors())
	listings, err := scraper.Search(context.Background(), SearchRequest{
		Name:            "wireless mouse",
		MaxPrice:        50,
		MinSellerRating: 95,
	})
	require.NoError(t, err)

	// 88.0% is below the floor; the ratingless listing fails a requested floor
	require.Len(t, listings, 1)
	assert.Equal(t, "Wireless Mouse Basic", listings[0].Title)
	require.NotNil(t, listings[0].SellerRating)
	assert.Equal(t, 97.5, *listings[0].SellerRating)
}

func TestScraperNoRatingPlatformPassesFloor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsHTML))
	}))
	defer server.Close()

	selectors := testSelectors()
	selectors.SellerInfo = ""
	scraper := newTestScraper(server.URL, selectors)

	listings, err := scraper.Search(context.Background(), SearchRequest{
		Name:            "wireless mouse",
		MaxPrice:        50,
		MinSellerRating: 95,
	})
	require.NoError(t, err)

	require.Len(t, listings, 2)
	for _, l := range listings {
		assert.Nil(t, l.SellerRating)
	}
}

func TestScraperEmptyResultsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>layout changed</p></body></html>"))
	}))
	defer server.Close()

	scraper := newTestScraper(server.URL, testSelectors())
	listings, err := scraper.Search(context.Background(), SearchRequest{Name: "anything", MaxPrice: 100})
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestScraperHTTPErrorIsPlatformError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	scraper := newTestScraper(server.URL, testSelectors())
	_, err := scraper.Search(context.Background(), SearchRequest{Name: "anything", MaxPrice: 100})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNetwork))

	var perr *apperr.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "TestMarket", perr.Platform)
}

func TestScraperBlockDetection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Robot Check: enter the captcha to continue</body></html>"))
	}))
	defer server.Close()

	cacheSvc := newMemoryCache()
	scraper := NewScraper(BackendConfig{
		Provider:    "TestMarket",
		URLTemplate: server.URL + "/search?q=%s",
		Selectors:   testSelectors(),
		DetectBlock: func(doc *goquery.Document) bool {
			return strings.Contains(strings.ToLower(doc.Text()), "captcha")
		},
	}, Base{
		Client:    &http.Client{Timeout: 5 * time.Second},
		UserAgent: "DealHunterTest/1.0",
		BlockTime: time.Minute,
		CacheSvc:  cacheSvc,
	})

	_, err := scraper.Search(context.Background(), SearchRequest{Name: "anything", MaxPrice: 100})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindRateLimit))

	// The block is recorded; the next search fails fast without a request
	_, err = cacheSvc.Get("TestMarket_rate_limited")
	assert.NoError(t, err)

	_, err = scraper.Search(context.Background(), SearchRequest{Name: "anything", MaxPrice: 100})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindRateLimit))
}

func TestScraperRateLimitedResponseBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cacheSvc := newMemoryCache()
	scraper := NewScraper(BackendConfig{
		Provider:    "TestMarket",
		URLTemplate: server.URL + "/search?q=%s",
		Selectors:   testSelectors(),
	}, Base{
		Client:    &http.Client{Timeout: 5 * time.Second},
		UserAgent: "DealHunterTest/1.0",
		BlockTime: time.Minute,
		CacheSvc:  cacheSvc,
	})

	_, err := scraper.Search(context.Background(), SearchRequest{Name: "anything", MaxPrice: 100})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindRateLimit))

	_, err = cacheSvc.Get("TestMarket_rate_limited")
	assert.NoError(t, err)
}

func TestResolveLink(t *testing.T) {
	assert.Equal(t, "https://example.com/listing/1",
		resolveLink("https://example.com/search?q=mouse", "/listing/1"))
	assert.Equal(t, "https://other.com/x",
		resolveLink("https://example.com/search", "https://other.com/x"))
}
