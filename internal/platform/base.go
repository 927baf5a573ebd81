package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/D3fc0n3-1/Deal-hunter/helpers"
	"github.com/D3fc0n3-1/Deal-hunter/logger"
	apperr "github.com/D3fc0n3-1/Deal-hunter/pkg/errors"
	"github.com/D3fc0n3-1/Deal-hunter/pkg/similarity"
	"github.com/D3fc0n3-1/Deal-hunter/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// Base provides the shared behavior all marketplace backends build on:
// politeness delay, bounded fetching with a one-shot retry, rate-limit
// blocking, document parsing and the common filtering policy.
type Base struct {
	Provider      string
	Client        *http.Client
	UserAgent     string
	Delay         time.Duration
	BlockTime     time.Duration
	CacheSvc      cache.Service
	MinSimilarity float64
}

// Name returns the marketplace identifier
func (b *Base) Name() string {
	return b.Provider
}

func (b *Base) blockKey() string {
	return b.Provider + "_rate_limited"
}

// prepare enforces the inter-request politeness delay and fails fast while
// the marketplace is still in a rate-limit block window.
func (b *Base) prepare(ctx context.Context) error {
	if b.CacheSvc != nil {
		_, err := b.CacheSvc.Get(b.blockKey())
		switch {
		case err == nil:
			return apperr.NewRateLimit(b.Provider, b.BlockTime)
		case !errors.Is(err, cache.ErrMiss):
			// Cache backend trouble: proceed, but note that block state
			// is unknown
			logger.ForPlatform(b.Provider).Warn().Err(err).Msg("Could not check rate-limit block state")
		}
	}

	if b.Delay > 0 {
		select {
		case <-ctx.Done():
			return apperr.NewNetwork(b.Provider, "canceled before request", ctx.Err())
		case <-time.After(b.Delay):
		}
	}
	return nil
}

// fetch waits the configured inter-request delay, then fetches the URL.
// A marketplace that answered with a blocking response stays blocked in the
// cache service for BlockTime; fetches during that window fail fast.
func (b *Base) fetch(ctx context.Context, url string) (io.Reader, error) {
	if err := b.prepare(ctx); err != nil {
		return nil, err
	}

	body, err := helpers.FetchWithRetry(ctx, b.Client, url, b.UserAgent)
	if err != nil {
		if apperr.IsKind(err, apperr.KindRateLimit) {
			b.markBlocked()
		}
		var tagged *apperr.Error
		if e, ok := err.(*apperr.Error); ok {
			tagged = e.WithPlatform(b.Provider)
		} else {
			tagged = apperr.NewNetwork(b.Provider, "fetch failed", err)
		}
		return nil, tagged
	}

	return body, nil
}

// markBlocked records a rate-limit block for this platform.
func (b *Base) markBlocked() {
	if b.CacheSvc == nil {
		return
	}
	value := []byte(fmt.Sprintf("%d", int(b.BlockTime/time.Second)))
	if err := b.CacheSvc.Set(b.blockKey(), value, b.BlockTime); err != nil {
		logger.ForPlatform(b.Provider).Warn().Err(err).Msg("Failed to record rate-limit block")
	}
}

// document parses fetched markup into a goquery document
func (b *Base) document(body io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, apperr.NewParsing(b.Provider, "failed to parse HTML document", err)
	}
	return doc, nil
}

// keep applies the common filtering policy. Platforms that do not expose a
// seller rating treat the rating threshold as always satisfied; platforms
// that do expose one drop listings whose rating is unknown when a floor is
// requested.
func (b *Base) keep(req SearchRequest, title string, price float64, rating *float64, exposesRating bool) bool {
	if price > req.MaxPrice {
		return false
	}
	if exposesRating && req.MinSellerRating > 0 {
		if rating == nil || *rating < req.MinSellerRating {
			return false
		}
	}
	if !similarity.Relevant(req.Name, title, b.MinSimilarity) {
		return false
	}
	return true
}
