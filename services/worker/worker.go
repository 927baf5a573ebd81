package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/D3fc0n3-1/Deal-hunter/internal/input"
	"github.com/D3fc0n3-1/Deal-hunter/internal/platform"
	"github.com/D3fc0n3-1/Deal-hunter/logger"
	"github.com/D3fc0n3-1/Deal-hunter/services/publisher"
)

// OutputWriter receives the full aggregate of one cycle
type OutputWriter interface {
	Write(listings []platform.Listing) error
}

// ListingStore persists listings across cycles
type ListingStore interface {
	Save(ctx context.Context, listings []platform.Listing) (inserted, skipped int, err error)
}

// Worker drives the search cycles: it re-reads the input list, fans requests
// out to the enabled platforms, merges their results deterministically and
// hands the aggregate to the output collaborators. One cycle runs at a time.
type Worker struct {
	platforms []platform.Platform
	writer    OutputWriter
	store     ListingStore        // optional
	pub       publisher.Publisher // optional
	interval  time.Duration
	log       *logger.Logger

	loadInput func() ([]platform.SearchRequest, error)
}

// NewWorker creates a new worker. store and pub may be nil.
func NewWorker(
	platforms []platform.Platform,
	writer OutputWriter,
	store ListingStore,
	pub publisher.Publisher,
	inputPath string,
	interval time.Duration,
) *Worker {
	return &Worker{
		platforms: platforms,
		writer:    writer,
		store:     store,
		pub:       pub,
		interval:  interval,
		log:       logger.ForComponent("worker"),
		loadInput: func() ([]platform.SearchRequest, error) {
			return input.Load(inputPath)
		},
	}
}

// Run executes the first cycle immediately, then re-triggers on the
// configured interval until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		start := time.Now()
		w.runCycle(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.log.Info().Dur("elapsed", time.Since(start)).Msg("Cycle finished")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.interval):
		}
	}
}

// runCycle performs one complete pass over all (request, platform) pairs.
// Input validation failures skip the cycle; an interrupt mid-cycle abandons
// it without touching the previous output.
func (w *Worker) runCycle(ctx context.Context) {
	requests, err := w.loadInput()
	if err != nil {
		w.log.Error().Err(err).Msg("Invalid input, skipping cycle")
		return
	}
	if len(requests) == 0 {
		w.log.Warn().Msg("No items to search")
	}

	listings := w.search(ctx, requests)
	if ctx.Err() != nil {
		w.log.Info().Msg("Cycle abandoned, keeping previous output")
		return
	}

	w.log.Info().Int("total", len(listings)).Msg("Search cycle complete")

	if err := w.writer.Write(listings); err != nil {
		w.log.Error().Err(err).Msg("Failed to write output, results lost for this cycle")
	}

	w.persist(ctx, listings)
	w.publish(listings)
}

// search runs the platforms concurrently, each one walking the requests
// sequentially so its own politeness delay is honored. Results are merged
// only after every platform finishes, ordered by (request order, platform
// order). A failing (request, platform) pair contributes nothing and never
// cancels its siblings.
func (w *Worker) search(ctx context.Context, requests []platform.SearchRequest) []platform.Listing {
	results := make([][][]platform.Listing, len(w.platforms))

	var wg sync.WaitGroup
	for pi, p := range w.platforms {
		results[pi] = make([][]platform.Listing, len(requests))

		wg.Add(1)
		go func(pi int, p platform.Platform) {
			defer wg.Done()
			log := logger.ForPlatform(p.Name())

			for ri, req := range requests {
				if ctx.Err() != nil {
					return
				}

				found, err := p.Search(ctx, req)
				if err != nil {
					log.Error().Err(err).Str("search_term", req.Name).Msg("Search failed")
					continue
				}

				log.Info().Str("search_term", req.Name).Int("found", len(found)).Msg("Search succeeded")
				results[pi][ri] = found
			}
		}(pi, p)
	}
	wg.Wait()

	merged := make([]platform.Listing, 0)
	for ri := range requests {
		for pi := range w.platforms {
			merged = append(merged, results[pi][ri]...)
		}
	}
	return merged
}

func (w *Worker) persist(ctx context.Context, listings []platform.Listing) {
	if w.store == nil || len(listings) == 0 {
		return
	}
	inserted, skipped, err := w.store.Save(ctx, listings)
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to store listings")
		return
	}
	w.log.Info().Int("inserted", inserted).Int("skipped", skipped).Msg("Stored listings")
}

func (w *Worker) publish(listings []platform.Listing) {
	if w.pub == nil {
		return
	}
	for _, l := range listings {
		payload, err := json.Marshal(l)
		if err != nil {
			w.log.Error().Err(err).Str("title", l.Title).Msg("Failed to serialize listing")
			continue
		}
		if err := w.pub.Publish(l.Platform, payload); err != nil {
			w.log.Error().Err(err).Str("title", l.Title).Msg("Failed to publish listing")
		}
	}
	if err := w.pub.TrimStreams(); err != nil {
		w.log.Error().Err(err).Msg("Failed to trim streams")
	}
}
