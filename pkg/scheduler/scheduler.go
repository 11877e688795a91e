// Package scheduler runs the poll-filter-store cycle on a timer with
// strict single-flight semantics: at most one cycle at a time, late ticks
// are skipped, never queued.
package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"

	"github.com/umputun/adscope/pkg/config"
	"github.com/umputun/adscope/pkg/domain"
	"github.com/umputun/adscope/pkg/filter"
)

//go:generate moq -out mocks/config_provider.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store
//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor

// ConfigProvider supplies the live configuration snapshot at the start of
// every cycle, so config updates take effect on the next cycle without a
// restart
type ConfigProvider interface {
	Snapshot() *config.Config
}

// Store is the dedup ledger the cycle writes to
type Store interface {
	Upsert(ctx context.Context, ad domain.Ad) (domain.UpsertResult, error)
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Fetcher retrieves the rendered page for a target URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor pulls listing candidates out of fetched HTML
type Extractor interface {
	Extract(html, baseURL, currency string) []domain.Candidate
}

// Scheduler triggers poll cycles on the configured interval
type Scheduler struct {
	cfg       ConfigProvider
	store     Store
	fetcher   Fetcher
	extractor Extractor

	startDelay time.Duration

	runMu      sync.Mutex // cycle mutual exclusion, TryLock only
	wg         sync.WaitGroup
	reschedule chan time.Duration
}

// Params holds scheduler dependencies and settings
type Params struct {
	Config     ConfigProvider
	Store      Store
	Fetcher    Fetcher
	Extractor  Extractor
	StartDelay time.Duration
}

// NewScheduler creates a new scheduler instance
func NewScheduler(p Params) *Scheduler {
	if p.StartDelay == 0 {
		p.StartDelay = 10 * time.Second
	}
	return &Scheduler{
		cfg:        p.Config,
		store:      p.Store,
		fetcher:    p.Fetcher,
		extractor:  p.Extractor,
		startDelay: p.StartDelay,
		reschedule: make(chan time.Duration, 1),
	}
}

// Run drives the timer loop until the context is cancelled. The first
// cycle fires after the start delay, not immediately, to let the rest of
// the process finish initializing. Returns after the in-flight cycle, if
// any, has completed, so the caller can safely close the store.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.cfg.Snapshot().Interval()
	lgr.Printf("[INFO] scheduler started, first cycle in %v, then every %v", s.startDelay, interval)

	timer := time.NewTimer(s.startDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait() // let the current cycle finish before reporting done
			lgr.Printf("[INFO] scheduler stopped")
			return nil

		case <-timer.C:
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.runCycle(ctx)
			}()
			timer.Reset(s.cfg.Snapshot().Interval())

		case d := <-s.reschedule:
			// replace the pending tick, not stack another one
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(d)
			lgr.Printf("[INFO] poll interval rescheduled to %v", d)
		}
	}
}

// Reschedule replaces the current timer with the new interval. Implements
// the config manager's applier contract.
func (s *Scheduler) Reschedule(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", interval)
	}
	// keep only the latest request
	select {
	case <-s.reschedule:
	default:
	}
	s.reschedule <- interval
	return nil
}

// RunCycleNow triggers a cycle outside the timer, subject to the same
// mutual exclusion as timed cycles
func (s *Scheduler) RunCycleNow(ctx context.Context) {
	s.runCycle(ctx)
}

// runCycle walks all targets once. The exclusion lock is held for the
// whole cycle and released on every exit path; a tick arriving while a
// cycle runs is dropped with a single log line and touches nothing.
func (s *Scheduler) runCycle(ctx context.Context) {
	if !s.runMu.TryLock() {
		lgr.Printf("[WARN] previous cycle still running, tick skipped")
		return
	}
	defer s.runMu.Unlock()

	cycleID := uuid.New().String()[:8]
	cfg := s.cfg.Snapshot()
	targets := cfg.TargetList()

	lgr.Printf("[INFO] {%s} cycle started, %d target(s)", cycleID, len(targets))
	started := time.Now()

	newAds := 0
	for i, target := range targets {
		if ctx.Err() != nil {
			lgr.Printf("[WARN] {%s} cycle aborted: %v", cycleID, ctx.Err())
			return
		}

		newAds += s.processTarget(ctx, cycleID, cfg, target)

		// jittered pause before the next target, a fixed cadence is an
		// easy fingerprint
		if i < len(targets)-1 {
			s.targetDelay(ctx, cfg.Poll.MinTargetDelay, cfg.Poll.MaxTargetDelay)
		}
	}

	// best effort, a failed prune does not invalidate the cycle's work
	if deleted, err := s.store.Prune(ctx, cfg.Retention()); err != nil {
		lgr.Printf("[WARN] {%s} prune failed: %v", cycleID, err)
	} else if deleted > 0 {
		lgr.Printf("[INFO] {%s} pruned %d stale ad(s)", cycleID, deleted)
	}

	lgr.Printf("[INFO] {%s} cycle completed in %v, %d new ad(s)", cycleID, time.Since(started).Round(time.Millisecond), newAds)
}

// processTarget fetches, extracts, filters and stores candidates for one
// target. Failures are logged and skipped, one bad target must not abort
// the cycle. Returns the number of newly inserted ads.
func (s *Scheduler) processTarget(ctx context.Context, cycleID string, cfg *config.Config, target domain.Target) int {
	lgr.Printf("[DEBUG] {%s} processing target %s", cycleID, target.URL)

	html, err := s.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		lgr.Printf("[WARN] {%s} fetch failed for %s: %v", cycleID, target.URL, err)
		return 0
	}

	candidates := s.extractor.Extract(html, baseOf(target.URL), cfg.Currency)
	lgr.Printf("[DEBUG] {%s} extracted %d candidate(s) from %s", cycleID, len(candidates), target.URL)

	newAds := 0
	for _, cand := range candidates {
		if !filter.Accepts(target.Filters, cand.Title) {
			continue
		}

		now := time.Now().UTC()
		ad := domain.Ad{
			ID:          domain.AdID(cand.URL),
			URL:         cand.URL,
			Title:       cand.Title,
			Price:       cand.Price,
			FirstSeen:   now,
			LastChecked: now,
		}

		res, err := s.store.Upsert(ctx, ad)
		if err != nil {
			// the record's write is rolled back by the store, the cycle
			// carries on with the remaining candidates
			lgr.Printf("[ERROR] {%s} failed to save ad %q: %v", cycleID, cand.Title, err)
			continue
		}
		if res == domain.Inserted {
			lgr.Printf("[INFO] {%s} new ad: %s (%s)", cycleID, cand.Title, cand.Price)
			newAds++
		}
	}
	return newAds
}

// targetDelay sleeps a random duration in [minDelay, maxDelay), cut short
// by context cancellation
func (s *Scheduler) targetDelay(ctx context.Context, minDelay, maxDelay time.Duration) {
	delay := minDelay
	if maxDelay > minDelay {
		delay += time.Duration(rand.Int63n(int64(maxDelay - minDelay))) //nolint:gosec // jitter, not crypto
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

// baseOf reduces a target URL to scheme://host for resolving relative
// listing links
func baseOf(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
