// Package batcher turns N deferred "starred repos of user U" lookups into
// one bounded-parallelism fetch round. Users are enqueued while a request is
// being aggregated, then drained all at once; a failing lookup never aborts
// the rest of the round.

package batcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/mx42/stargazer/pkg/log"
)

// UserStarsFetcher is the single upstream query the batcher knows how to run.
type UserStarsFetcher interface {
	FetchUserStars(ctx context.Context, user string) ([]string, error)
}

// Batcher owns the queue of pending users. It is not safe for concurrent
// use: one batcher belongs to one aggregation call, which enqueues during
// its sequential phase and drains exactly once.
type Batcher struct {
	Logger      log.Logger
	fetcher     UserStarsFetcher
	maxParallel int
	queue       []string
}

func NewBatcher(logger log.Logger, fetcher UserStarsFetcher, maxParallel int) *Batcher {
	if maxParallel <= 0 {
		maxParallel = 1
	}
	return &Batcher{
		Logger:      logger,
		fetcher:     fetcher,
		maxParallel: maxParallel,
	}
}

// Enqueue appends a user to the pending queue. Duplicate enqueues are
// allowed and cause duplicate fetches on the next drain.
func (b *Batcher) Enqueue(user string) {
	b.queue = append(b.queue, user)
}

// Pending returns the number of queued lookups.
func (b *Batcher) Pending() int {
	return len(b.queue)
}

// One unit of work in a drain round. Each goroutine writes only its own
// slot; the slices are joined after the round has fully completed.
type fetchResult struct {
	user  string
	repos []string
	err   error
}

// DrainAndFetch runs every queued lookup concurrently, bounded by the
// configured parallelism, and partitions the outcomes into a success map
// and a list of per-user failures. The queue is empty afterwards regardless
// of outcome.
func (b *Batcher) DrainAndFetch(ctx context.Context) (map[string][]string, []error) {
	if len(b.queue) == 0 {
		return map[string][]string{}, nil
	}

	users := b.queue
	b.queue = nil

	b.Logger.Debug(ctx, "Draining %d queued user-star lookups (max %d in parallel)", len(users), b.maxParallel)

	results := make([]fetchResult, len(users))
	sem := make(chan struct{}, b.maxParallel)
	var wg sync.WaitGroup

	for i, user := range users {
		wg.Add(1)
		go func(slot int, user string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			repos, err := b.fetcher.FetchUserStars(ctx, user)
			results[slot] = fetchResult{user: user, repos: repos, err: err}
		}(i, user)
	}
	wg.Wait()

	stars := make(map[string][]string, len(users))
	var errs []error
	for _, res := range results {
		if res.err != nil {
			b.Logger.Warn(ctx, "Failed to fetch stars of user %s: %v", res.user, res.err)
			errs = append(errs, fmt.Errorf("user %s: %w", res.user, res.err))
			continue
		}
		stars[res.user] = res.repos
	}

	return stars, errs
}
