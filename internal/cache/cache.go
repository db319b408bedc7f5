// Package cache is the coalescing layer between the aggregator and the
// GitHub API. It holds two timestamped relations (repo -> stargazers,
// user -> starred repos); reads filter rows by a freshness window, and a
// miss is resolved according to the relation's policy: eager relations
// fetch-and-store synchronously, batched relations enqueue the key into the
// fetch batcher and return empty, deferring the work to the next flush.

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mx42/stargazer/internal/batcher"
	"github.com/mx42/stargazer/pkg/log"
)

// EdgeStore is the persistence boundary of the cache. Rows are append-only:
// staleness is a read-time filter, not a delete.
type EdgeStore interface {
	FreshProjectStars(ctx context.Context, owner, repo string, maxAge time.Duration) ([]string, error)
	SaveProjectStars(ctx context.Context, owner, repo string, logins []string) error
	FreshUserStars(ctx context.Context, user string, maxAge time.Duration) ([]string, error)
	SaveUserStars(ctx context.Context, user string, repos []string) error
}

// ProjectStarsFetcher resolves the stargazers of a repository upstream.
type ProjectStarsFetcher interface {
	FetchProjectStars(ctx context.Context, owner, repo string) ([]string, error)
}

// MissPolicy decides how a relation resolves a cache miss.
type MissPolicy int

const (
	// PolicyEager fetches synchronously and stores the result before
	// returning it.
	PolicyEager MissPolicy = iota

	// PolicyBatched enqueues the key into the batcher and returns an
	// empty sequence; the fetch happens on the next flush.
	PolicyBatched
)

type Option func(*Cache)

func WithProjectPolicy(p MissPolicy) Option {
	return func(c *Cache) { c.projectPolicy = p }
}

func WithUserPolicy(p MissPolicy) Option {
	return func(c *Cache) { c.userPolicy = p }
}

type Cache struct {
	Logger   log.Logger
	store    EdgeStore
	projects ProjectStarsFetcher
	users    batcher.UserStarsFetcher
	batcher  *batcher.Batcher
	maxAge   time.Duration

	projectPolicy MissPolicy
	userPolicy    MissPolicy
}

// NewCache wires the cache over its store, the two upstream fetchers and
// the batcher. Project lookups default to eager resolution (one cheap
// paginated call), user lookups to batched resolution (expected in bulk,
// one per stargazer).
func NewCache(logger log.Logger, store EdgeStore, projects ProjectStarsFetcher, users batcher.UserStarsFetcher, b *batcher.Batcher, maxAge time.Duration, opts ...Option) *Cache {
	c := &Cache{
		Logger:        logger,
		store:         store,
		projects:      projects,
		users:         users,
		batcher:       b,
		maxAge:        maxAge,
		projectPolicy: PolicyEager,
		userPolicy:    PolicyBatched,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// relation binds one cached key to its read, fetch, write and defer
// operations, so that either relation can run under either policy.
type relation struct {
	policy  MissPolicy
	read    func(ctx context.Context) ([]string, error)
	fetch   func(ctx context.Context) ([]string, error)
	write   func(ctx context.Context, items []string) error
	enqueue func()
}

func (c *Cache) resolve(ctx context.Context, rel relation) ([]string, error) {
	items, err := rel.read(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}

	if rel.policy == PolicyBatched {
		rel.enqueue()
		return []string{}, nil
	}

	fetched, err := rel.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := rel.write(ctx, fetched); err != nil {
		return nil, err
	}
	// Return the fetched sequence directly instead of re-reading
	return fetched, nil
}

// GetProjectStars returns the fresh stargazer logins of owner/repo,
// resolving a miss according to the project relation's policy. Upstream
// failure kinds propagate unchanged; there is no retry.
func (c *Cache) GetProjectStars(ctx context.Context, owner, repo string) ([]string, error) {
	return c.resolve(ctx, relation{
		policy: c.projectPolicy,
		read: func(ctx context.Context) ([]string, error) {
			return c.store.FreshProjectStars(ctx, owner, repo, c.maxAge)
		},
		fetch: func(ctx context.Context) ([]string, error) {
			c.Logger.Debug(ctx, "Cache miss for stargazers of %s/%s", owner, repo)
			return c.projects.FetchProjectStars(ctx, owner, repo)
		},
		write: func(ctx context.Context, items []string) error {
			return c.store.SaveProjectStars(ctx, owner, repo, items)
		},
		enqueue: func() {
			c.batcher.Enqueue(owner + "/" + repo)
		},
	})
}

// GetUserStars returns the fresh starred repositories of user. Under the
// default batched policy a miss enqueues the user and returns empty.
func (c *Cache) GetUserStars(ctx context.Context, user string) ([]string, error) {
	return c.resolve(ctx, relation{
		policy: c.userPolicy,
		read: func(ctx context.Context) ([]string, error) {
			return c.store.FreshUserStars(ctx, user, c.maxAge)
		},
		fetch: func(ctx context.Context) ([]string, error) {
			c.Logger.Debug(ctx, "Cache miss for stars of user %s", user)
			return c.users.FetchUserStars(ctx, user)
		},
		write: func(ctx context.Context, items []string) error {
			return c.store.SaveUserStars(ctx, user, items)
		},
		enqueue: func() {
			c.batcher.Enqueue(user)
		},
	})
}

// FlushQueuedUserStars drains the batcher, persists every successful
// result, and only then reports per-user failures as a single aggregate
// error. Partial progress stays durable even when the call fails.
func (c *Cache) FlushQueuedUserStars(ctx context.Context) (map[string][]string, error) {
	stars, errs := c.batcher.DrainAndFetch(ctx)

	for user, repos := range stars {
		if err := c.store.SaveUserStars(ctx, user, repos); err != nil {
			return nil, fmt.Errorf("persisting stars of user %s: %w", user, err)
		}
	}

	if len(errs) > 0 {
		return stars, NewBatchError(errs)
	}
	return stars, nil
}
