package neighbors

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/mx42/stargazer/pkg/log"
)

// fakeCache mimics the cache contract: user-star hits resolve immediately,
// misses are queued and only resolved by the flush.
type fakeCache struct {
	projectStars map[string][]string
	projectErr   error
	hits         map[string][]string
	deferred     map[string][]string
	flushErr     error
	queue        []string
}

func (c *fakeCache) GetProjectStars(ctx context.Context, owner, repo string) ([]string, error) {
	if c.projectErr != nil {
		return nil, c.projectErr
	}
	return c.projectStars[owner+"/"+repo], nil
}

func (c *fakeCache) GetUserStars(ctx context.Context, user string) ([]string, error) {
	if stars, ok := c.hits[user]; ok {
		return stars, nil
	}
	c.queue = append(c.queue, user)
	return []string{}, nil
}

func (c *fakeCache) FlushQueuedUserStars(ctx context.Context) (map[string][]string, error) {
	queued := c.queue
	c.queue = nil
	if c.flushErr != nil {
		return nil, c.flushErr
	}
	out := map[string][]string{}
	for _, user := range queued {
		if stars, ok := c.deferred[user]; ok {
			out[user] = stars
		}
	}
	return out, nil
}

func newTestAggregator(t *testing.T, cache StarCache) *Aggregator {
	t.Helper()
	logger, _ := log.NewCslLogger()
	aggregator, err := NewAggregator(logger, cache)
	if err != nil {
		t.Fatalf("failed to build aggregator: %v", err)
	}
	return aggregator
}

func TestGetStarNeighborsFromWarmCache(t *testing.T) {
	cache := &fakeCache{
		projectStars: map[string][]string{"o/r": {"s1", "s3"}},
		hits: map[string][]string{
			"s1": {"a/1", "b/2"},
			"s3": {"a/1", "c/3"},
		},
	}
	aggregator := newTestAggregator(t, cache)

	got, err := aggregator.GetStarNeighbors(context.Background(), "o", "r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Neighbor{
		{Repo: "a/1", Stargazers: []string{"s1", "s3"}},
		{Repo: "b/2", Stargazers: []string{"s1"}},
		{Repo: "c/3", Stargazers: []string{"s3"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected neighbours:\n got %v\nwant %v", got, want)
	}
}

func TestGetStarNeighborsSelfExclusion(t *testing.T) {
	cache := &fakeCache{
		projectStars: map[string][]string{"o/r": {"s1"}},
		hits:         map[string][]string{"s1": {"o/r", "a/1"}},
	}
	aggregator := newTestAggregator(t, cache)

	got, err := aggregator.GetStarNeighbors(context.Background(), "o", "r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, neighbor := range got {
		if neighbor.Repo == "o/r" {
			t.Errorf("queried repository must not be its own neighbour: %v", got)
		}
	}
	if len(got) != 1 || got[0].Repo != "a/1" {
		t.Errorf("unexpected neighbours: %v", got)
	}
}

func TestGetStarNeighborsColdThenFlush(t *testing.T) {
	cache := &fakeCache{
		projectStars: map[string][]string{"o/r": {"s1", "s2"}},
		hits:         map[string][]string{"s2": {"b/2"}},
		deferred:     map[string][]string{"s1": {"a/1"}},
	}
	aggregator := newTestAggregator(t, cache)

	got, err := aggregator.GetStarNeighbors(context.Background(), "o", "r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// s2's hit folds first, s1's deferred result folds after the flush
	want := []Neighbor{
		{Repo: "b/2", Stargazers: []string{"s2"}},
		{Repo: "a/1", Stargazers: []string{"s1"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected neighbours:\n got %v\nwant %v", got, want)
	}
	if len(cache.queue) != 0 {
		t.Errorf("expected queue drained within the call, got %v", cache.queue)
	}
}

func TestGetStarNeighborsDuplicateStargazerAppends(t *testing.T) {
	cache := &fakeCache{
		projectStars: map[string][]string{"o/r": {"s1", "s1"}},
		hits:         map[string][]string{"s1": {"a/1"}},
	}
	aggregator := newTestAggregator(t, cache)

	got, err := aggregator.GetStarNeighbors(context.Background(), "o", "r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Duplicates are preserved, not deduplicated
	want := []Neighbor{
		{Repo: "a/1", Stargazers: []string{"s1", "s1"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected neighbours:\n got %v\nwant %v", got, want)
	}
}

func TestGetStarNeighborsStargazerFailureAborts(t *testing.T) {
	wantErr := errors.New("upstream down")
	cache := &fakeCache{projectErr: wantErr}
	aggregator := newTestAggregator(t, cache)

	_, err := aggregator.GetStarNeighbors(context.Background(), "o", "r")
	if !errors.Is(err, wantErr) {
		t.Errorf("expected the stargazer failure to abort the query, got %v", err)
	}
}

func TestGetStarNeighborsFlushFailureAborts(t *testing.T) {
	wantErr := errors.New("batch failed")
	cache := &fakeCache{
		projectStars: map[string][]string{"o/r": {"s1"}},
		flushErr:     wantErr,
	}
	aggregator := newTestAggregator(t, cache)

	_, err := aggregator.GetStarNeighbors(context.Background(), "o", "r")
	if !errors.Is(err, wantErr) {
		t.Errorf("expected the flush failure to abort the query, got %v", err)
	}
}

func TestGetStarNeighborsNoStargazers(t *testing.T) {
	cache := &fakeCache{projectStars: map[string][]string{}}
	aggregator := newTestAggregator(t, cache)

	got, err := aggregator.GetStarNeighbors(context.Background(), "o", "r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no neighbours, got %v", got)
	}
}
