// Package neighbors joins the two cached relations into the star-neighbour
// answer: which repositories share stargazers with the queried one, and who
// those shared stargazers are.

package neighbors

import (
	"context"

	"github.com/mx42/stargazer/pkg/log"
)

// Neighbor is one entry of the aggregation result: a repository sharing at
// least one stargazer with the queried repository.
type Neighbor struct {
	Repo       string   `json:"repo"`
	Stargazers []string `json:"stargazers"`
}

// StarCache is the slice of the cache layer the aggregator consumes.
type StarCache interface {
	GetProjectStars(ctx context.Context, owner, repo string) ([]string, error)
	GetUserStars(ctx context.Context, user string) ([]string, error)
	FlushQueuedUserStars(ctx context.Context) (map[string][]string, error)
}

type Aggregator struct {
	Logger log.Logger
	Cache  StarCache
}

func NewAggregator(logger log.Logger, cache StarCache) (*Aggregator, error) {
	return &Aggregator{
		Logger: logger,
		Cache:  cache,
	}, nil
}

// GetStarNeighbors runs one end-to-end query: resolve the stargazers of
// owner/repo, resolve each stargazer's starred repositories (hits fold
// immediately, misses are deferred to one batched round), flush the batch,
// and fold its results in stargazer encounter order. The queried repository
// is excluded from its own neighbours. Any failure aborts the whole query;
// data already cached by the flush stays cached.
func (a *Aggregator) GetStarNeighbors(ctx context.Context, owner, repo string) ([]Neighbor, error) {
	stargazers, err := a.Cache.GetProjectStars(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug(ctx, "Aggregating neighbours of %s/%s over %d stargazers", owner, repo, len(stargazers))

	// Working mapping, keyed by starred repo. order records the first
	// encounter of each key so the output is stable per run. Duplicate
	// folds for the same stargazer append duplicate names on purpose.
	byRepo := make(map[string][]string)
	order := []string{}
	fold := func(stargazer string, starred []string) {
		for _, star := range starred {
			if _, seen := byRepo[star]; !seen {
				order = append(order, star)
			}
			byRepo[star] = append(byRepo[star], stargazer)
		}
	}

	for _, stargazer := range stargazers {
		starred, err := a.Cache.GetUserStars(ctx, stargazer)
		if err != nil {
			return nil, err
		}
		fold(stargazer, starred)
	}

	flushed, err := a.Cache.FlushQueuedUserStars(ctx)
	if err != nil {
		return nil, err
	}

	// The flush result is a map; fold it in stargazer encounter order,
	// not map iteration order.
	for _, stargazer := range stargazers {
		if starred, ok := flushed[stargazer]; ok {
			fold(stargazer, starred)
		}
	}

	// A repository cannot be its own neighbour
	self := owner + "/" + repo
	result := make([]Neighbor, 0, len(order))
	for _, starred := range order {
		if starred == self {
			continue
		}
		result = append(result, Neighbor{Repo: starred, Stargazers: byRepo[starred]})
	}
	return result, nil
}
