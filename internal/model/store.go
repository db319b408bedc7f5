package model

import (
	"context"
	"time"

	"github.com/mx42/stargazer/cfg"
	"github.com/mx42/stargazer/pkg/db"
	"github.com/mx42/stargazer/pkg/log"
)

// Store adapts the two edge models to the cache's EdgeStore interface.
type Store struct {
	Config            *cfg.Config
	Logger            log.Logger
	StarEdgeMd        *StarEdge
	StarredRepoEdgeMd *StarredRepoEdge
}

func NewStore(config *cfg.Config, logger log.Logger, mysql *db.Mysql) (*Store, error) {
	starEdgeMd, err := NewStarEdge(config, logger, mysql)
	if err != nil {
		return nil, err
	}
	starredRepoEdgeMd, err := NewStarredRepoEdge(config, logger, mysql)
	if err != nil {
		return nil, err
	}
	return &Store{
		Config:            config,
		Logger:            logger,
		StarEdgeMd:        starEdgeMd,
		StarredRepoEdgeMd: starredRepoEdgeMd,
	}, nil
}

func (s *Store) FreshProjectStars(ctx context.Context, owner, repo string, maxAge time.Duration) ([]string, error) {
	return s.StarEdgeMd.FreshStargazers(ctx, owner, repo, maxAge)
}

func (s *Store) SaveProjectStars(ctx context.Context, owner, repo string, logins []string) error {
	return s.StarEdgeMd.CreateBatch(ctx, owner, repo, logins)
}

func (s *Store) FreshUserStars(ctx context.Context, user string, maxAge time.Duration) ([]string, error) {
	return s.StarredRepoEdgeMd.FreshStarredRepos(ctx, user, maxAge)
}

func (s *Store) SaveUserStars(ctx context.Context, user string, repos []string) error {
	return s.StarredRepoEdgeMd.CreateBatch(ctx, user, repos)
}
