package model

import (
	"context"
	"fmt"
	"time"

	"github.com/mx42/stargazer/cfg"
	"github.com/mx42/stargazer/pkg/db"
	"github.com/mx42/stargazer/pkg/log"
	"gorm.io/gorm"
)

// StarredRepoEdge is one cached "user starred starred_repo" fact, with the
// same append-only lifecycle as StarEdge.
type StarredRepoEdge struct {
	Model
	User        string    `json:"user" gorm:"column:user;type:varchar(255);not null;index:idx_users_stars_key"`
	StarredRepo string    `json:"starred_repo" gorm:"column:starred_repo;type:varchar(255);not null"`
	CachedAt    time.Time `json:"cached_at" gorm:"column:cached_at;not null;index"`
}

func NewStarredRepoEdge(config *cfg.Config, logger log.Logger, mysql *db.Mysql) (*StarredRepoEdge, error) {
	return &StarredRepoEdge{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  mysql,
		},
	}, nil
}

func (e *StarredRepoEdge) TableName() string {
	return "users_stars"
}

// FreshStarredRepos returns the repositories cached for user within the
// freshness window, in insertion order.
func (e *StarredRepoEdge) FreshStarredRepos(ctx context.Context, user string, maxAge time.Duration) ([]string, error) {
	db, err := e.Mysql.Db()
	if err != nil {
		e.Logger.Error(ctx, "Failed to get database connection: %v", err)
		return nil, err
	}

	cutoff := time.Now().Add(-maxAge)
	var repos []string
	err = db.WithContext(ctx).
		Model(&StarredRepoEdge{}).
		Where("user = ? AND cached_at > ?", user, cutoff).
		Order("id").
		Pluck("starred_repo", &repos).Error
	if err != nil {
		e.Logger.Error(ctx, "Failed to read starred repos for user %s: %v", user, err)
		return nil, err
	}
	return repos, nil
}

// CreateBatch stores one edge per starred repository, all stamped with the
// current time.
func (e *StarredRepoEdge) CreateBatch(ctx context.Context, user string, repos []string) error {
	if len(repos) == 0 {
		return nil
	}

	db, err := e.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	now := time.Now()
	edges := make([]StarredRepoEdge, 0, len(repos))
	for _, repo := range repos {
		edges = append(edges, StarredRepoEdge{
			User:        TruncateString(user, 250),
			StarredRepo: TruncateString(repo, 250),
			CachedAt:    now,
		})
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(edges, 100).Error; err != nil {
			return fmt.Errorf("failed to batch create starred repo edges: %w", err)
		}
		return nil
	})
}
