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

// StarEdge is one cached "starred_by starred owner/repo" fact. Rows are
// append-only: stale rows are filtered on read, never deleted.
type StarEdge struct {
	Model
	Owner     string    `json:"owner" gorm:"column:owner;type:varchar(255);not null;index:idx_repo_stars_key"`
	Repo      string    `json:"repo" gorm:"column:repo;type:varchar(255);not null;index:idx_repo_stars_key"`
	StarredBy string    `json:"starred_by" gorm:"column:starred_by;type:varchar(255);not null"`
	CachedAt  time.Time `json:"cached_at" gorm:"column:cached_at;not null;index"`
}

func NewStarEdge(config *cfg.Config, logger log.Logger, mysql *db.Mysql) (*StarEdge, error) {
	return &StarEdge{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  mysql,
		},
	}, nil
}

func (e *StarEdge) TableName() string {
	return "repo_stars"
}

// FreshStargazers returns the stargazer logins cached for owner/repo within
// the freshness window, in insertion order.
func (e *StarEdge) FreshStargazers(ctx context.Context, owner, repo string, maxAge time.Duration) ([]string, error) {
	db, err := e.Mysql.Db()
	if err != nil {
		e.Logger.Error(ctx, "Failed to get database connection: %v", err)
		return nil, err
	}

	cutoff := time.Now().Add(-maxAge)
	var logins []string
	err = db.WithContext(ctx).
		Model(&StarEdge{}).
		Where("owner = ? AND repo = ? AND cached_at > ?", owner, repo, cutoff).
		Order("id").
		Pluck("starred_by", &logins).Error
	if err != nil {
		e.Logger.Error(ctx, "Failed to read star edges for %s/%s: %v", owner, repo, err)
		return nil, err
	}
	return logins, nil
}

// CreateBatch stores one edge per login, all stamped with the current time.
func (e *StarEdge) CreateBatch(ctx context.Context, owner, repo string, logins []string) error {
	if len(logins) == 0 {
		return nil
	}

	db, err := e.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	now := time.Now()
	edges := make([]StarEdge, 0, len(logins))
	for _, login := range logins {
		edges = append(edges, StarEdge{
			Owner:     TruncateString(owner, 250),
			Repo:      TruncateString(repo, 250),
			StarredBy: TruncateString(login, 250),
			CachedAt:  now,
		})
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(edges, 100).Error; err != nil {
			return fmt.Errorf("failed to batch create star edges: %w", err)
		}
		return nil
	})
}
