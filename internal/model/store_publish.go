package model

import (
	"context"

	"github.com/mx42/stargazer/pkg/kafka"
	"github.com/mx42/stargazer/pkg/log"
)

// PublishingStore decorates Store with write-back events on Kafka. Every
// persisted batch is also published, so consumers (see cmd/consumer) can
// warm the cache of other instances. Publish failures are logged and never
// fail the write.
type PublishingStore struct {
	*Store
	Logger    log.Logger
	starEdges *kafka.Producer
	userStars *kafka.Producer
}

func NewPublishingStore(store *Store, logger log.Logger, starEdges, userStars *kafka.Producer) (*PublishingStore, error) {
	return &PublishingStore{
		Store:     store,
		Logger:    logger,
		starEdges: starEdges,
		userStars: userStars,
	}, nil
}

func (s *PublishingStore) SaveProjectStars(ctx context.Context, owner, repo string, logins []string) error {
	if err := s.Store.SaveProjectStars(ctx, owner, repo, logins); err != nil {
		return err
	}

	msg := StarEdgeMessage{Owner: owner, Repo: repo, Stargazers: logins}
	if err := s.starEdges.Publish(ctx, "star-edge", msg); err != nil {
		s.Logger.Warn(ctx, "Failed to publish star edges for %s/%s: %v", owner, repo, err)
	}
	return nil
}

func (s *PublishingStore) SaveUserStars(ctx context.Context, user string, repos []string) error {
	if err := s.Store.SaveUserStars(ctx, user, repos); err != nil {
		return err
	}

	msg := UserStarMessage{User: user, StarredRepos: repos}
	if err := s.userStars.Publish(ctx, "user-star", msg); err != nil {
		s.Logger.Warn(ctx, "Failed to publish stars of user %s: %v", user, err)
	}
	return nil
}
