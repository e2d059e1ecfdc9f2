package dashboard

import (
	"context"

	"github.com/pkg/errors"
)

type (
	Repository interface {
		GetChannelStats(ctx context.Context, channelID string) (Stats, error)
		// GetChannelVideos lists every video of the channel, published or not, newest first.
		GetChannelVideos(ctx context.Context, channelID string) ([]ChannelVideo, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Stats(ctx context.Context, channelID string) (Stats, error) {
	stats, err := svc.repo.GetChannelStats(ctx, channelID)
	return stats, errors.Wrap(err, "getting channel stats")
}

func (svc *Service) Videos(ctx context.Context, channelID string) ([]ChannelVideo, error) {
	videos, err := svc.repo.GetChannelVideos(ctx, channelID)
	if err != nil {
		return nil, errors.Wrap(err, "getting channel videos")
	}
	if videos == nil {
		videos = []ChannelVideo{}
	}
	return videos, nil
}
