package playlist

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("playlist not found")
	ErrVideoNotInList = core.NewNotFoundError("video not in playlist")
	ErrNotOwner       = core.NewPermissionError("you are not the owner of this playlist")
	ErrNameExists     = core.NewConflictError("you already have a playlist with this name")
	ErrVideoAlreadyIn = core.NewConflictError("video already in playlist")
	errOwnerRequired  = errors.New("playlist owner is required")
)

type (
	Repository interface {
		CreatePlaylist(ctx context.Context, p Playlist) (Playlist, error)
		GetPlaylist(ctx context.Context, id string) (Playlist, error)
		// GetPlaylistByName does a case-insensitive match on Playlist.Name among the owner's playlists.
		GetPlaylistByName(ctx context.Context, ownerID, name string) (Playlist, error)
		// ListUserPlaylists lists the playlists of ownerID, most recently updated first.
		ListUserPlaylists(ctx context.Context, ownerID string) ([]Summary, error)
		// UpdatePlaylist saves every field of p, Videos included.
		UpdatePlaylist(ctx context.Context, p Playlist) (Playlist, error)
		DeletePlaylist(ctx context.Context, id string) error
	}

	OwnerGetter interface {
		GetSummary(ctx context.Context, id string) (core.UserSummary, error)
	}

	Service struct {
		repo     Repository
		videoSvc *video.Service
		owners   OwnerGetter
	}
)

func NewService(repo Repository, videoSvc *video.Service, owners OwnerGetter) *Service {
	return &Service{repo: repo, videoSvc: videoSvc, owners: owners}
}

func (svc *Service) checkName(ctx context.Context, ownerID, name, excludedID string) error {
	p, err := svc.repo.GetPlaylistByName(ctx, ownerID, name)
	switch {
	case err == ErrNotFound:
		return nil
	case err != nil:
		return errors.Wrap(err, "getting playlist by name")
	case p.ID != excludedID:
		return ErrNameExists
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ownerID string, np NewPlaylist) (Playlist, error) {
	if ownerID == "" {
		return Playlist{}, errOwnerRequired
	}
	if err := svc.checkName(ctx, ownerID, np.Name, ""); err != nil {
		return Playlist{}, err
	}
	now := time.Now().UTC()
	p, err := svc.repo.CreatePlaylist(ctx, Playlist{
		Name:        np.Name,
		Description: np.Description,
		Videos:      []string{},
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return p, errors.Wrap(err, "creating playlist")
}

func (svc *Service) UserPlaylists(ctx context.Context, userID string) ([]Summary, error) {
	if _, err := svc.owners.GetSummary(ctx, userID); err != nil {
		return nil, err
	}
	lists, err := svc.repo.ListUserPlaylists(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "listing user playlists")
	}
	if lists == nil {
		lists = []Summary{}
	}
	return lists, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Playlist, error) {
	if id == "" {
		return Playlist{}, ErrNotFound
	}
	return svc.repo.GetPlaylist(ctx, id)
}

// GetDetail resolves the published videos of a playlist; deleted videos are skipped.
func (svc *Service) GetDetail(ctx context.Context, id string) (Detail, error) {
	p, err := svc.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	owner, err := svc.owners.GetSummary(ctx, p.OwnerID)
	if err != nil {
		return Detail{}, errors.Wrap(err, "getting playlist owner")
	}

	d := Detail{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Owner:       &owner,
		Videos:      make([]video.Video, 0, len(p.Videos)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, videoID := range p.Videos {
		v, err := svc.videoSvc.Get(ctx, videoID)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return Detail{}, errors.Wrap(err, "getting playlist video")
		}
		if !v.IsPublished {
			continue
		}
		if vOwner, err := svc.owners.GetSummary(ctx, v.OwnerID); err == nil {
			v.Owner = &vOwner
		}
		d.Videos = append(d.Videos, v)
		d.TotalViews += v.Views
	}
	d.TotalVideos = len(d.Videos)
	return d, nil
}

func (svc *Service) getOwned(ctx context.Context, id, userID string) (Playlist, error) {
	p, err := svc.Get(ctx, id)
	if err != nil {
		return Playlist{}, err
	}
	if p.OwnerID != userID {
		return Playlist{}, ErrNotOwner
	}
	return p, nil
}

func (svc *Service) Update(ctx context.Context, id, userID string, up UpdatePlaylist) (Playlist, error) {
	p, err := svc.getOwned(ctx, id, userID)
	if err != nil {
		return Playlist{}, err
	}
	if up.Name != "" && !strings.EqualFold(up.Name, p.Name) {
		if err = svc.checkName(ctx, userID, up.Name, p.ID); err != nil {
			return Playlist{}, err
		}
	}
	if up.Name != "" {
		p.Name = up.Name
	}
	if up.Description != "" {
		p.Description = up.Description
	}
	p.UpdatedAt = time.Now().UTC()
	p, err = svc.repo.UpdatePlaylist(ctx, p)
	return p, errors.Wrap(err, "updating playlist")
}

func (svc *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := svc.getOwned(ctx, id, userID); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeletePlaylist(ctx, id), "deleting playlist")
}

// AddVideo appends an existing video to the playlist.
func (svc *Service) AddVideo(ctx context.Context, playlistID, videoID, userID string) (Playlist, error) {
	p, err := svc.getOwned(ctx, playlistID, userID)
	if err != nil {
		return Playlist{}, err
	}
	if _, err = svc.videoSvc.GetVisible(ctx, videoID, userID); err != nil {
		return Playlist{}, err
	}
	if p.HasVideo(videoID) {
		return Playlist{}, ErrVideoAlreadyIn
	}
	p.Videos = append(p.Videos, videoID)
	p.UpdatedAt = time.Now().UTC()
	p, err = svc.repo.UpdatePlaylist(ctx, p)
	return p, errors.Wrap(err, "adding video to playlist")
}

func (svc *Service) RemoveVideo(ctx context.Context, playlistID, videoID, userID string) (Playlist, error) {
	p, err := svc.getOwned(ctx, playlistID, userID)
	if err != nil {
		return Playlist{}, err
	}
	if !p.HasVideo(videoID) {
		return Playlist{}, ErrVideoNotInList
	}
	videos := make([]string, 0, len(p.Videos)-1)
	for _, id := range p.Videos {
		if id != videoID {
			videos = append(videos, id)
		}
	}
	p.Videos = videos
	p.UpdatedAt = time.Now().UTC()
	p, err = svc.repo.UpdatePlaylist(ctx, p)
	return p, errors.Wrap(err, "removing video from playlist")
}
