package inmem

import (
	"context"
	"slices"
	"strings"

	"github.com/Prajjwal2051/Viewly-sub002/core/playlist"
)

type playlistRepository struct {
	db *DB
}

var _ playlist.Repository = (*playlistRepository)(nil) // interface compliance check

func NewPlaylistRepository(db *DB) *playlistRepository {
	return &playlistRepository{db: db}
}

func copyPlaylist(p playlist.Playlist) playlist.Playlist {
	p.Videos = slices.Clone(p.Videos)
	if p.Videos == nil {
		p.Videos = []string{}
	}
	return p
}

func (repo *playlistRepository) CreatePlaylist(_ context.Context, p playlist.Playlist) (playlist.Playlist, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p.ID = newID()
	p = copyPlaylist(p)
	repo.db.playlists.insert(p.ID, p)
	return copyPlaylist(p), nil
}

func (repo *playlistRepository) GetPlaylist(_ context.Context, id string) (playlist.Playlist, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	p, ok := repo.db.playlists.get(id)
	if !ok {
		return playlist.Playlist{}, playlist.ErrNotFound
	}
	return copyPlaylist(*p), nil
}

func (repo *playlistRepository) GetPlaylistByName(_ context.Context, ownerID, name string) (playlist.Playlist, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, p := range repo.db.playlists.all() {
		if p.OwnerID == ownerID && strings.EqualFold(p.Name, name) {
			return copyPlaylist(*p), nil
		}
	}
	return playlist.Playlist{}, playlist.ErrNotFound
}

func (repo *playlistRepository) ListUserPlaylists(_ context.Context, ownerID string) ([]playlist.Summary, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	lists := repo.db.playlists.filter(func(p *playlist.Playlist) bool { return p.OwnerID == ownerID })
	slices.Reverse(lists)
	sortNewestFirst(lists, func(p *playlist.Playlist) int64 { return p.UpdatedAt.UnixNano() })

	summaries := make([]playlist.Summary, 0, len(lists))
	for _, p := range lists {
		s := playlist.Summary{Playlist: copyPlaylist(*p), TotalVideos: len(p.Videos)}
		for _, id := range p.Videos {
			if v, ok := repo.db.videos.get(id); ok {
				s.Thumbnail = v.Thumbnail
				break
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (repo *playlistRepository) UpdatePlaylist(_ context.Context, p playlist.Playlist) (playlist.Playlist, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	existing, ok := repo.db.playlists.get(p.ID)
	if !ok {
		return playlist.Playlist{}, playlist.ErrNotFound
	}
	*existing = copyPlaylist(p)
	return copyPlaylist(p), nil
}

func (repo *playlistRepository) DeletePlaylist(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if !repo.db.playlists.delete(id) {
		return playlist.ErrNotFound
	}
	return nil
}
