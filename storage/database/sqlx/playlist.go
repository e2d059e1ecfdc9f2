package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core/playlist"
)

const playlistCols = `p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at,
	COALESCE((SELECT array_agg(pv.video_id::text ORDER BY pv.position) FROM playlist_videos pv
		WHERE pv.playlist_id = p.id), '{}') AS videos`

type playlistRow struct {
	ID          string         `db:"id"`
	OwnerID     string         `db:"owner_id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	Videos      pq.StringArray `db:"videos"`
}

func (r playlistRow) unboil() playlist.Playlist {
	videos := make([]string, len(r.Videos))
	copy(videos, r.Videos)
	return playlist.Playlist{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Videos:      videos,
		OwnerID:     r.OwnerID,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type playlistRepository struct {
	db *sqlx.DB
}

var _ playlist.Repository = (*playlistRepository)(nil) // interface compliance check

func NewPlaylistRepository(db *sqlx.DB) *playlistRepository {
	return &playlistRepository{db: db}
}

func (repo playlistRepository) CreatePlaylist(ctx context.Context, p playlist.Playlist) (playlist.Playlist, error) {
	p.ID = uuid.NewString()
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, q, p.ID, p.OwnerID, p.Name, p.Description, p.CreatedAt.UTC(), p.UpdatedAt.UTC()); err != nil {
			if isUniqueViolation(err) {
				return playlist.ErrNameExists
			}
			return errors.Wrap(err, "inserting playlist")
		}
		return insertPlaylistVideos(ctx, tx, p.ID, p.Videos)
	})
	if err != nil {
		return playlist.Playlist{}, err
	}
	return repo.GetPlaylist(ctx, p.ID)
}

func insertPlaylistVideos(ctx context.Context, tx *sqlx.Tx, playlistID string, videoIDs []string) error {
	q := tx.Rebind("INSERT INTO playlist_videos (playlist_id, video_id, position) VALUES (?, ?, ?)")
	for i, id := range videoIDs {
		if _, err := tx.ExecContext(ctx, q, playlistID, id, i); err != nil {
			return errors.Wrap(err, "inserting playlist video")
		}
	}
	return nil
}

func (repo playlistRepository) GetPlaylist(ctx context.Context, id string) (playlist.Playlist, error) {
	if !validID(id) {
		return playlist.Playlist{}, playlist.ErrNotFound
	}
	var r playlistRow
	q := repo.db.Rebind("SELECT " + playlistCols + " FROM playlists p WHERE p.id = ?")
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return playlist.Playlist{}, trapNoRowsErr(err, playlist.ErrNotFound, "selecting playlist")
	}
	return r.unboil(), nil
}

func (repo playlistRepository) GetPlaylistByName(ctx context.Context, ownerID, name string) (playlist.Playlist, error) {
	if !validID(ownerID) {
		return playlist.Playlist{}, playlist.ErrNotFound
	}
	var r playlistRow
	q := repo.db.Rebind("SELECT " + playlistCols + " FROM playlists p WHERE p.owner_id = ? AND LOWER(p.name) = LOWER(?)")
	if err := repo.db.GetContext(ctx, &r, q, ownerID, name); err != nil {
		return playlist.Playlist{}, trapNoRowsErr(err, playlist.ErrNotFound, "selecting playlist by name")
	}
	return r.unboil(), nil
}

func (repo playlistRepository) ListUserPlaylists(ctx context.Context, ownerID string) ([]playlist.Summary, error) {
	summaries := make([]playlist.Summary, 0)
	if !validID(ownerID) {
		return summaries, nil
	}

	var rows []struct {
		playlistRow
		Thumbnail string `db:"thumbnail"`
	}
	q := repo.db.Rebind("SELECT " + playlistCols + `,
		COALESCE((SELECT v.thumbnail FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id
			WHERE pv.playlist_id = p.id ORDER BY pv.position LIMIT 1), '') AS thumbnail
		FROM playlists p WHERE p.owner_id = ? ORDER BY p.updated_at DESC, p.id`)
	if err := repo.db.SelectContext(ctx, &rows, q, ownerID); err != nil {
		return nil, errors.Wrap(err, "selecting playlists")
	}
	for _, r := range rows {
		p := r.unboil()
		summaries = append(summaries, playlist.Summary{Playlist: p, TotalVideos: len(p.Videos), Thumbnail: r.Thumbnail})
	}
	return summaries, nil
}

// UpdatePlaylist rewrites the playlist's videos in order.
func (repo playlistRepository) UpdatePlaylist(ctx context.Context, p playlist.Playlist) (playlist.Playlist, error) {
	if !validID(p.ID) {
		return playlist.Playlist{}, playlist.ErrNotFound
	}
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := tx.Rebind("UPDATE playlists SET name = ?, description = ?, updated_at = ? WHERE id = ?")
		res, err := tx.ExecContext(ctx, q, p.Name, p.Description, p.UpdatedAt.UTC(), p.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return playlist.ErrNameExists
			}
			return errors.Wrap(err, "updating playlist")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return playlist.ErrNotFound
		}
		if _, err = tx.ExecContext(ctx, tx.Rebind("DELETE FROM playlist_videos WHERE playlist_id = ?"), p.ID); err != nil {
			return errors.Wrap(err, "clearing playlist videos")
		}
		return insertPlaylistVideos(ctx, tx, p.ID, p.Videos)
	})
	if err != nil {
		return playlist.Playlist{}, err
	}
	return repo.GetPlaylist(ctx, p.ID)
}

func (repo playlistRepository) DeletePlaylist(ctx context.Context, id string) error {
	if !validID(id) {
		return playlist.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM playlists WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting playlist")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return playlist.ErrNotFound
	}
	return nil
}
