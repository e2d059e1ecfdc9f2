package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Prajjwal2051/Viewly-sub002/core/playlist"
)

type playlistDoc struct {
	ID          string    `bson:"_id"`
	OwnerID     string    `bson:"owner_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Videos      []string  `bson:"videos"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func boilPlaylist(p playlist.Playlist) playlistDoc {
	videos := p.Videos
	if videos == nil {
		videos = []string{}
	}
	return playlistDoc{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Description: p.Description,
		Videos:      videos,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func (d playlistDoc) unboil() playlist.Playlist {
	videos := d.Videos
	if videos == nil {
		videos = []string{}
	}
	return playlist.Playlist{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Videos:      videos,
		OwnerID:     d.OwnerID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

type playlistRepository struct {
	db *DB
}

var _ playlist.Repository = (*playlistRepository)(nil) // interface compliance check

func NewPlaylistRepository(db *DB) *playlistRepository {
	return &playlistRepository{db: db}
}

func (repo playlistRepository) playlists() *mongo.Collection {
	return repo.db.col(colPlaylists)
}

func (repo playlistRepository) CreatePlaylist(ctx context.Context, p playlist.Playlist) (playlist.Playlist, error) {
	p.ID = newID()
	if _, err := repo.playlists().InsertOne(ctx, boilPlaylist(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return playlist.Playlist{}, playlist.ErrNameExists
		}
		return playlist.Playlist{}, errors.Wrap(err, "inserting playlist")
	}
	return repo.GetPlaylist(ctx, p.ID)
}

func (repo playlistRepository) GetPlaylist(ctx context.Context, id string) (playlist.Playlist, error) {
	var d playlistDoc
	if err := repo.playlists().FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return playlist.Playlist{}, trapNoDocsErr(err, playlist.ErrNotFound, "finding playlist")
	}
	return d.unboil(), nil
}

func (repo playlistRepository) GetPlaylistByName(ctx context.Context, ownerID, name string) (playlist.Playlist, error) {
	var d playlistDoc
	opts := options.FindOne().SetCollation(caseInsensitive)
	if err := repo.playlists().FindOne(ctx, bson.M{"owner_id": ownerID, "name": name}, opts).Decode(&d); err != nil {
		return playlist.Playlist{}, trapNoDocsErr(err, playlist.ErrNotFound, "finding playlist by name")
	}
	return d.unboil(), nil
}

func (repo playlistRepository) ListUserPlaylists(ctx context.Context, ownerID string) ([]playlist.Summary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}})
	docs, err := findAll[playlistDoc](ctx, repo.playlists(), bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}

	var videoIDs []string
	for _, d := range docs {
		videoIDs = append(videoIDs, d.Videos...)
	}
	thumbs := make(map[string]string, len(videoIDs))
	if len(videoIDs) > 0 {
		opts := options.Find().SetProjection(bson.M{"thumbnail": 1})
		videos, err := findAll[videoDoc](ctx, repo.db.col(colVideos), bson.M{"_id": bson.M{"$in": videoIDs}}, opts)
		if err != nil {
			return nil, err
		}
		for _, v := range videos {
			thumbs[v.ID] = v.Thumbnail
		}
	}

	summaries := make([]playlist.Summary, 0, len(docs))
	for _, d := range docs {
		s := playlist.Summary{Playlist: d.unboil(), TotalVideos: len(d.Videos)}
		for _, id := range d.Videos {
			if thumb, ok := thumbs[id]; ok {
				s.Thumbnail = thumb
				break
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (repo playlistRepository) UpdatePlaylist(ctx context.Context, p playlist.Playlist) (playlist.Playlist, error) {
	d := boilPlaylist(p)
	set := bson.M{"name": d.Name, "description": d.Description, "videos": d.Videos, "updated_at": d.UpdatedAt}
	res, err := repo.playlists().UpdateByID(ctx, p.ID, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return playlist.Playlist{}, playlist.ErrNameExists
		}
		return playlist.Playlist{}, errors.Wrap(err, "updating playlist")
	}
	if res.MatchedCount == 0 {
		return playlist.Playlist{}, playlist.ErrNotFound
	}
	return repo.GetPlaylist(ctx, p.ID)
}

func (repo playlistRepository) DeletePlaylist(ctx context.Context, id string) error {
	return deleteOne(ctx, repo.playlists(), id, playlist.ErrNotFound)
}
