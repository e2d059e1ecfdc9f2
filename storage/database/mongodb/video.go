package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

var videoSortFields = map[string]string{
	"createdAt": "created_at",
	"views":     "views",
	"duration":  "duration",
	"title":     "title",
}

type videoDoc struct {
	ID                string    `bson:"_id"`
	OwnerID           string    `bson:"owner_id"`
	VideoFile         string    `bson:"video_file"`
	VideoPublicID     string    `bson:"video_public_id,omitempty"`
	Thumbnail         string    `bson:"thumbnail"`
	ThumbnailPublicID string    `bson:"thumbnail_public_id,omitempty"`
	Title             string    `bson:"title"`
	Description       string    `bson:"description"`
	Duration          float64   `bson:"duration"`
	Views             int64     `bson:"views"`
	IsPublished       bool      `bson:"is_published"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
	Owner             *userDoc  `bson:"owner,omitempty"` // joined by ownerLookup, never stored
}

// videoDetailDoc is a video joined with its likes and its owner's subscribers.
type videoDetailDoc struct {
	Video            videoDoc `bson:",inline"`
	LikesCount       int64    `bson:"likes_count"`
	IsLiked          bool     `bson:"is_liked"`
	SubscribersCount int64    `bson:"subscribers_count"`
	IsSubscribed     bool     `bson:"is_subscribed"`
}

func boilVideo(v video.Video) videoDoc {
	return videoDoc{
		ID:                v.ID,
		OwnerID:           v.OwnerID,
		VideoFile:         v.VideoFile,
		VideoPublicID:     v.VideoPublicID,
		Thumbnail:         v.Thumbnail,
		ThumbnailPublicID: v.ThumbnailPublicID,
		Title:             v.Title,
		Description:       v.Description,
		Duration:          v.Duration,
		Views:             v.Views,
		IsPublished:       v.IsPublished,
		CreatedAt:         v.CreatedAt.UTC(),
		UpdatedAt:         v.UpdatedAt.UTC(),
	}
}

func (d videoDoc) unboil(owner *core.UserSummary) video.Video {
	return video.Video{
		ID:                d.ID,
		VideoFile:         d.VideoFile,
		VideoPublicID:     d.VideoPublicID,
		Thumbnail:         d.Thumbnail,
		ThumbnailPublicID: d.ThumbnailPublicID,
		OwnerID:           d.OwnerID,
		Owner:             owner,
		Title:             d.Title,
		Description:       d.Description,
		Duration:          d.Duration,
		Views:             d.Views,
		IsPublished:       d.IsPublished,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

type videoRepository struct {
	db *DB
}

var _ video.Repository = (*videoRepository)(nil) // interface compliance check

func NewVideoRepository(db *DB) *videoRepository {
	return &videoRepository{db: db}
}

func (repo videoRepository) videos() *mongo.Collection {
	return repo.db.col(colVideos)
}

// populated converts a doc whose owner was joined by ownerLookup.
func (d videoDoc) populated() video.Video {
	var owner *core.UserSummary
	if d.Owner != nil {
		s := d.Owner.summary()
		owner = &s
	}
	return d.unboil(owner)
}

// withOwners converts docs, loading the owners that were not joined already.
func (repo videoRepository) withOwners(ctx context.Context, docs []videoDoc) ([]video.Video, error) {
	var missing []string
	for _, d := range docs {
		if d.Owner == nil {
			missing = append(missing, d.OwnerID)
		}
	}
	owners, err := repo.db.summaries(ctx, missing...)
	if err != nil {
		return nil, err
	}
	videos := make([]video.Video, 0, len(docs))
	for _, d := range docs {
		if d.Owner != nil {
			videos = append(videos, d.populated())
		} else {
			videos = append(videos, d.unboil(owners[d.OwnerID]))
		}
	}
	return videos, nil
}

// videoPipeline matches the video with id and joins its owner.
func videoPipeline(id string) mongo.Pipeline {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": id}}}}
	return append(pipeline, ownerLookup("owner_id")...)
}

func (repo videoRepository) CreateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	v.ID = newID()
	if _, err := repo.videos().InsertOne(ctx, boilVideo(v)); err != nil {
		return video.Video{}, errors.Wrap(err, "inserting video")
	}
	return repo.GetVideo(ctx, v.ID)
}

func (repo videoRepository) GetVideo(ctx context.Context, id string) (video.Video, error) {
	docs, err := aggregateAll[videoDoc](ctx, repo.videos(), videoPipeline(id))
	if err != nil {
		return video.Video{}, err
	}
	if len(docs) == 0 {
		return video.Video{}, video.ErrNotFound
	}
	return docs[0].populated(), nil
}

// GetVideoDetail joins the owner, the likes and the owner's subscribers in a single aggregation.
func (repo videoRepository) GetVideoDetail(ctx context.Context, id, viewerID string) (video.Detail, error) {
	pipeline := append(videoPipeline(id),
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": colLikes, "localField": "_id", "foreignField": "video_id", "as": "likes",
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": colSubscriptions, "localField": "owner_id", "foreignField": "channel_id", "as": "subscribers",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"likes_count":       bson.M{"$size": "$likes"},
			"is_liked":          bson.M{"$in": bson.A{viewerID, "$likes.liked_by"}},
			"subscribers_count": bson.M{"$size": "$subscribers"},
			"is_subscribed":     bson.M{"$in": bson.A{viewerID, "$subscribers.subscriber_id"}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"likes": 0, "subscribers": 0}}},
	)
	docs, err := aggregateAll[videoDetailDoc](ctx, repo.videos(), pipeline)
	if err != nil {
		return video.Detail{}, err
	}
	if len(docs) == 0 {
		return video.Detail{}, video.ErrNotFound
	}
	d := docs[0]
	return video.Detail{
		Video:            d.Video.populated(),
		LikesCount:       d.LikesCount,
		IsLiked:          viewerID != "" && d.IsLiked,
		SubscribersCount: d.SubscribersCount,
		IsSubscribed:     viewerID != "" && d.IsSubscribed,
	}, nil
}

func (repo videoRepository) QueryVideos(ctx context.Context, filter video.QueryFilter, ordering []core.DBOrdering, page core.PageQuery) (core.Page[video.Video], error) {
	query := bson.M{}
	if filter.OwnerID != "" {
		query["owner_id"] = filter.OwnerID
	}
	if !filter.IncludeUnpublished {
		query["is_published"] = true
	}
	if filter.Search != "" {
		pattern := containsFold(filter.Search)
		query["$or"] = bson.A{bson.M{"title": pattern}, bson.M{"description": pattern}}
	}

	sort := bson.D{}
	for _, ord := range ordering {
		if fld, ok := videoSortFields[ord.Field]; ok {
			sort = append(sort, bson.E{Key: fld, Value: ord.Direction()})
		}
	}
	sort = append(sort, bson.E{Key: "_id", Value: 1})

	docs, total, err := findPage[videoDoc](ctx, repo.videos(), query, sort, page, true, ownerLookup("owner_id")...)
	if err != nil {
		return core.Page[video.Video]{}, err
	}
	videos := make([]video.Video, 0, len(docs))
	for _, d := range docs {
		videos = append(videos, d.populated())
	}
	return core.NewPage(videos, total, page), nil
}

// UpdateVideo saves every field but the views count.
func (repo videoRepository) UpdateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	d := boilVideo(v)
	set := bson.M{
		"video_file":          d.VideoFile,
		"video_public_id":     d.VideoPublicID,
		"thumbnail":           d.Thumbnail,
		"thumbnail_public_id": d.ThumbnailPublicID,
		"title":               d.Title,
		"description":         d.Description,
		"duration":            d.Duration,
		"is_published":        d.IsPublished,
		"updated_at":          d.UpdatedAt,
	}
	res, err := repo.videos().UpdateByID(ctx, v.ID, bson.M{"$set": set})
	if err != nil {
		return video.Video{}, errors.Wrap(err, "updating video")
	}
	if res.MatchedCount == 0 {
		return video.Video{}, video.ErrNotFound
	}
	return repo.GetVideo(ctx, v.ID)
}

func (repo videoRepository) IncrementViews(ctx context.Context, id string) error {
	res, err := repo.videos().UpdateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return errors.Wrap(err, "incrementing views")
	}
	if res.MatchedCount == 0 {
		return video.ErrNotFound
	}
	return nil
}

// DeleteVideo also deletes its comments and the likes on both,
// then removes it from playlists & watch histories.
func (repo videoRepository) DeleteVideo(ctx context.Context, id string) error {
	if err := deleteOne(ctx, repo.videos(), id, video.ErrNotFound); err != nil {
		return err
	}

	comments, err := findAll[commentDoc](ctx, repo.db.col(colComments), bson.M{"video_id": id})
	if err != nil {
		return err
	}
	commentIDs := pluck(comments, func(c commentDoc) string { return c.ID })
	if _, err = repo.db.col(colComments).DeleteMany(ctx, bson.M{"video_id": id}); err != nil {
		return errors.Wrap(err, "deleting video comments")
	}
	likesFilter := bson.M{"$or": bson.A{
		bson.M{"video_id": id},
		bson.M{"comment_id": bson.M{"$in": commentIDs}},
	}}
	if _, err = repo.db.col(colLikes).DeleteMany(ctx, likesFilter); err != nil {
		return errors.Wrap(err, "deleting video likes")
	}

	pull := bson.M{"$pull": bson.M{"videos": id}}
	if _, err = repo.db.col(colPlaylists).UpdateMany(ctx, bson.M{"videos": id}, pull); err != nil {
		return errors.Wrap(err, "removing video from playlists")
	}
	pull = bson.M{"$pull": bson.M{"watch_history": id}}
	_, err = repo.db.col(colUsers).UpdateMany(ctx, bson.M{"watch_history": id}, pull)
	return errors.Wrap(err, "removing video from watch histories")
}
