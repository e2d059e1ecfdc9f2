package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
)

type userDoc struct {
	ID                 string    `bson:"_id"`
	Username           string    `bson:"username"`
	Email              string    `bson:"email"`
	FullName           string    `bson:"full_name"`
	Avatar             string    `bson:"avatar"`
	AvatarPublicID     string    `bson:"avatar_public_id,omitempty"`
	CoverImage         string    `bson:"cover_image,omitempty"`
	CoverImagePublicID string    `bson:"cover_image_public_id,omitempty"`
	WatchHistory       []string  `bson:"watch_history"` // most recent first
	PasswordHash       []byte    `bson:"password_hash"`
	RefreshTokenHash   string    `bson:"refresh_token_hash,omitempty"`
	CreatedAt          time.Time `bson:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at"`
	LastLogin          time.Time `bson:"last_login,omitempty"`
}

func boilUser(usr user.User) userDoc {
	history := usr.WatchHistory
	if history == nil {
		history = []string{}
	}
	return userDoc{
		ID:                 usr.ID,
		Username:           usr.Username,
		Email:              usr.Email,
		FullName:           usr.FullName,
		Avatar:             usr.Avatar,
		AvatarPublicID:     usr.AvatarPublicID,
		CoverImage:         usr.CoverImage,
		CoverImagePublicID: usr.CoverImagePublicID,
		WatchHistory:       history,
		PasswordHash:       usr.PasswordHash,
		RefreshTokenHash:   usr.RefreshTokenHash,
		CreatedAt:          usr.CreatedAt.UTC(),
		UpdatedAt:          usr.UpdatedAt.UTC(),
		LastLogin:          usr.LastLogin.UTC(),
	}
}

func (d userDoc) unboil() user.User {
	history := d.WatchHistory
	if history == nil {
		history = []string{}
	}
	usr := user.User{
		ID:                 d.ID,
		Username:           d.Username,
		Email:              d.Email,
		FullName:           d.FullName,
		Avatar:             d.Avatar,
		AvatarPublicID:     d.AvatarPublicID,
		CoverImage:         d.CoverImage,
		CoverImagePublicID: d.CoverImagePublicID,
		WatchHistory:       history,
		PasswordHash:       d.PasswordHash,
		RefreshTokenHash:   d.RefreshTokenHash,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}
	if !d.LastLogin.IsZero() {
		usr.LastLogin = d.LastLogin.UTC()
	}
	return usr
}

func (d userDoc) summary() core.UserSummary {
	return core.UserSummary{ID: d.ID, Username: d.Username, FullName: d.FullName, Avatar: d.Avatar}
}

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) users() *mongo.Collection {
	return repo.db.col(colUsers)
}

func (repo userRepository) CheckUniqueness(ctx context.Context, username, email, excludedID string) error {
	check := func(field, value string, exists error) error {
		if value == "" {
			return nil
		}
		n, err := repo.users().CountDocuments(ctx, bson.M{field: value, "_id": bson.M{"$ne": excludedID}})
		if err != nil {
			return errors.Wrapf(err, "checking %s uniqueness", field)
		}
		if n > 0 {
			return exists
		}
		return nil
	}
	if err := check("username", username, user.ErrUsernameExists); err != nil {
		return err
	}
	return check("email", email, user.ErrEmailExists)
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = newID()
	usr.WatchHistory = []string{}
	if _, err := repo.users().InsertOne(ctx, boilUser(usr)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, core.NewConflictError("username or email already taken")
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var query bson.M
	switch {
	case filter.ID != "":
		query = bson.M{"_id": filter.ID}
	case filter.Username != "":
		query = bson.M{"username": filter.Username}
	case filter.Email != "":
		query = bson.M{"email": filter.Email}
	case filter.UsernameOrEmail != "":
		query = bson.M{"$or": bson.A{
			bson.M{"username": filter.UsernameOrEmail},
			bson.M{"email": filter.UsernameOrEmail},
		}}
	default:
		return user.User{}, user.ErrNotFound
	}

	var d userDoc
	if err := repo.users().FindOne(ctx, query).Decode(&d); err != nil {
		return user.User{}, trapNoDocsErr(err, user.ErrNotFound, "finding user")
	}
	return d.unboil(), nil
}

// UpdateUser saves every field but the watch history.
func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	d := boilUser(usr)
	set := bson.M{
		"username":              d.Username,
		"email":                 d.Email,
		"full_name":             d.FullName,
		"avatar":                d.Avatar,
		"avatar_public_id":      d.AvatarPublicID,
		"cover_image":           d.CoverImage,
		"cover_image_public_id": d.CoverImagePublicID,
		"password_hash":         d.PasswordHash,
		"updated_at":            d.UpdatedAt,
		"last_login":            d.LastLogin,
	}
	res, err := repo.users().UpdateByID(ctx, usr.ID, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, core.NewConflictError("username or email already taken")
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo userRepository) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	res, err := repo.users().UpdateByID(ctx, id, bson.M{"$set": bson.M{"refresh_token_hash": hash}})
	if err != nil {
		return errors.Wrap(err, "setting refresh token")
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo userRepository) SearchUsers(ctx context.Context, query string, page core.PageQuery) (core.Page[core.UserSummary], error) {
	pattern := containsFold(query)
	filter := bson.M{"$or": bson.A{bson.M{"username": pattern}, bson.M{"full_name": pattern}}}
	docs, total, err := findPage[userDoc](ctx, repo.users(), filter, bson.D{{Key: "username", Value: 1}}, page, false)
	if err != nil {
		return core.Page[core.UserSummary]{}, err
	}
	summaries := make([]core.UserSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, d.summary())
	}
	return core.NewPage(summaries, total, page), nil
}

// GetChannelProfile joins the subscriptions of the channel in a single aggregation.
func (repo userRepository) GetChannelProfile(ctx context.Context, username, viewerID string) (user.ChannelProfile, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$lookup", Value: bson.M{
			"from": colSubscriptions, "localField": "_id", "foreignField": "channel_id", "as": "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": colSubscriptions, "localField": "_id", "foreignField": "subscriber_id", "as": "subscribed_to",
		}}},
		{{Key: "$project", Value: bson.M{
			"username":                     1,
			"full_name":                    1,
			"email":                        1,
			"avatar":                       1,
			"cover_image":                  1,
			"created_at":                   1,
			"subscribers_count":            bson.M{"$size": "$subscribers"},
			"channels_subscribed_to_count": bson.M{"$size": "$subscribed_to"},
			"is_subscribed":                bson.M{"$in": bson.A{viewerID, "$subscribers.subscriber_id"}},
		}}},
	}
	cur, err := repo.users().Aggregate(ctx, pipeline)
	if err != nil {
		return user.ChannelProfile{}, errors.Wrap(err, "aggregating channel profile")
	}
	var docs []struct {
		ID                        string    `bson:"_id"`
		Username                  string    `bson:"username"`
		FullName                  string    `bson:"full_name"`
		Email                     string    `bson:"email"`
		Avatar                    string    `bson:"avatar"`
		CoverImage                string    `bson:"cover_image"`
		CreatedAt                 time.Time `bson:"created_at"`
		SubscribersCount          int64     `bson:"subscribers_count"`
		ChannelsSubscribedToCount int64     `bson:"channels_subscribed_to_count"`
		IsSubscribed              bool      `bson:"is_subscribed"`
	}
	if err = cur.All(ctx, &docs); err != nil {
		return user.ChannelProfile{}, errors.Wrap(err, "decoding channel profile")
	}
	if len(docs) == 0 {
		return user.ChannelProfile{}, user.ErrNotFound
	}
	d := docs[0]
	return user.ChannelProfile{
		ID:                        d.ID,
		Username:                  d.Username,
		FullName:                  d.FullName,
		Email:                     d.Email,
		Avatar:                    d.Avatar,
		CoverImage:                d.CoverImage,
		SubscribersCount:          d.SubscribersCount,
		ChannelsSubscribedToCount: d.ChannelsSubscribedToCount,
		IsSubscribed:              viewerID != "" && d.IsSubscribed,
		CreatedAt:                 d.CreatedAt.UTC(),
	}, nil
}

func (repo userRepository) AddToWatchHistory(ctx context.Context, userID, videoID string) error {
	res, err := repo.users().UpdateByID(ctx, userID, bson.M{"$pull": bson.M{"watch_history": videoID}})
	if err != nil {
		return errors.Wrap(err, "pulling from watch history")
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	push := bson.M{"$push": bson.M{"watch_history": bson.M{
		"$each":     bson.A{videoID},
		"$position": 0,
		"$slice":    user.MaxWatchHistory,
	}}}
	_, err = repo.users().UpdateByID(ctx, userID, push)
	return errors.Wrap(err, "pushing to watch history")
}

// GetWatchHistory joins the watched videos and their owners, then restores the history order,
// which $lookup does not keep. Deleted videos are skipped.
func (repo userRepository) GetWatchHistory(ctx context.Context, userID string) ([]user.WatchedVideo, error) {
	history := bson.M{"$ifNull": bson.A{"$watch_history", bson.A{}}}
	videoStages := bson.A{
		bson.M{"$match": bson.M{"$expr": bson.M{"$in": bson.A{"$_id", "$$history"}}}},
	}
	for _, stage := range ownerLookup("owner_id") {
		videoStages = append(videoStages, stage)
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": userID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":     colVideos,
			"let":      bson.M{"history": history},
			"pipeline": videoStages,
			"as":       "videos",
		}}},
		{{Key: "$addFields", Value: bson.M{"history": bson.M{"$filter": bson.M{
			"input": bson.M{"$map": bson.M{
				"input": history,
				"as":    "id",
				"in": bson.M{"$arrayElemAt": bson.A{
					bson.M{"$filter": bson.M{
						"input": "$videos",
						"as":    "v",
						"cond":  bson.M{"$eq": bson.A{"$$v._id", "$$id"}},
					}},
					0,
				}},
			}},
			"as":   "v",
			"cond": bson.M{"$ne": bson.A{"$$v", nil}},
		}}}}},
		{{Key: "$project", Value: bson.M{"history": 1}}},
	}
	docs, err := aggregateAll[watchHistoryDoc](ctx, repo.users(), pipeline)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, user.ErrNotFound
	}

	videos := make([]user.WatchedVideo, 0, len(docs[0].History))
	for _, d := range docs[0].History {
		videos = append(videos, d.populated())
	}
	return videos, nil
}

type watchHistoryDoc struct {
	History []videoDoc `bson:"history"`
}
