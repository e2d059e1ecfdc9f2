package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
)

type commentDoc struct {
	ID        string    `bson:"_id"`
	VideoID   string    `bson:"video_id"`
	OwnerID   string    `bson:"owner_id"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type commentRepository struct {
	db *DB
}

var _ comment.Repository = (*commentRepository)(nil) // interface compliance check

func NewCommentRepository(db *DB) *commentRepository {
	return &commentRepository{db: db}
}

func (repo commentRepository) comments() *mongo.Collection {
	return repo.db.col(colComments)
}

func (repo commentRepository) populate(ctx context.Context, docs []commentDoc, viewerID string) ([]comment.Comment, error) {
	owners, err := repo.db.summaries(ctx, pluck(docs, func(d commentDoc) string { return d.OwnerID })...)
	if err != nil {
		return nil, err
	}
	counts, liked, err := repo.db.likeStats(ctx, "comment_id", pluck(docs, func(d commentDoc) string { return d.ID }), viewerID)
	if err != nil {
		return nil, err
	}
	comments := make([]comment.Comment, 0, len(docs))
	for _, d := range docs {
		comments = append(comments, comment.Comment{
			ID:         d.ID,
			VideoID:    d.VideoID,
			OwnerID:    d.OwnerID,
			Owner:      owners[d.OwnerID],
			Content:    d.Content,
			LikesCount: counts[d.ID],
			IsLiked:    liked[d.ID],
			CreatedAt:  d.CreatedAt.UTC(),
			UpdatedAt:  d.UpdatedAt.UTC(),
		})
	}
	return comments, nil
}

func (repo commentRepository) getComment(ctx context.Context, id, viewerID string) (comment.Comment, error) {
	var d commentDoc
	if err := repo.comments().FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return comment.Comment{}, trapNoDocsErr(err, comment.ErrNotFound, "finding comment")
	}
	comments, err := repo.populate(ctx, []commentDoc{d}, viewerID)
	if err != nil {
		return comment.Comment{}, err
	}
	return comments[0], nil
}

func (repo commentRepository) CreateComment(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	d := commentDoc{
		ID:        newID(),
		VideoID:   c.VideoID,
		OwnerID:   c.OwnerID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
	if _, err := repo.comments().InsertOne(ctx, d); err != nil {
		return comment.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return repo.getComment(ctx, d.ID, "")
}

func (repo commentRepository) GetComment(ctx context.Context, id string) (comment.Comment, error) {
	return repo.getComment(ctx, id, "")
}

func (repo commentRepository) QueryVideoComments(ctx context.Context, videoID, viewerID string, page core.PageQuery) (core.Page[comment.Comment], error) {
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	docs, total, err := findPage[commentDoc](ctx, repo.comments(), bson.M{"video_id": videoID}, sort, page, false)
	if err != nil {
		return core.Page[comment.Comment]{}, err
	}
	comments, err := repo.populate(ctx, docs, viewerID)
	if err != nil {
		return core.Page[comment.Comment]{}, err
	}
	return core.NewPage(comments, total, page), nil
}

func (repo commentRepository) UpdateComment(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	set := bson.M{"content": c.Content, "updated_at": c.UpdatedAt.UTC()}
	res, err := repo.comments().UpdateByID(ctx, c.ID, bson.M{"$set": set})
	if err != nil {
		return comment.Comment{}, errors.Wrap(err, "updating comment")
	}
	if res.MatchedCount == 0 {
		return comment.Comment{}, comment.ErrNotFound
	}
	return repo.getComment(ctx, c.ID, c.OwnerID)
}

func (repo commentRepository) DeleteComment(ctx context.Context, id string) error {
	if err := deleteOne(ctx, repo.comments(), id, comment.ErrNotFound); err != nil {
		return err
	}
	_, err := repo.db.col(colLikes).DeleteMany(ctx, bson.M{"comment_id": id})
	return errors.Wrap(err, "deleting comment likes")
}
