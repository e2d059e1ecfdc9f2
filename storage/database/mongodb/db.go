// Package mongodb implements the repositories over MongoDB.
package mongodb

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

const (
	colUsers         = "users"
	colVideos        = "videos"
	colTweets        = "tweets"
	colComments      = "comments"
	colLikes         = "likes"
	colSubscriptions = "subscriptions"
	colPlaylists     = "playlists"
	colNotifications = "notifications"
	colSearches      = "search_history"
)

// caseInsensitive compares strings ignoring case (and accents).
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to conf.URI and pings the server, retrying with a backoff.
func Open(ctx context.Context, conf core.DatabaseConfig) (*DB, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(conf.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}

	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = client.Ping(pingCtx, nil)
		cancel()
		if err == nil {
			break
		}
		if attempt == 5 {
			_ = client.Disconnect(context.Background())
			return nil, errors.Wrap(err, "pinging mongodb")
		}
		select {
		case <-ctx.Done():
			_ = client.Disconnect(context.Background())
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
		}
	}
	return &DB{client: client, db: client.Database(conf.Name)}, nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// Drop drops the whole database; used by tests & the admin tool.
func (db *DB) Drop(ctx context.Context) error {
	return db.db.Drop(ctx)
}

func (db *DB) col(name string) *mongo.Collection {
	return db.db.Collection(name)
}

// EnsureIndexes creates the indexes the repositories rely on, including the uniqueness constraints.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	collections := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		colVideos: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "is_published", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colTweets: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colComments: {
			{Keys: bson.D{{Key: "video_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colLikes: {
			{
				Keys:    bson.D{{Key: "video_id", Value: 1}, {Key: "liked_by", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"video_id": bson.M{"$type": "string"}}),
			},
			{
				Keys:    bson.D{{Key: "comment_id", Value: 1}, {Key: "liked_by", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"comment_id": bson.M{"$type": "string"}}),
			},
			{
				Keys:    bson.D{{Key: "tweet_id", Value: 1}, {Key: "liked_by", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"tweet_id": bson.M{"$type": "string"}}),
			},
			{Keys: bson.D{{Key: "liked_by", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colSubscriptions: {
			{Keys: bson.D{{Key: "subscriber_id", Value: 1}, {Key: "channel_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "channel_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colPlaylists: {
			{
				Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
			},
		},
		colNotifications: {
			{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colSearches: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "query", Value: 1}}, Options: unique},
		},
	}
	for name, indexes := range collections {
		if _, err := db.col(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return errors.Wrapf(err, "creating %s indexes", name)
		}
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

// trapNoDocsErr maps the "no documents" error to notFound.
func trapNoDocsErr(err error, notFound error, msg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// containsFold matches documents whose field contains s, ignoring case.
func containsFold(s string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// findAll decodes every document matching filter.
func findAll[D any](ctx context.Context, col *mongo.Collection, filter interface{}, opts ...options.Lister[options.FindOptions]) ([]D, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "finding %s", col.Name())
	}
	docs := make([]D, 0)
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", col.Name())
	}
	return docs, nil
}

// findPage matches filter, then a $facet returns the requested page sorted by sort along with the total count.
// The stages in post only run on the page documents.
func findPage[D any](
	ctx context.Context,
	col *mongo.Collection,
	filter interface{},
	sort bson.D,
	page core.PageQuery,
	collate bool,
	post ...bson.D,
) ([]D, int64, error) {
	page.Clean()
	data := bson.A{
		bson.D{{Key: "$sort", Value: sort}},
		bson.D{{Key: "$skip", Value: int64(page.Skip())}},
		bson.D{{Key: "$limit", Value: int64(page.Limit)}},
	}
	for _, stage := range post {
		data = append(data, stage)
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$facet", Value: bson.M{
			"total": bson.A{bson.D{{Key: "$count", Value: "n"}}},
			"docs":  data,
		}}},
	}
	opts := options.Aggregate()
	if collate {
		opts.SetCollation(caseInsensitive)
	}
	cur, err := col.Aggregate(ctx, pipeline, opts)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "aggregating %s page", col.Name())
	}
	var res []struct {
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
		Docs []D `bson:"docs"`
	}
	if err = cur.All(ctx, &res); err != nil {
		return nil, 0, errors.Wrapf(err, "decoding %s page", col.Name())
	}
	docs := make([]D, 0)
	var total int64
	if len(res) > 0 {
		if res[0].Docs != nil {
			docs = res[0].Docs
		}
		if len(res[0].Total) > 0 {
			total = res[0].Total[0].N
		}
	}
	return docs, total, nil
}

// ownerLookup joins the summary of the user referenced by localField as "owner".
func ownerLookup(localField string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from": colUsers,
			"let":  bson.M{"ownerId": "$" + localField},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$ownerId"}}}},
				bson.M{"$project": bson.M{"username": 1, "full_name": 1, "avatar": 1}},
			},
			"as": "owner",
		}}},
		{{Key: "$addFields", Value: bson.M{"owner": bson.M{"$arrayElemAt": bson.A{"$owner", 0}}}}},
	}
}

// aggregateAll runs pipeline and decodes every resulting document.
func aggregateAll[D any](ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline) ([]D, error) {
	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrapf(err, "aggregating %s", col.Name())
	}
	docs := make([]D, 0)
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", col.Name())
	}
	return docs, nil
}

// deleteOne deletes the document with id, returning notFound if there is none.
func deleteOne(ctx context.Context, col *mongo.Collection, id string, notFound error) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", col.Name())
	}
	if res.DeletedCount == 0 {
		return notFound
	}
	return nil
}

// summaries loads the user summaries of ids, keyed by ID.
func (db *DB) summaries(ctx context.Context, ids ...string) (map[string]*core.UserSummary, error) {
	res := make(map[string]*core.UserSummary, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	opts := options.Find().SetProjection(bson.M{"username": 1, "full_name": 1, "avatar": 1})
	docs, err := findAll[userDoc](ctx, db.col(colUsers), bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		s := d.summary()
		res[d.ID] = &s
	}
	return res, nil
}

// likeStats counts the likes on each of ids, targeted through field, and reports those liked by viewerID.
func (db *DB) likeStats(ctx context.Context, field string, ids []string, viewerID string) (map[string]int64, map[string]bool, error) {
	counts, liked := make(map[string]int64, len(ids)), make(map[string]bool)
	if len(ids) == 0 {
		return counts, liked, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{field: bson.M{"$in": ids}}}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "n": bson.M{"$sum": 1}}}},
	}
	cur, err := db.col(colLikes).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, nil, errors.Wrap(err, "counting likes")
	}
	var groups []struct {
		ID string `bson:"_id"`
		N  int64  `bson:"n"`
	}
	if err = cur.All(ctx, &groups); err != nil {
		return nil, nil, errors.Wrap(err, "decoding like counts")
	}
	for _, g := range groups {
		counts[g.ID] = g.N
	}

	if viewerID != "" {
		mine, err := findAll[likeDoc](ctx, db.col(colLikes), bson.M{field: bson.M{"$in": ids}, "liked_by": viewerID})
		if err != nil {
			return nil, nil, err
		}
		for _, l := range mine {
			liked[l.target(field)] = true
		}
	}
	return counts, liked, nil
}

// pluck collects the key of each doc.
func pluck[D any](docs []D, key func(D) string) []string {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, key(d))
	}
	return ids
}
