// Package storage opens the configured database engine and builds its repositories.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
	"github.com/Prajjwal2051/Viewly-sub002/core/dashboard"
	"github.com/Prajjwal2051/Viewly-sub002/core/like"
	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
	"github.com/Prajjwal2051/Viewly-sub002/core/playlist"
	"github.com/Prajjwal2051/Viewly-sub002/core/search"
	"github.com/Prajjwal2051/Viewly-sub002/core/subscription"
	"github.com/Prajjwal2051/Viewly-sub002/core/tweet"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
	"github.com/Prajjwal2051/Viewly-sub002/storage/database"
	"github.com/Prajjwal2051/Viewly-sub002/storage/database/inmem"
	"github.com/Prajjwal2051/Viewly-sub002/storage/database/mongodb"
	sqlxrepos "github.com/Prajjwal2051/Viewly-sub002/storage/database/sqlx"
)

const (
	EngineMongo    = "mongodb"
	EnginePostgres = "postgres"
	EngineMemory   = "memory"
)

var errUnknownEngine = errors.New("unknown database engine")

// Repositories holds one repository per domain, all backed by the same engine.
type Repositories struct {
	Users         user.Repository
	Videos        video.Repository
	Tweets        tweet.Repository
	Comments      comment.Repository
	Likes         like.Repository
	Subscriptions subscription.Repository
	Playlists     playlist.Repository
	Notifications notification.Repository
	Searches      search.Repository
	Dashboard     dashboard.Repository

	close func(ctx context.Context) error
}

// Close releases the database connection.
func (r *Repositories) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	return r.close(ctx)
}

// Options tune Open.
type Options struct {
	// Setup creates the database and applies the migrations (postgres), or syncs the indexes (mongodb).
	Setup bool
}

// Open connects to the engine named by conf.Database.Engine.
func Open(ctx context.Context, conf *core.Config, opts Options) (*Repositories, error) {
	switch conf.Database.Engine {
	case EngineMongo:
		return openMongo(ctx, conf, opts)
	case EnginePostgres:
		return openPostgres(ctx, conf, opts)
	case EngineMemory:
		return NewMemory(inmem.Open()), nil
	default:
		return nil, errors.Wrap(errUnknownEngine, conf.Database.Engine)
	}
}

func openMongo(ctx context.Context, conf *core.Config, opts Options) (*Repositories, error) {
	db, err := mongodb.Open(ctx, conf.Database)
	if err != nil {
		return nil, err
	}
	if opts.Setup {
		if err = db.EnsureIndexes(ctx); err != nil {
			_ = db.Close(ctx)
			return nil, errors.Wrap(err, "syncing indexes")
		}
	}
	return NewMongo(db), nil
}

func openPostgres(ctx context.Context, conf *core.Config, opts Options) (*Repositories, error) {
	if opts.Setup {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if opts.Setup {
		if err = database.Migrate(ctx, db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return NewPostgres(db), nil
}

// NewMongo builds the repositories over a mongodb database; Close disconnects the client.
func NewMongo(db *mongodb.DB) *Repositories {
	return &Repositories{
		Users:         mongodb.NewUserRepository(db),
		Videos:        mongodb.NewVideoRepository(db),
		Tweets:        mongodb.NewTweetRepository(db),
		Comments:      mongodb.NewCommentRepository(db),
		Likes:         mongodb.NewLikeRepository(db),
		Subscriptions: mongodb.NewSubscriptionRepository(db),
		Playlists:     mongodb.NewPlaylistRepository(db),
		Notifications: mongodb.NewNotificationRepository(db),
		Searches:      mongodb.NewSearchRepository(db),
		Dashboard:     mongodb.NewDashboardRepository(db),
		close:         db.Close,
	}
}

// NewPostgres builds the repositories over a postgres connection pool.
func NewPostgres(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users:         sqlxrepos.NewUserRepository(db),
		Videos:        sqlxrepos.NewVideoRepository(db),
		Tweets:        sqlxrepos.NewTweetRepository(db),
		Comments:      sqlxrepos.NewCommentRepository(db),
		Likes:         sqlxrepos.NewLikeRepository(db),
		Subscriptions: sqlxrepos.NewSubscriptionRepository(db),
		Playlists:     sqlxrepos.NewPlaylistRepository(db),
		Notifications: sqlxrepos.NewNotificationRepository(db),
		Searches:      sqlxrepos.NewSearchRepository(db),
		Dashboard:     sqlxrepos.NewDashboardRepository(db),
		close:         func(context.Context) error { return db.Close() },
	}
}

// NewMemory builds the repositories over an in-memory database.
func NewMemory(db *inmem.DB) *Repositories {
	return &Repositories{
		Users:         inmem.NewUserRepository(db),
		Videos:        inmem.NewVideoRepository(db),
		Tweets:        inmem.NewTweetRepository(db),
		Comments:      inmem.NewCommentRepository(db),
		Likes:         inmem.NewLikeRepository(db),
		Subscriptions: inmem.NewSubscriptionRepository(db),
		Playlists:     inmem.NewPlaylistRepository(db),
		Notifications: inmem.NewNotificationRepository(db),
		Searches:      inmem.NewSearchRepository(db),
		Dashboard:     inmem.NewDashboardRepository(db),
	}
}
