package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.uber.org/dig"

	echoapi "github.com/Prajjwal2051/Viewly-sub002/apps/api/echo"
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
	emailsvc "github.com/Prajjwal2051/Viewly-sub002/services/email"
	logsvc "github.com/Prajjwal2051/Viewly-sub002/services/logger"
	mediasvc "github.com/Prajjwal2051/Viewly-sub002/services/media"
	"github.com/Prajjwal2051/Viewly-sub002/storage"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// repositories spreads storage.Repositories over the container.
	repositories struct {
		dig.Out
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
	}

	serverParams struct {
		dig.In
		Conf            *core.Config
		Logger          core.Logger
		AccessLog       zerolog.Logger `name:"accessLog"`
		Validate        *validator.Validate
		Translator      ut.Translator
		Media           core.MediaStore
		UserSvc         *user.Service
		VideoSvc        *video.Service
		TweetSvc        *tweet.Service
		CommentSvc      *comment.Service
		LikeSvc         *like.Service
		SubscriptionSvc *subscription.Service
		PlaylistSvc     *playlist.Service
		NotificationSvc *notification.Service
		SearchSvc       *search.Service
		DashboardSvc    *dashboard.Service
	}
)

func newRollbarLogger(conf *core.Config, component string) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewZerolog(os.Stdout, conf, component), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newLogger(conf *core.Config) core.Logger {
	return newRollbarLogger(conf, "API")
}

func newDBLogger(conf *core.Config) core.Logger {
	return newRollbarLogger(conf, "DB")
}

func newAccessLog(conf *core.Config) zerolog.Logger {
	return logsvc.NewZerolog(os.Stdout, conf, "HTTP")
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *storage.Repositories {
	repos, err := storage.Open(context.Background(), conf, storage.Options{Setup: true})
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return repos
}

func provideRepositories(repos *storage.Repositories) repositories {
	return repositories{
		Users:         repos.Users,
		Videos:        repos.Videos,
		Tweets:        repos.Tweets,
		Comments:      repos.Comments,
		Likes:         repos.Likes,
		Subscriptions: repos.Subscriptions,
		Playlists:     repos.Playlists,
		Notifications: repos.Notifications,
		Searches:      repos.Searches,
		Dashboard:     repos.Dashboard,
	}
}

func newMediaStore(conf *core.Config, logger core.Logger) core.MediaStore {
	store, err := mediasvc.NewStore(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up media store: %v", err), err)
	}
	return store
}

func newMediaProber(conf *core.Config) core.MediaProber {
	return mediasvc.NewFFProbe(conf.Media.FFProbePath)
}

func newValidator() *validator.Validate {
	return validator.New()
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newVideoService(
	repo video.Repository,
	media core.MediaStore,
	prober core.MediaProber,
	userSvc *user.Service,
	subSvc *subscription.Service,
	notifSvc *notification.Service,
	logger core.Logger,
) *video.Service {
	return video.NewService(repo, media, prober, userSvc, subSvc, notifSvc, logger)
}

func newTweetService(repo tweet.Repository, userSvc *user.Service) *tweet.Service {
	return tweet.NewService(repo, userSvc)
}

func newPlaylistService(repo playlist.Repository, videoSvc *video.Service, userSvc *user.Service) *playlist.Service {
	return playlist.NewService(repo, videoSvc, userSvc)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:            p.Conf,
		Logger:          p.Logger,
		AccessLog:       p.AccessLog,
		Validate:        p.Validate,
		Translator:      p.Translator,
		Media:           p.Media,
		UserSvc:         p.UserSvc,
		VideoSvc:        p.VideoSvc,
		TweetSvc:        p.TweetSvc,
		CommentSvc:      p.CommentSvc,
		LikeSvc:         p.LikeSvc,
		SubscriptionSvc: p.SubscriptionSvc,
		PlaylistSvc:     p.PlaylistSvc,
		NotificationSvc: p.NotificationSvc,
		SearchSvc:       p.SearchSvc,
		DashboardSvc:    p.DashboardSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newAccessLog, dig.Name("accessLog")))
	must(c.Provide(newDB))
	must(c.Provide(provideRepositories))
	must(c.Provide(newMediaStore))
	must(c.Provide(newMediaProber))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(newValidator))
	must(c.Provide(newTranslator))

	must(c.Provide(user.NewService))
	must(c.Provide(notification.NewService))
	must(c.Provide(subscription.NewService))
	must(c.Provide(newVideoService))
	must(c.Provide(newTweetService))
	must(c.Provide(comment.NewService))
	must(c.Provide(like.NewService))
	must(c.Provide(newPlaylistService))
	must(c.Provide(search.NewService))
	must(c.Provide(dashboard.NewService))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
