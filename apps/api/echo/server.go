package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

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
	mediasvc "github.com/Prajjwal2051/Viewly-sub002/services/media"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		AccessLog  zerolog.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Media      core.MediaStore

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

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		tokens   tokenIssuer
		metrics  *metrics
		errors   chan error
		shutdown chan os.Signal
	}

	// guards are the route level middlewares.
	guards struct {
		auth     echo.MiddlewareFunc // valid access token required
		optional echo.MiddlewareFunc // loads the user when a valid access token is sent
		limit    echo.MiddlewareFunc // stricter rate limit of the auth routes
		upload   echo.MiddlewareFunc // bounds the request body to the upload size limit
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		tokens:   newTokenIssuer(deps.Conf),
		metrics:  newMetrics(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.Logger.SetLevel(log.ERROR)
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(s.requestLogger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.Server.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
		},
	}))
	s.app.Use(middleware.Secure())
	s.app.Use(s.metrics.middleware())
	s.app.Use(rateLimit(conf.RateLimit.Requests, conf.RateLimit.Window))

	s.app.GET("/healthcheck", s.healthcheck)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	if store, ok := s.deps.Media.(*mediasvc.LocalStore); ok {
		s.app.Static("/media", store.Dir())
	}

	g := guards{
		auth:     s.authenticate(true),
		optional: s.authenticate(false),
		limit:    rateLimit(conf.RateLimit.AuthRequests, conf.RateLimit.AuthWindow),
		upload:   bodyLimit(conf.Media.MaxUploadSize),
	}
	v1 := s.app.Group("/api/v1")

	registerUserAPI(v1, g, userApi{
		svc:      s.deps.UserSvc,
		tokens:   s.tokens,
		uploads:  s.uploader(),
		validate: s.deps.Validate,
		secure:   conf.Auth.CookieSecure,
	})
	registerVideoAPI(v1, g, videoApi{svc: s.deps.VideoSvc, uploads: s.uploader(), validate: s.deps.Validate})
	registerTweetAPI(v1, g, tweetApi{svc: s.deps.TweetSvc, validate: s.deps.Validate})
	registerCommentAPI(v1, g, commentApi{svc: s.deps.CommentSvc, validate: s.deps.Validate})
	registerLikeAPI(v1, g, likeApi{svc: s.deps.LikeSvc})
	registerSubscriptionAPI(v1, g, subscriptionApi{svc: s.deps.SubscriptionSvc})
	registerPlaylistAPI(v1, g, playlistApi{svc: s.deps.PlaylistSvc, validate: s.deps.Validate})
	registerDashboardAPI(v1, g, dashboardApi{svc: s.deps.DashboardSvc})
	registerNotificationAPI(v1, g, notificationApi{svc: s.deps.NotificationSvc})
	registerSearchAPI(v1, g, searchApi{svc: s.deps.SearchSvc})
}

// Start listens on the configured address; it blocks until the server is shut down.
// Listening errors are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) healthcheck(ctx echo.Context) error {
	return respond(ctx, http.StatusOK, echo.Map{"status": "ok", "build": s.deps.Conf.Build}, "Service is healthy")
}
