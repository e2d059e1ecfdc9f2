package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core/tweet"
)

type tweetApi struct {
	svc      *tweet.Service
	validate *validator.Validate
}

func registerTweetAPI(g *echo.Group, gd guards, api tweetApi) {
	tg := g.Group("/tweets")

	tg.GET("", api.feed, gd.optional)
	tg.GET("/user/:userId", api.userTweets, gd.optional)

	tg.POST("", api.create, gd.auth)
	tg.PATCH("/:tweetId", api.update, gd.auth)
	tg.DELETE("/:tweetId", api.destroy, gd.auth)
}

func (api *tweetApi) feed(ctx echo.Context) error {
	tweets, err := api.svc.Feed(ctx.Request().Context(), viewerID(ctx), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying tweets")
	}
	return respond(ctx, http.StatusOK, tweets, "Tweets fetched successfully")
}

func (api *tweetApi) userTweets(ctx echo.Context) error {
	tweets, err := api.svc.UserTweets(ctx.Request().Context(), ctx.Param("userId"), viewerID(ctx), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying user tweets")
	}
	return respond(ctx, http.StatusOK, tweets, "User tweets fetched successfully")
}

func (api *tweetApi) bind(ctx echo.Context) (tweet.NewTweet, error) {
	var data tweet.NewTweet
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to NewTweet")
	}
	return data, data.Validate(api.validate)
}

func (api *tweetApi) create(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	data, err := api.bind(ctx)
	if err != nil {
		return err
	}
	t, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating tweet")
	}
	return respond(ctx, http.StatusCreated, t, "Tweet created successfully")
}

func (api *tweetApi) update(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	data, err := api.bind(ctx)
	if err != nil {
		return err
	}
	t, err := api.svc.Update(ctx.Request().Context(), ctx.Param("tweetId"), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating tweet")
	}
	return respond(ctx, http.StatusOK, t, "Tweet updated successfully")
}

func (api *tweetApi) destroy(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("tweetId"), usr.ID); err != nil {
		return errors.Wrap(err, "deleting tweet")
	}
	return respond(ctx, http.StatusOK, echo.Map{}, "Tweet deleted successfully")
}
