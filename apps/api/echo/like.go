package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core/like"
)

type likeApi struct {
	svc *like.Service
}

func registerLikeAPI(g *echo.Group, gd guards, api likeApi) {
	lg := g.Group("/likes", gd.auth)

	lg.POST("/toggle/v/:videoId", api.toggle("videoId", api.svc.ToggleVideoLike))
	lg.POST("/toggle/c/:commentId", api.toggle("commentId", api.svc.ToggleCommentLike))
	lg.POST("/toggle/t/:tweetId", api.toggle("tweetId", api.svc.ToggleTweetLike))
	lg.GET("/videos", api.likedVideos)
}

type toggleFunc func(ctx context.Context, targetID, userID string) (like.ToggleResult, error)

func (api *likeApi) toggle(param string, fn toggleFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := mustContextUser(ctx)
		if err != nil {
			return err
		}
		res, err := fn(ctx.Request().Context(), ctx.Param(param), usr.ID)
		if err != nil {
			return errors.Wrap(err, "toggling like")
		}
		msg := "Like removed successfully"
		if res.IsLiked {
			msg = "Liked successfully"
		}
		return respond(ctx, http.StatusOK, res, msg)
	}
}

func (api *likeApi) likedVideos(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	videos, err := api.svc.LikedVideos(ctx.Request().Context(), usr.ID, bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying liked videos")
	}
	return respond(ctx, http.StatusOK, videos, "Liked videos fetched successfully")
}
