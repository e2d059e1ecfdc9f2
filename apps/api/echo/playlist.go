package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core/playlist"
)

type playlistApi struct {
	svc      *playlist.Service
	validate *validator.Validate
}

func registerPlaylistAPI(g *echo.Group, gd guards, api playlistApi) {
	pg := g.Group("/playlist")

	pg.GET("/user/:userId", api.userPlaylists)
	pg.GET("/:playlistId", api.retrieve)

	pg.POST("", api.create, gd.auth)
	pg.PATCH("/:playlistId", api.update, gd.auth)
	pg.DELETE("/:playlistId", api.destroy, gd.auth)
	pg.PATCH("/add/:videoId/:playlistId", api.addVideo, gd.auth)
	pg.PATCH("/remove/:videoId/:playlistId", api.removeVideo, gd.auth)
}

func (api *playlistApi) create(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	var data playlist.NewPlaylist
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPlaylist")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	p, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating playlist")
	}
	return respond(ctx, http.StatusCreated, p, "Playlist created successfully")
}

func (api *playlistApi) userPlaylists(ctx echo.Context) error {
	playlists, err := api.svc.UserPlaylists(ctx.Request().Context(), ctx.Param("userId"))
	if err != nil {
		return errors.Wrap(err, "querying user playlists")
	}
	return respond(ctx, http.StatusOK, playlists, "User playlists fetched successfully")
}

func (api *playlistApi) retrieve(ctx echo.Context) error {
	detail, err := api.svc.GetDetail(ctx.Request().Context(), ctx.Param("playlistId"))
	if err != nil {
		return errors.Wrap(err, "getting playlist")
	}
	return respond(ctx, http.StatusOK, detail, "Playlist fetched successfully")
}

func (api *playlistApi) update(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	var data playlist.UpdatePlaylist
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePlaylist")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	p, err := api.svc.Update(ctx.Request().Context(), ctx.Param("playlistId"), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating playlist")
	}
	return respond(ctx, http.StatusOK, p, "Playlist updated successfully")
}

func (api *playlistApi) destroy(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("playlistId"), usr.ID); err != nil {
		return errors.Wrap(err, "deleting playlist")
	}
	return respond(ctx, http.StatusOK, echo.Map{}, "Playlist deleted successfully")
}

func (api *playlistApi) addVideo(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.AddVideo(ctx.Request().Context(), ctx.Param("playlistId"), ctx.Param("videoId"), usr.ID)
	if err != nil {
		return errors.Wrap(err, "adding video to playlist")
	}
	return respond(ctx, http.StatusOK, p, "Video added to playlist successfully")
}

func (api *playlistApi) removeVideo(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.RemoveVideo(ctx.Request().Context(), ctx.Param("playlistId"), ctx.Param("videoId"), usr.ID)
	if err != nil {
		return errors.Wrap(err, "removing video from playlist")
	}
	return respond(ctx, http.StatusOK, p, "Video removed from playlist successfully")
}
