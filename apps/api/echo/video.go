package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

type videoApi struct {
	svc      *video.Service
	uploads  uploader
	validate *validator.Validate
}

func registerVideoAPI(g *echo.Group, gd guards, api videoApi) {
	vg := g.Group("/videos")

	vg.GET("", api.query, gd.optional)
	vg.GET("/:videoId", api.watch, gd.optional)

	vg.POST("", api.publish, gd.auth, gd.upload)
	vg.PATCH("/:videoId", api.update, gd.auth, gd.upload)
	vg.DELETE("/:videoId", api.destroy, gd.auth)
	vg.PATCH("/toggle/publish/:videoId", api.togglePublish, gd.auth)
}

func (api *videoApi) query(ctx echo.Context) error {
	var filter video.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	videos, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings, bindPage(ctx), viewerID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying videos")
	}
	return respond(ctx, http.StatusOK, videos, "Videos fetched successfully")
}

func (api *videoApi) publish(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	var nv video.NewVideo
	if err = ctx.Bind(&nv); err != nil {
		return errors.Wrap(err, "binding to NewVideo")
	}
	if err = nv.Validate(api.validate); err != nil {
		return err
	}

	videoFile, err := api.uploads.spool(ctx, "videoFile", core.ResourceVideo)
	defer removeUploads(videoFile)
	if err != nil {
		return err
	}
	thumbnail, err := api.uploads.spool(ctx, "thumbnail", core.ResourceImage)
	defer removeUploads(thumbnail)
	if err != nil {
		return err
	}

	v, err := api.svc.Publish(ctx.Request().Context(), usr.ID, nv, videoFile, thumbnail)
	if err != nil {
		return errors.Wrap(err, "publishing video")
	}
	return respond(ctx, http.StatusCreated, v, "Video published successfully")
}

func (api *videoApi) watch(ctx echo.Context) error {
	detail, err := api.svc.Watch(ctx.Request().Context(), ctx.Param("videoId"), viewerID(ctx))
	if err != nil {
		return errors.Wrap(err, "watching video")
	}
	return respond(ctx, http.StatusOK, detail, "Video fetched successfully")
}

func (api *videoApi) update(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	var uv video.UpdateVideo
	if err = ctx.Bind(&uv); err != nil {
		return errors.Wrap(err, "binding to UpdateVideo")
	}
	if err = uv.Validate(api.validate); err != nil {
		return err
	}

	thumbnail, err := api.uploads.spool(ctx, "thumbnail", core.ResourceImage)
	defer removeUploads(thumbnail)
	if err != nil {
		return err
	}

	v, err := api.svc.Update(ctx.Request().Context(), ctx.Param("videoId"), usr.ID, uv, thumbnail)
	if err != nil {
		return errors.Wrap(err, "updating video")
	}
	return respond(ctx, http.StatusOK, v, "Video updated successfully")
}

func (api *videoApi) destroy(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("videoId"), usr.ID); err != nil {
		return errors.Wrap(err, "deleting video")
	}
	return respond(ctx, http.StatusOK, echo.Map{}, "Video deleted successfully")
}

func (api *videoApi) togglePublish(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	v, err := api.svc.TogglePublish(ctx.Request().Context(), ctx.Param("videoId"), usr.ID)
	if err != nil {
		return errors.Wrap(err, "toggling publish status")
	}
	return respond(ctx, http.StatusOK, v, "Publish status toggled successfully")
}
