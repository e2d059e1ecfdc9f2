package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core/dashboard"
)

type dashboardApi struct {
	svc *dashboard.Service
}

func registerDashboardAPI(g *echo.Group, gd guards, api dashboardApi) {
	dg := g.Group("/dashboard", gd.auth)

	dg.GET("/stats", api.stats)
	dg.GET("/videos", api.videos)
}

func (api *dashboardApi) stats(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	stats, err := api.svc.Stats(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting channel stats")
	}
	return respond(ctx, http.StatusOK, stats, "Channel stats fetched successfully")
}

func (api *dashboardApi) videos(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	videos, err := api.svc.Videos(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting channel videos")
	}
	return respond(ctx, http.StatusOK, videos, "Channel videos fetched successfully")
}
