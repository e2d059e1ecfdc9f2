package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core/search"
)

type searchApi struct {
	svc *search.Service
}

func registerSearchAPI(g *echo.Group, gd guards, api searchApi) {
	sg := g.Group("/search")

	sg.GET("", api.search, gd.optional)

	hg := sg.Group("/history", gd.auth)
	hg.GET("", api.history)
	hg.DELETE("", api.clearHistory)
	hg.DELETE("/:historyId", api.deleteHistoryEntry)
}

func (api *searchApi) search(ctx echo.Context) error {
	var q search.Query
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to Query")
	}
	res, err := api.svc.Search(ctx.Request().Context(), q, viewerID(ctx), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "searching")
	}
	return respond(ctx, http.StatusOK, res, "Search results fetched successfully")
}

func (api *searchApi) history(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	history, err := api.svc.History(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting search history")
	}
	return respond(ctx, http.StatusOK, history, "Search history fetched successfully")
}

func (api *searchApi) clearHistory(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.ClearHistory(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "clearing search history")
	}
	return respond(ctx, http.StatusOK, echo.Map{}, "Search history cleared successfully")
}

func (api *searchApi) deleteHistoryEntry(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteHistoryEntry(ctx.Request().Context(), ctx.Param("historyId"), usr.ID); err != nil {
		return errors.Wrap(err, "deleting search history entry")
	}
	return respond(ctx, http.StatusOK, echo.Map{}, "Search history entry deleted successfully")
}
