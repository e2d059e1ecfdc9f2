package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
)

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, gd guards, api notificationApi) {
	ng := g.Group("/notifications", gd.auth)

	ng.GET("", api.query)
	ng.GET("/unread-count", api.unreadCount)
	ng.PATCH("/read-all", api.markAllRead)
	ng.PATCH("/:notificationId/read", api.markRead)
	ng.DELETE("/:notificationId", api.destroy)
}

func (api *notificationApi) query(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	var filter notification.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	page, err := api.svc.List(ctx.Request().Context(), usr.ID, filter, bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return respond(ctx, http.StatusOK, page, "Notifications fetched successfully")
}

func (api *notificationApi) unreadCount(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	n, err := api.svc.UnreadCount(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "counting unread notifications")
	}
	return respond(ctx, http.StatusOK, echo.Map{"unreadCount": n}, "Unread count fetched successfully")
}

func (api *notificationApi) markAllRead(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	n, err := api.svc.MarkAllRead(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "marking notifications as read")
	}
	return respond(ctx, http.StatusOK, echo.Map{"modifiedCount": n}, "All notifications marked as read")
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	notif, err := api.svc.MarkRead(ctx.Request().Context(), ctx.Param("notificationId"), usr.ID)
	if err != nil {
		return errors.Wrap(err, "marking notification as read")
	}
	return respond(ctx, http.StatusOK, notif, "Notification marked as read")
}

func (api *notificationApi) destroy(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("notificationId"), usr.ID); err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return respond(ctx, http.StatusOK, echo.Map{}, "Notification deleted successfully")
}
