package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core/subscription"
)

type subscriptionApi struct {
	svc *subscription.Service
}

func registerSubscriptionAPI(g *echo.Group, gd guards, api subscriptionApi) {
	sg := g.Group("/subscriptions")

	sg.POST("/c/:channelId", api.toggle, gd.auth)
	sg.GET("/c/:channelId", api.subscribers)
	sg.GET("/u/:subscriberId", api.subscribedChannels)
}

func (api *subscriptionApi) toggle(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.Toggle(ctx.Request().Context(), ctx.Param("channelId"), usr.ID)
	if err != nil {
		return errors.Wrap(err, "toggling subscription")
	}
	msg := "Unsubscribed successfully"
	if res.IsSubscribed {
		msg = "Subscribed successfully"
	}
	return respond(ctx, http.StatusOK, res, msg)
}

func (api *subscriptionApi) subscribers(ctx echo.Context) error {
	page, err := api.svc.Subscribers(ctx.Request().Context(), ctx.Param("channelId"), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying subscribers")
	}
	return respond(ctx, http.StatusOK, page, "Subscribers fetched successfully")
}

func (api *subscriptionApi) subscribedChannels(ctx echo.Context) error {
	page, err := api.svc.SubscribedChannels(ctx.Request().Context(), ctx.Param("subscriberId"), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying subscribed channels")
	}
	return respond(ctx, http.StatusOK, page, "Subscribed channels fetched successfully")
}
