package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
)

type commentApi struct {
	svc      *comment.Service
	validate *validator.Validate
}

func registerCommentAPI(g *echo.Group, gd guards, api commentApi) {
	cg := g.Group("/comments")

	cg.GET("/:videoId", api.videoComments, gd.optional)

	cg.POST("/:videoId", api.add, gd.auth)
	cg.PATCH("/c/:commentId", api.update, gd.auth)
	cg.DELETE("/c/:commentId", api.destroy, gd.auth)
}

func (api *commentApi) videoComments(ctx echo.Context) error {
	comments, err := api.svc.VideoComments(ctx.Request().Context(), ctx.Param("videoId"), viewerID(ctx), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying video comments")
	}
	return respond(ctx, http.StatusOK, comments, "Comments fetched successfully")
}

func (api *commentApi) bind(ctx echo.Context) (comment.NewComment, error) {
	var data comment.NewComment
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to NewComment")
	}
	return data, data.Validate(api.validate)
}

func (api *commentApi) add(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	data, err := api.bind(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.Add(ctx.Request().Context(), ctx.Param("videoId"), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "adding comment")
	}
	return respond(ctx, http.StatusCreated, c, "Comment added successfully")
}

func (api *commentApi) update(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	data, err := api.bind(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.Update(ctx.Request().Context(), ctx.Param("commentId"), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating comment")
	}
	return respond(ctx, http.StatusOK, c, "Comment updated successfully")
}

func (api *commentApi) destroy(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("commentId"), usr.ID); err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	return respond(ctx, http.StatusOK, echo.Map{}, "Comment deleted successfully")
}
