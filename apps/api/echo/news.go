package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core/news"
)

type newsApi struct {
	svc      *news.Service
	validate *validator.Validate
}

func registerNewsAPI(g *echo.Group, jwt, me echo.MiddlewareFunc, deps ServerDeps) {
	api := newsApi{svc: deps.NewsSvc, validate: deps.Validate}

	ng := g.Group("/news", jwt, me)
	ng.GET("", api.query)
	ng.POST("", api.create, staffMiddleware())

	dg := ng.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware(), authorOrAdminMiddleware)
	dg.DELETE("", api.destroy, staffMiddleware(), authorOrAdminMiddleware)
}

func (api *newsApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		n, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding news by ID")
		}
		ctx.Set(contextObjectKey, n)
		return next(ctx)
	}
}

// authorOrAdminMiddleware restricts changes of news to their author and to admins.
func authorOrAdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctxUsr, err := getContextUser(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}
		n, ok := ctx.Get(contextObjectKey).(news.News)
		if !ok {
			return errors.Wrap(errObjNotFoundInCtx, "retrieving news from context")
		}
		if ctxUsr.IsAdmin() || n.AuthorID == ctxUsr.ID {
			return next(ctx)
		}
		return errHttpForbidden
	}
}

func (api *newsApi) create(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data news.NewNews
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNews")
	}
	if err = data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	n, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating news")
	}
	return ctx.JSON(http.StatusCreated, n)
}

type newsQuery struct {
	CenterID string `query:"center"`
	AuthorID string `query:"author"`
	Search   string `query:"search"`
}

func (api *newsApi) query(ctx echo.Context) error {
	var q newsQuery
	if err := ctx.Bind(&q); err != nil {
		return ctx.JSON(http.StatusOK, []news.News{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	items, err := api.svc.Query(
		ctx.Request().Context(),
		&news.QueryFilter{CenterID: q.CenterID, AuthorID: q.AuthorID, Search: q.Search},
		ordering.Orderings,
	)
	if err != nil {
		return errors.Wrap(err, "querying news")
	}
	if items == nil {
		items = []news.News{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *newsApi) retrieve(ctx echo.Context) error {
	n, ok := ctx.Get(contextObjectKey).(news.News)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving news from context")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *newsApi) update(ctx echo.Context) error {
	n, ok := ctx.Get(contextObjectKey).(news.News)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving news from context")
	}

	var data news.UpdateNews
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNews")
	}
	if err := data.Validate(ctx.Request().Context(), n, api.validate, api.svc); err != nil {
		return err
	}

	n, err := api.svc.Update(ctx.Request().Context(), n, data)
	if err != nil {
		return errors.Wrap(err, "updating news")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *newsApi) destroy(ctx echo.Context) error {
	n, ok := ctx.Get(contextObjectKey).(news.News)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving news from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), n.ID); err != nil {
		return errors.Wrap(err, "deleting news")
	}
	return ctx.NoContent(http.StatusNoContent)
}
