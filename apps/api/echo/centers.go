package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core/center"
)

type centerApi struct {
	svc      *center.Service
	validate *validator.Validate
}

func registerCenterAPI(g *echo.Group, jwt, me echo.MiddlewareFunc, deps ServerDeps) {
	api := centerApi{svc: deps.CenterSvc, validate: deps.Validate}

	cg := g.Group("/centers", jwt, me)
	cg.GET("", api.query)
	cg.POST("", api.create, adminMiddleware())
	cg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := cg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
}

func (api *centerApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding center by ID")
		}
		ctx.Set(contextObjectKey, c)
		return next(ctx)
	}
}

func (api *centerApi) create(ctx echo.Context) error {
	var data center.NewCenter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCenter")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating center")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *centerApi) query(ctx echo.Context) error {
	filter := &center.QueryFilter{Search: ctx.QueryParam("search")}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	centers, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying centers")
	}
	if centers == nil {
		centers = []center.Center{}
	}
	return ctx.JSON(http.StatusOK, centers)
}

func (api *centerApi) retrieve(ctx echo.Context) error {
	c, ok := ctx.Get(contextObjectKey).(center.Center)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving center from context")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *centerApi) update(ctx echo.Context) error {
	c, ok := ctx.Get(contextObjectKey).(center.Center)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving center from context")
	}

	var data center.UpdateCenter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCenter")
	}
	if err := data.Validate(c, api.validate); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), c, data)
	if err != nil {
		return errors.Wrap(err, "updating center")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *centerApi) destroy(ctx echo.Context) error {
	c, ok := ctx.Get(contextObjectKey).(center.Center)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving center from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), c.ID); err != nil {
		return errors.Wrap(err, "deleting center")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *centerApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs != nil {
		if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
			return errors.Wrap(err, "deleting centers")
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}
