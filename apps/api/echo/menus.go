package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core/menu"
)

type menuApi struct {
	svc      *menu.Service
	validate *validator.Validate
}

func registerMenuAPI(g *echo.Group, jwt, me echo.MiddlewareFunc, deps ServerDeps) {
	api := menuApi{svc: deps.MenuSvc, validate: deps.Validate}

	mg := g.Group("/menus", jwt, me)
	mg.GET("", api.query)
	mg.GET("/day/:date", api.retrieveDay)
	mg.POST("", api.create, staffMiddleware())

	dg := mg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy, staffMiddleware())
}

func (api *menuApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		m, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding menu by ID")
		}
		ctx.Set(contextObjectKey, m)
		return next(ctx)
	}
}

func (api *menuApi) create(ctx echo.Context) error {
	var data menu.NewMenu
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMenu")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating menu")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *menuApi) query(ctx echo.Context) error {
	var dates DateRange
	if err := dates.Bind(ctx); err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	menus, err := api.svc.Query(
		ctx.Request().Context(),
		&menu.QueryFilter{DateFrom: dates.From, DateTo: dates.To},
		ordering.Orderings,
	)
	if err != nil {
		return errors.Wrap(err, "querying menus")
	}
	if menus == nil {
		menus = []menu.Menu{}
	}
	return ctx.JSON(http.StatusOK, menus)
}

func (api *menuApi) retrieveDay(ctx echo.Context) error {
	day, err := parseDate("date", ctx.Param("date"))
	if err != nil {
		return err
	}
	m, err := api.svc.GetByDate(ctx.Request().Context(), day)
	if err != nil {
		return errors.Wrap(err, "finding menu by date")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *menuApi) retrieve(ctx echo.Context) error {
	m, ok := ctx.Get(contextObjectKey).(menu.Menu)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving menu from context")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *menuApi) update(ctx echo.Context) error {
	m, ok := ctx.Get(contextObjectKey).(menu.Menu)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving menu from context")
	}

	var data menu.UpdateMenu
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMenu")
	}
	if err := data.Validate(m, api.validate); err != nil {
		return err
	}

	m, err := api.svc.Update(ctx.Request().Context(), m, data)
	if err != nil {
		return errors.Wrap(err, "updating menu")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *menuApi) destroy(ctx echo.Context) error {
	m, ok := ctx.Get(contextObjectKey).(menu.Menu)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving menu from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), m.ID); err != nil {
		return errors.Wrap(err, "deleting menu")
	}
	return ctx.NoContent(http.StatusNoContent)
}
