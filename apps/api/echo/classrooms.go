package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core/classroom"
)

type classroomApi struct {
	svc      *classroom.Service
	validate *validator.Validate
}

func registerClassroomAPI(g *echo.Group, jwt, me echo.MiddlewareFunc, deps ServerDeps) {
	api := classroomApi{svc: deps.ClassroomSvc, validate: deps.Validate}

	cg := g.Group("/classrooms", jwt, me)
	cg.GET("", api.query)
	cg.POST("", api.create, adminMiddleware())
	cg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := cg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
}

func (api *classroomApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding classroom by ID")
		}
		ctx.Set(contextObjectKey, c)
		return next(ctx)
	}
}

func (api *classroomApi) create(ctx echo.Context) error {
	var data classroom.NewClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassroom")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating classroom")
	}
	return ctx.JSON(http.StatusCreated, c)
}

type classroomQuery struct {
	CenterID  string `query:"center"`
	TeacherID string `query:"teacher"`
	Search    string `query:"search"`
}

func (api *classroomApi) query(ctx echo.Context) error {
	var q classroomQuery
	if err := ctx.Bind(&q); err != nil {
		return ctx.JSON(http.StatusOK, []classroom.Classroom{})
	}
	filter := &classroom.QueryFilter{CenterID: q.CenterID, TeacherID: q.TeacherID, Search: q.Search}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	classrooms, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying classrooms")
	}
	if classrooms == nil {
		classrooms = []classroom.Classroom{}
	}
	return ctx.JSON(http.StatusOK, classrooms)
}

func (api *classroomApi) retrieve(ctx echo.Context) error {
	c, ok := ctx.Get(contextObjectKey).(classroom.Classroom)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving classroom from context")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classroomApi) update(ctx echo.Context) error {
	c, ok := ctx.Get(contextObjectKey).(classroom.Classroom)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving classroom from context")
	}

	var data classroom.UpdateClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClassroom")
	}
	if err := data.Validate(ctx.Request().Context(), c, api.validate, api.svc); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), c, data)
	if err != nil {
		return errors.Wrap(err, "updating classroom")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classroomApi) destroy(ctx echo.Context) error {
	c, ok := ctx.Get(contextObjectKey).(classroom.Classroom)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving classroom from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), c.ID); err != nil {
		return errors.Wrap(err, "deleting classroom")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classroomApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs != nil {
		if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
			return errors.Wrap(err, "deleting classrooms")
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}
