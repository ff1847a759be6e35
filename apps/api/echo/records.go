package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core/classroom"
	"github.com/trezcool/agenda/core/record"
	"github.com/trezcool/agenda/core/student"
	"github.com/trezcool/agenda/core/user"
)

type recordApi struct {
	svc          *record.Service
	studentSvc   *student.Service
	classroomSvc *classroom.Service
	validate     *validator.Validate
}

func registerRecordAPI(g *echo.Group, jwt, me echo.MiddlewareFunc, deps ServerDeps) {
	api := recordApi{
		svc:          deps.RecordSvc,
		studentSvc:   deps.StudentSvc,
		classroomSvc: deps.ClassroomSvc,
		validate:     deps.Validate,
	}

	rg := g.Group("/records", jwt, me)
	rg.GET("", api.query)
	rg.POST("", api.create, staffMiddleware())

	dg := rg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy, staffMiddleware())
}

// checkStudent fails with a 404 when the context user may not access the student's records.
func (api *recordApi) checkStudent(ctx echo.Context, studentID string) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	s, err := api.studentSvc.GetByID(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	ok, err := canSeeStudent(ctx.Request().Context(), ctxUsr, s, api.classroomSvc)
	if err != nil {
		return err
	}
	if !ok {
		return errHttpNotFound
	}
	return nil
}

func (api *recordApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		r, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding record by ID")
		}
		if err = api.checkStudent(ctx, r.StudentID); err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		ctx.Set(contextObjectKey, r)
		return next(ctx)
	}
}

func (api *recordApi) create(ctx echo.Context) error {
	var data record.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}
	// teachers only keep the records of their own classrooms
	if err := api.checkStudent(ctx, data.StudentID); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating record")
	}
	return ctx.JSON(http.StatusCreated, r)
}

type recordQuery struct {
	StudentID   string `query:"student"`
	ClassroomID string `query:"classroom"`
}

func (api *recordApi) query(ctx echo.Context) error {
	var q recordQuery
	if err := ctx.Bind(&q); err != nil {
		return ctx.JSON(http.StatusOK, []record.DailyRecord{})
	}
	var dates DateRange
	if err := dates.Bind(ctx); err != nil {
		return err
	}
	filter := &record.QueryFilter{
		StudentID:   q.StudentID,
		ClassroomID: q.ClassroomID,
		DateFrom:    dates.From,
		DateTo:      dates.To,
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	err = user.Dispatch(ctxUsr.Role, user.RoleHandlers{
		Admin:   func() error { return nil },
		Teacher: func() error { filter.TeacherID = ctxUsr.ID; return nil },
		Tutor:   func() error { filter.TutorID = ctxUsr.ID; return nil },
	})
	if err != nil {
		return err
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	records, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying records")
	}
	if records == nil {
		records = []record.DailyRecord{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *recordApi) retrieve(ctx echo.Context) error {
	r, ok := ctx.Get(contextObjectKey).(record.DailyRecord)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving record from context")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *recordApi) update(ctx echo.Context) error {
	r, ok := ctx.Get(contextObjectKey).(record.DailyRecord)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving record from context")
	}

	var data record.UpdateRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRecord")
	}
	if err := data.Validate(r, api.validate); err != nil {
		return err
	}

	r, err := api.svc.Update(ctx.Request().Context(), r, data)
	if err != nil {
		return errors.Wrap(err, "updating record")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *recordApi) destroy(ctx echo.Context) error {
	r, ok := ctx.Get(contextObjectKey).(record.DailyRecord)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving record from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), r.ID); err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return ctx.NoContent(http.StatusNoContent)
}
