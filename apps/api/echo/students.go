package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core/classroom"
	"github.com/trezcool/agenda/core/student"
	"github.com/trezcool/agenda/core/user"
)

type studentApi struct {
	svc          *student.Service
	classroomSvc *classroom.Service
	validate     *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt, me echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{svc: deps.StudentSvc, classroomSvc: deps.ClassroomSvc, validate: deps.Validate}

	sg := g.Group("/students", jwt, me)
	sg.GET("", api.query)
	sg.POST("", api.create, adminMiddleware())
	sg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := sg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
	dg.POST("/assign", api.assign, adminMiddleware())
}

// canSeeStudent tells whether usr may access s: admins see everyone, teachers the students of
// their classrooms and tutors their own students.
func canSeeStudent(ctx context.Context, usr user.User, s student.Student, classroomSvc *classroom.Service) (bool, error) {
	var ok bool
	err := user.Dispatch(usr.Role, user.RoleHandlers{
		Admin: func() error {
			ok = true
			return nil
		},
		Teacher: func() error {
			if !s.ClassroomID.Valid {
				return nil
			}
			c, err := classroomSvc.GetByID(ctx, s.ClassroomID.String)
			if err != nil {
				return errors.Wrap(err, "finding classroom by ID")
			}
			ok = c.HasTeacher(usr.ID)
			return nil
		},
		Tutor: func() error {
			ok = s.TutorID == usr.ID
			return nil
		},
	})
	return ok, err
}

// objectMiddleware loads the student matching the `id` param, hiding the ones the context user may not see.
func (api *studentApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctxUsr, err := getContextUser(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}
		s, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
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
		ctx.Set(contextObjectKey, s)
		return next(ctx)
	}
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

type studentQuery struct {
	CenterID    string `query:"center"`
	ClassroomID string `query:"classroom"`
	TutorID     string `query:"tutor"`
	TeacherID   string `query:"teacher"`
	Search      string `query:"search"`
	Unassigned  bool   `query:"unassigned"`
}

func (api *studentApi) query(ctx echo.Context) error {
	var q studentQuery
	if err := ctx.Bind(&q); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter := &student.QueryFilter{
		CenterID:    q.CenterID,
		ClassroomID: q.ClassroomID,
		TutorID:     q.TutorID,
		TeacherID:   q.TeacherID,
		Search:      q.Search,
		Unassigned:  q.Unassigned,
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

	students, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, ok := ctx.Get(contextObjectKey).(student.Student)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving student from context")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	s, ok := ctx.Get(contextObjectKey).(student.Student)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving student from context")
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(ctx.Request().Context(), s, api.validate, api.svc); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), s, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) assign(ctx echo.Context) error {
	s, ok := ctx.Get(contextObjectKey).(student.Student)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving student from context")
	}
	s, err := api.svc.AssignClassroom(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "assigning classroom")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	s, ok := ctx.Get(contextObjectKey).(student.Student)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving student from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs != nil {
		if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
			return errors.Wrap(err, "deleting students")
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}
