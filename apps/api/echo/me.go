package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core/classroom"
	"github.com/trezcool/agenda/core/news"
	"github.com/trezcool/agenda/core/student"
	"github.com/trezcool/agenda/core/user"
)

// Dashboard is the home screen of the context user. Which sections are filled depends on their role.
type Dashboard struct {
	User       user.User             `json:"user"`
	Unread     int                   `json:"unread"`
	Centers    int                   `json:"centers,omitempty"`    // admin
	Users      int                   `json:"users,omitempty"`      // admin
	Classrooms []classroom.Classroom `json:"classrooms,omitempty"` // teacher
	Students   []student.Student     `json:"students,omitempty"`   // teacher & tutor
	LatestNews []news.News           `json:"latest_news"`
}

const dashboardNewsCount = 5

type meApi struct {
	deps ServerDeps
}

func registerMeAPI(g *echo.Group, jwt, me echo.MiddlewareFunc, deps ServerDeps) {
	api := meApi{deps: deps}

	mg := g.Group("/me", jwt, me)
	mg.GET("", api.retrieve)
	mg.GET("/dashboard", api.dashboard)
}

func (api *meApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *meApi) dashboard(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rctx := ctx.Request().Context()

	dash := Dashboard{User: usr}
	if dash.Unread, err = api.deps.MessageSvc.UnreadCount(rctx, usr); err != nil {
		return errors.Wrap(err, "counting unread messages")
	}

	newsFilter := new(news.QueryFilter)
	err = user.Dispatch(usr.Role, user.RoleHandlers{
		Admin: func() error {
			var err error
			if dash.Centers, err = api.deps.CenterSvc.Count(rctx); err != nil {
				return errors.Wrap(err, "counting centers")
			}
			users, err := api.deps.UserSvc.Query(rctx, nil, nil)
			if err != nil {
				return errors.Wrap(err, "querying users")
			}
			dash.Users = len(users)
			return nil
		},
		Teacher: func() error {
			var err error
			dash.Classrooms, err = api.deps.ClassroomSvc.Query(rctx, &classroom.QueryFilter{TeacherID: usr.ID}, nil)
			if err != nil {
				return errors.Wrap(err, "querying classrooms")
			}
			dash.Students, err = api.deps.StudentSvc.Query(rctx, &student.QueryFilter{TeacherID: usr.ID}, nil)
			if err != nil {
				return errors.Wrap(err, "querying students")
			}
			return nil
		},
		Tutor: func() error {
			var err error
			dash.Students, err = api.deps.StudentSvc.Query(rctx, &student.QueryFilter{TutorID: usr.ID}, nil)
			if err != nil {
				return errors.Wrap(err, "querying students")
			}
			// a tutor follows the news of the centers of their children
			if len(dash.Students) > 0 {
				newsFilter.CenterID = dash.Students[0].CenterID
			}
			return nil
		},
	})
	if err != nil {
		return err
	}

	items, err := api.deps.NewsSvc.Query(rctx, newsFilter, nil)
	if err != nil {
		return errors.Wrap(err, "querying news")
	}
	if len(items) > dashboardNewsCount {
		items = items[:dashboardNewsCount]
	}
	if items == nil {
		items = []news.News{}
	}
	dash.LatestNews = items
	return ctx.JSON(http.StatusOK, dash)
}
