package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/center"
	"github.com/trezcool/agenda/core/classroom"
	"github.com/trezcool/agenda/core/menu"
	"github.com/trezcool/agenda/core/message"
	"github.com/trezcool/agenda/core/news"
	"github.com/trezcool/agenda/core/photo"
	"github.com/trezcool/agenda/core/record"
	"github.com/trezcool/agenda/core/student"
	"github.com/trezcool/agenda/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool

		UserSvc      *user.Service
		CenterSvc    *center.Service
		ClassroomSvc *classroom.Service
		StudentSvc   *student.Service
		RecordSvc    *record.Service
		MenuSvc      *menu.Service
		NewsSvc      *news.Service
		MessageSvc   *message.Service
		PhotoSvc     *photo.Service
		Assets       core.AssetStore
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Conf, "deps.Conf"),
		vala.IsNotNil(deps.Logger, "deps.Logger"),
		vala.IsNotNil(deps.Validate, "deps.Validate"),
		vala.IsNotNil(deps.Translator, "deps.Translator"),
		vala.IsNotNil(deps.UserSvc, "deps.UserSvc"),
		vala.IsNotNil(deps.CenterSvc, "deps.CenterSvc"),
		vala.IsNotNil(deps.ClassroomSvc, "deps.ClassroomSvc"),
		vala.IsNotNil(deps.StudentSvc, "deps.StudentSvc"),
		vala.IsNotNil(deps.RecordSvc, "deps.RecordSvc"),
		vala.IsNotNil(deps.MenuSvc, "deps.MenuSvc"),
		vala.IsNotNil(deps.NewsSvc, "deps.NewsSvc"),
		vala.IsNotNil(deps.MessageSvc, "deps.MessageSvc"),
		vala.IsNotNil(deps.PhotoSvc, "deps.PhotoSvc"),
		vala.IsNotNil(deps.Assets, "deps.Assets"),
	).CheckAndPanic()

	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf, deps.UserSvc),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)
	me := s.auth.contextUserMiddleware

	registerUserAPI(v1, s.auth, jwt, me, s.deps)
	registerCenterAPI(v1, jwt, me, s.deps)
	registerClassroomAPI(v1, jwt, me, s.deps)
	registerStudentAPI(v1, jwt, me, s.deps)
	registerRecordAPI(v1, jwt, me, s.deps)
	registerMenuAPI(v1, jwt, me, s.deps)
	registerNewsAPI(v1, jwt, me, s.deps)
	registerMessageAPI(v1, jwt, me, s.deps)
	registerPhotoAPI(v1, jwt, me, s.deps)
	registerImageAPI(v1, s.deps)
	registerMeAPI(v1, jwt, me, s.deps)
}

// Start listens on conf.Server.Host. Failures are reported on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks main to shut the server down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // a shutdown is already pending
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
