package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core/message"
)

type messageApi struct {
	svc      *message.Service
	validate *validator.Validate
}

func registerMessageAPI(g *echo.Group, jwt, me echo.MiddlewareFunc, deps ServerDeps) {
	api := messageApi{svc: deps.MessageSvc, validate: deps.Validate}

	mg := g.Group("/messages", jwt, me)
	mg.GET("", api.conversations)
	mg.POST("", api.send)
	mg.GET("/unread", api.unreadCount)
	mg.GET("/threads/:id", api.thread)
	mg.DELETE("/:id", api.destroy)
}

func (api *messageApi) send(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data message.NewMessage
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Send(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *messageApi) conversations(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	convs, err := api.svc.Conversations(ctx.Request().Context(), ctxUsr, ctx.QueryParam("search"))
	if err != nil {
		return errors.Wrap(err, "listing conversations")
	}
	return ctx.JSON(http.StatusOK, convs)
}

func (api *messageApi) thread(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	msgs, err := api.svc.Thread(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "reading thread")
	}
	if msgs == nil {
		msgs = []message.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) unreadCount(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	n, err := api.svc.UnreadCount(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "counting unread messages")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: n})
}

// destroy deletes a message. Only its sender or an admin may do it.
func (api *messageApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	m, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding message by ID")
	}
	if _, involved := m.Counterpart(ctxUsr.ID); !involved && !ctxUsr.IsAdmin() {
		return errHttpNotFound
	}
	if m.SenderID != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return errHttpForbidden
	}

	if err = api.svc.Delete(ctx.Request().Context(), m.ID); err != nil {
		return errors.Wrap(err, "deleting message")
	}
	return ctx.NoContent(http.StatusNoContent)
}
