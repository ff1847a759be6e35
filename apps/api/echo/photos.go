package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core/photo"
)

var imageFormField = "image"

type photoApi struct {
	svc      *photo.Service
	validate *validator.Validate
}

func registerPhotoAPI(g *echo.Group, jwt, me echo.MiddlewareFunc, deps ServerDeps) {
	api := photoApi{svc: deps.PhotoSvc, validate: deps.Validate}

	pg := g.Group("/photos", jwt, me)
	pg.GET("", api.query)
	pg.POST("", api.upload, staffMiddleware())

	dg := pg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy, staffMiddleware())
}

func (api *photoApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding photo by ID")
		}
		ctx.Set(contextObjectKey, p)
		return next(ctx)
	}
}

// upload expects a multipart form carrying the picture in its `image` field.
func (api *photoApi) upload(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	fh, err := ctx.FormFile(imageFormField)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing image file").SetInternal(err)
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	p, err := api.svc.Upload(ctx.Request().Context(), ctxUsr, fh.Filename, f)
	if err != nil {
		return errors.Wrap(err, "uploading photo")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *photoApi) query(ctx echo.Context) error {
	var dates DateRange
	if err := dates.Bind(ctx); err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	photos, err := api.svc.Query(
		ctx.Request().Context(),
		&photo.QueryFilter{TeacherID: ctx.QueryParam("teacher"), DateFrom: dates.From, DateTo: dates.To},
		ordering.Orderings,
	)
	if err != nil {
		return errors.Wrap(err, "querying photos")
	}
	if photos == nil {
		photos = []photo.Photo{}
	}
	return ctx.JSON(http.StatusOK, photos)
}

func (api *photoApi) retrieve(ctx echo.Context) error {
	p, ok := ctx.Get(contextObjectKey).(photo.Photo)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving photo from context")
	}
	return ctx.JSON(http.StatusOK, p)
}

// destroy deletes a photo. Teachers may only delete their own photos.
func (api *photoApi) destroy(ctx echo.Context) error {
	p, ok := ctx.Get(contextObjectKey).(photo.Photo)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving photo from context")
	}
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() && p.TeacherID != ctxUsr.ID {
		return errHttpForbidden
	}

	if err = api.svc.Delete(ctx.Request().Context(), p.ID); err != nil {
		return errors.Wrap(err, "deleting photo")
	}
	return ctx.NoContent(http.StatusNoContent)
}
