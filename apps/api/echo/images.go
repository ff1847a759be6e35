package echoapi

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
)

type imageApi struct {
	assets core.AssetStore
}

// registerImageAPI serves images by name. Those are public: apps display them in <img> tags.
func registerImageAPI(g *echo.Group, deps ServerDeps) {
	api := imageApi{assets: deps.Assets}
	g.GET("/images/:name", api.retrieve)
}

func (api *imageApi) retrieve(ctx echo.Context) error {
	name := ctx.Param("name")
	f, err := api.assets.Open(name)
	if err != nil {
		return errors.Wrap(err, "opening image")
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	ctx.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return ctx.Stream(http.StatusOK, contentType, f)
}
