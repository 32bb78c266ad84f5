package server

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed static/index.html
var homePage []byte

// Home serves the landing page.
func (h *Handler) Home(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, homePage)
}
