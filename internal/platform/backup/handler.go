package backup

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/odontosys/odontosys/internal/platform/auth"
)

// maxImportBytes caps the accepted snapshot size (50 MB).
const maxImportBytes = 50 * 1024 * 1024

// Handler exposes snapshot export and restore. Both routes require the
// administrador role.
type Handler struct {
	mgr *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/backup", auth.RequireRole("administrador"))
	g.GET("/export", h.Export)
	g.POST("/import", h.Import)
}

func (h *Handler) Export(c echo.Context) error {
	data, err := h.mgr.Export(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	name := fmt.Sprintf("backup_%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Blob(http.StatusOK, "application/json", data)
}

func (h *Handler) Import(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxImportBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	counts, err := h.mgr.Import(c.Request().Context(), data)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"restored": counts})
}
