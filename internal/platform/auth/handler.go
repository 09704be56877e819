package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/odontosys/odontosys/internal/platform/validation"
)

// Handler exposes the session endpoints.
type Handler struct {
	mgr *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

// RegisterRoutes mounts the public auth endpoints on g and the authenticated
// sign-out endpoint on authed.
func (h *Handler) RegisterRoutes(g *echo.Group, authed *echo.Group) {
	g.POST("/auth/signin", h.SignIn)
	g.POST("/auth/signup", h.SignUp)
	authed.POST("/auth/signout", h.SignOut)
	authed.GET("/auth/me", h.Me)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *Handler) SignIn(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	session, err := h.mgr.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) SignUp(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if errs := validation.SignUpRules.Validate(map[string]string{
		"email":    req.Email,
		"password": req.Password,
		"name":     req.Name,
	}); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"errors": errs})
	}

	session, err := h.mgr.SignUp(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusConflict, "email is already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *Handler) SignOut(c echo.Context) error {
	header := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 {
		h.mgr.SignOut(parts[1])
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the identity of the current session.
func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, map[string]string{
		"id":    UserIDFromContext(ctx),
		"email": EmailFromContext(ctx),
		"role":  RoleFromContext(ctx),
	})
}
