package insight

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicops/clinicops/internal/platform/auth"
	"github.com/clinicops/clinicops/internal/platform/db"
)

const defaultSnoozeMinutes = 60

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/insights", auth.RequireRole("clinic_manager", "front_desk_staff", "clinician"))
	g.GET("", h.ListInsights)
	g.POST("/:id/dismiss", h.DismissInsight)
	g.POST("/:id/snooze", h.SnoozeInsight)
}

// ListInsights returns the derived feed for one day (query param "date",
// YYYY-MM-DD, default today), filtered for the caller's role and suppression
// state.
func (h *Handler) ListInsights(c echo.Context) error {
	ctx := c.Request().Context()
	clinicID := db.ClinicFromContext(ctx)
	userID := auth.UserIDFromContext(ctx)
	role := auth.PrimaryRoleFromContext(ctx)

	date := time.Now().Truncate(24 * time.Hour)
	if d := c.QueryParam("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		}
		date = parsed
	}

	insights, err := h.svc.ForDay(ctx, clinicID, date, userID, role)
	if err != nil {
		if errors.Is(err, ErrDisabled) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, ErrDisabled.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"insights": insights,
		"count":    len(insights),
		"date":     date.Format("2006-01-02"),
	})
}

func (h *Handler) DismissInsight(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.svc.Dismiss(ctx, auth.UserIDFromContext(ctx), c.Param("id")); err != nil {
		if errors.Is(err, ErrDisabled) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, ErrDisabled.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type snoozeRequest struct {
	Minutes int `json:"minutes"`
}

func (h *Handler) SnoozeInsight(c echo.Context) error {
	ctx := c.Request().Context()

	req := snoozeRequest{Minutes: defaultSnoozeMinutes}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Minutes <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "minutes must be positive")
	}

	d := time.Duration(req.Minutes) * time.Minute
	if err := h.svc.Snooze(ctx, auth.UserIDFromContext(ctx), c.Param("id"), d); err != nil {
		if errors.Is(err, ErrDisabled) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, ErrDisabled.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
