package schedule

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicops/clinicops/internal/platform/auth"
	"github.com/clinicops/clinicops/internal/platform/db"
)

type Handler struct {
	svc       *Service
	refresher *Refresher
}

func NewHandler(svc *Service, refresher *Refresher) *Handler {
	return &Handler{svc: svc, refresher: refresher}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("clinic_manager", "front_desk_staff", "clinician"))
	g.GET("/schedule", h.GetDaySchedule)
	g.GET("/appointments/:id", h.GetAppointment)
	g.GET("/providers/:id", h.GetProvider)
	g.POST("/schedule/refresh", h.RefreshSchedule)
}

// GetDaySchedule returns the clinic's appointments and roster for one day
// (query param "date", YYYY-MM-DD, default today).
func (h *Handler) GetDaySchedule(c echo.Context) error {
	ctx := c.Request().Context()
	clinicID := db.ClinicFromContext(ctx)

	date := time.Now().Truncate(24 * time.Hour)
	if d := c.QueryParam("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		}
		date = parsed
	}

	day, err := h.svc.LoadDay(ctx, clinicID, date)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, day)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	a, err := h.svc.GetAppointment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) GetProvider(c echo.Context) error {
	p, err := h.svc.GetProvider(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "provider not found")
	}
	return c.JSON(http.StatusOK, p)
}

// RefreshSchedule triggers a manual reload of the warm snapshot. Returns 202
// when started, 409 when a refresh is already in flight.
func (h *Handler) RefreshSchedule(c echo.Context) error {
	if h.refresher == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "refresh not configured")
	}
	if !h.refresher.Refresh(c.Request().Context()) {
		return echo.NewHTTPError(http.StatusConflict, "refresh already in progress")
	}
	return c.NoContent(http.StatusAccepted)
}
