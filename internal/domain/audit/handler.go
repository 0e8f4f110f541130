package audit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicops/clinicops/internal/platform/auth"
	"github.com/clinicops/clinicops/internal/platform/db"
	"github.com/clinicops/clinicops/pkg/pagination"
)

type Handler struct {
	recorder Recorder
}

func NewHandler(recorder Recorder) *Handler {
	return &Handler{recorder: recorder}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/audit", auth.RequireRole("clinic_manager"))
	g.GET("", h.ListHistory)
}

// ListHistory returns the clinic's audit trail newest first.
func (h *Handler) ListHistory(c echo.Context) error {
	ctx := c.Request().Context()
	clinicID := db.ClinicFromContext(ctx)
	params := pagination.FromContext(c)

	entries, err := h.recorder.History(ctx, clinicID, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.recorder.CountByClinic(ctx, clinicID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, params.Limit, params.Offset))
}
