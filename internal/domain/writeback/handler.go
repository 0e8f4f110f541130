package writeback

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicops/clinicops/internal/platform/auth"
	"github.com/clinicops/clinicops/internal/platform/db"
	"github.com/clinicops/clinicops/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/recommendations", auth.RequireRole("clinic_manager", "front_desk_staff", "clinician"))
	g.POST("/generate", h.Generate)
	g.GET("/pending", h.ListPending)
	g.GET("/:id", h.GetRecommendation)
	g.POST("/:id/decision", h.Decide)
	g.POST("/:id/execute", h.Execute)
	g.POST("/:id/execution-failure", h.RecordFailure)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrDisabled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, ErrDisabled.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "recommendation not found")
	case errors.Is(err, ErrAlreadyDecided):
		return echo.NewHTTPError(http.StatusConflict, ErrAlreadyDecided.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// Generate derives insights for one day (query param "date", default today)
// and promotes everything above threshold.
func (h *Handler) Generate(c echo.Context) error {
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

	recs, err := h.svc.GenerateRecommendations(ctx, clinicID, date,
		auth.UserIDFromContext(ctx), auth.PrimaryRoleFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"recommendations": recs,
		"count":           len(recs),
	})
}

func (h *Handler) ListPending(c echo.Context) error {
	ctx := c.Request().Context()
	params := pagination.FromContext(c)

	recs, total, err := h.svc.Pending(ctx, db.ClinicFromContext(ctx), params.Limit, params.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(recs, total, params.Limit, params.Offset))
}

func (h *Handler) GetRecommendation(c echo.Context) error {
	rec, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

type decisionRequest struct {
	Decision Decision `json:"decision"`
	Note     string   `json:"note"`
}

// Decide records one approve/reject decision. A second decision on the same
// recommendation returns 409.
func (h *Handler) Decide(c echo.Context) error {
	ctx := c.Request().Context()

	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !req.Decision.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "decision must be approved or rejected")
	}

	approval, err := h.svc.Decide(ctx, c.Param("id"), auth.UserIDFromContext(ctx), req.Decision, req.Note)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, approval)
}

type executeRequest struct {
	ApprovalID       string `json:"approval_id"`
	ExternalActionID string `json:"external_action_id"`
}

func (h *Handler) Execute(c echo.Context) error {
	ctx := c.Request().Context()

	var req executeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ApprovalID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "approval_id is required")
	}

	result, err := h.svc.Execute(ctx, c.Param("id"), req.ApprovalID,
		db.ClinicFromContext(ctx), auth.UserIDFromContext(ctx), req.ExternalActionID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, result)
}

type failureRequest struct {
	ApprovalID   string          `json:"approval_id"`
	Status       ExecutionStatus `json:"status"`
	ErrorMessage string          `json:"error_message"`
}

func (h *Handler) RecordFailure(c echo.Context) error {
	ctx := c.Request().Context()

	var req failureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ApprovalID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "approval_id is required")
	}

	result, err := h.svc.RecordFailure(ctx, c.Param("id"), req.ApprovalID,
		db.ClinicFromContext(ctx), auth.UserIDFromContext(ctx), req.Status, req.ErrorMessage)
	if err != nil {
		if errors.Is(err, ErrDisabled) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyDecided) {
			return httpError(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, result)
}
