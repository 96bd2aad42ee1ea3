package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fleet-service/internal/http/middleware"
	"fleet-service/internal/mailer"
	"fleet-service/internal/model"
	"fleet-service/internal/scheduler"
	"fleet-service/internal/service"
)

type VehicleService interface {
	List(ctx context.Context, opts service.ListVehiclesOptions) ([]service.VehicleView, error)
	Get(ctx context.Context, id uuid.UUID) (*service.VehicleView, error)
	Create(ctx context.Context, input service.VehicleInput) (*service.VehicleView, error)
	Update(ctx context.Context, id uuid.UUID, input service.VehicleInput) (*service.VehicleView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkDeadlineDone(ctx context.Context, id uuid.UUID, category string, input service.DeadlineInput) (*service.VehicleView, error)
	AddRecord(ctx context.Context, id uuid.UUID, input service.RecordInput) (*service.VehicleView, error)
	Transition(ctx context.Context, id uuid.UUID, event string) (*service.VehicleView, error)
	UploadImage(ctx context.Context, id uuid.UUID, upload service.ImageUpload) (*service.VehicleView, error)
}

type DashboardService interface {
	Dashboard(ctx context.Context) (*service.Dashboard, error)
	Alerts(ctx context.Context) (*service.AlertList, error)
}

type DigestService interface {
	Preview(ctx context.Context, horizonDays *int) (*mailer.Digest, error)
	Run(ctx context.Context) (*service.DigestResult, error)
}

// DigestRunner serializes manual digest runs with the daily job.
type DigestRunner interface {
	Do(ctx context.Context, job scheduler.Job) error
}

type Handler struct {
	vehicles  VehicleService
	dashboard DashboardService
	digests   DigestService
	runner    DigestRunner
	log       zerolog.Logger
}

func NewHandler(
	vehicles VehicleService,
	dashboard DashboardService,
	digests DigestService,
	runner DigestRunner,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		vehicles:  vehicles,
		dashboard: dashboard,
		digests:   digests,
		runner:    runner,
		log:       log,
	}
}

func (h *Handler) listVehicles(c *gin.Context) {
	opts := service.ListVehiclesOptions{
		Search: strings.TrimSpace(c.Query("search")),
	}
	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			opts.Statuses = append(opts.Statuses, model.VehicleStatus(strings.ToLower(val)))
		}
	}
	if limit := strings.TrimSpace(c.Query("limit")); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			opts.Limit = v
		}
	}
	if offset := strings.TrimSpace(c.Query("offset")); offset != "" {
		if v, err := strconv.Atoi(offset); err == nil {
			opts.Offset = v
		}
	}

	views, err := h.vehicles.List(c.Request.Context(), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": views}))
}

func (h *Handler) getVehicle(c *gin.Context) {
	id, ok := vehicleID(c)
	if !ok {
		return
	}

	view, err := h.vehicles.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(view))
}

func (h *Handler) createVehicle(c *gin.Context) {
	var req service.VehicleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	view, err := h.vehicles.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(view))
}

func (h *Handler) updateVehicle(c *gin.Context) {
	id, ok := vehicleID(c)
	if !ok {
		return
	}

	var req service.VehicleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	view, err := h.vehicles.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(view))
}

func (h *Handler) deleteVehicle(c *gin.Context) {
	id, ok := vehicleID(c)
	if !ok {
		return
	}

	if err := h.vehicles.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	h.operatorLog(c).Info().Str("vehicle_id", id.String()).Msg("vehicle deleted")

	c.Status(http.StatusNoContent)
}

func (h *Handler) markDeadlineDone(c *gin.Context) {
	id, ok := vehicleID(c)
	if !ok {
		return
	}

	var req service.DeadlineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	view, err := h.vehicles.MarkDeadlineDone(c.Request.Context(), id, strings.TrimSpace(c.Param("category")), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(view))
}

func (h *Handler) addRecord(c *gin.Context) {
	id, ok := vehicleID(c)
	if !ok {
		return
	}

	var req service.RecordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	view, err := h.vehicles.AddRecord(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(view))
}

func (h *Handler) transitionVehicle(c *gin.Context) {
	id, ok := vehicleID(c)
	if !ok {
		return
	}

	var req struct {
		Event string `json:"event" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	view, err := h.vehicles.Transition(c.Request.Context(), id, req.Event)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(view))
}

func (h *Handler) uploadImage(c *gin.Context) {
	id, ok := vehicleID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("image file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("unreadable image file"))
		return
	}
	defer file.Close()

	view, err := h.vehicles.UploadImage(c.Request.Context(), id, service.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(view))
}

func (h *Handler) getDashboard(c *gin.Context) {
	dashboard, err := h.dashboard.Dashboard(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(dashboard))
}

func (h *Handler) listAlerts(c *gin.Context) {
	alerts, err := h.dashboard.Alerts(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(alerts))
}

func (h *Handler) previewDigest(c *gin.Context) {
	var horizon *int
	if raw := strings.TrimSpace(c.Query("horizon_days")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid horizon_days"))
			return
		}
		horizon = &v
	}

	digest, err := h.digests.Preview(c.Request.Context(), horizon)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{
		"digest":  digest,
		"subject": digest.Subject(),
	}))
}

func (h *Handler) sendDigest(c *gin.Context) {
	var result *service.DigestResult
	err := h.runner.Do(c.Request.Context(), func(ctx context.Context) error {
		r, err := h.digests.Run(ctx)
		result = r
		return err
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.operatorLog(c).Info().Bool("sent", result.Sent).Int("events", result.EventCount).Msg("manual digest run")

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict), errors.Is(err, scheduler.ErrBusy):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrStorageDisabled), errors.Is(err, service.ErrMailerDisabled):
		c.JSON(http.StatusServiceUnavailable, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

// operatorLog tags entries with the authenticated operator, when there is one.
func (h *Handler) operatorLog(c *gin.Context) *zerolog.Logger {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return &h.log
	}
	l := h.log.With().Str("operator", principal.UserID.String()).Str("operator_name", principal.Name).Logger()
	return &l
}

func vehicleID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return uuid.Nil, false
	}
	return id, true
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}
