package appointment

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medik/hospital-api/internal/handler"
	"github.com/medik/hospital-api/internal/middleware"
	"github.com/medik/hospital-api/internal/model"
	"github.com/medik/hospital-api/internal/service/appointment"
	apperrors "github.com/medik/hospital-api/pkg/errors"
)

type Handler struct {
	service *appointment.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service *appointment.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patientGate := h.auth.RequireRoles(model.RolePatient, model.RoleStaff, model.RoleRoot)
	doctorGate := h.auth.RequireRoles(model.RoleDoctor, model.RoleStaff, model.RoleRoot)

	appointments := r.Group("/appointments")
	{
		appointments.POST("", patientGate, h.CreateAppointment)
		appointments.GET("/pending", patientGate, h.ListPatientPending)
		appointments.GET("/history", patientGate, h.ListPatientAnswered)
		appointments.GET("/inbox", doctorGate, h.ListDoctorPending)
		appointments.GET("/answered", doctorGate, h.ListDoctorAnswered)
		appointments.GET("/:id", doctorGate, h.GetAppointment)
		appointments.POST("/:id/readings", doctorGate, h.Respond)
	}

	h.registerAdminRoutes(r)
}

// CreateAppointment books a new appointment for the authenticated patient.
func (h *Handler) CreateAppointment(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.service.Book(c.Request.Context(), actor.ID, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessMessageResponse("Запись успешно создана.", apt))
}

// Respond saves the doctor's readings and re-displays the same record.
func (h *Handler) Respond(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.service.Respond(c.Request.Context(), actor, id, req.Readings)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessMessageResponse("Ответ сохранён.", apt))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) ListPatientPending(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	h.renderListing(c, h.service.ListPatientPending, actor.ID)
}

func (h *Handler) ListPatientAnswered(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	h.renderListing(c, h.service.ListPatientAnswered, actor.ID)
}

func (h *Handler) ListDoctorPending(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	h.renderListing(c, h.service.ListDoctorPending, actor.ID)
}

func (h *Handler) ListDoctorAnswered(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	h.renderListing(c, h.service.ListDoctorAnswered, actor.ID)
}

func (h *Handler) renderListing(c *gin.Context, list func(ctx context.Context, actorID uuid.UUID) ([]*model.AppointmentSummary, error), actorID uuid.UUID) {
	appointments, err := list(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

// renderError translates service errors into the response taxonomy: business
// rejections are 422 with their own message, unknown records 404, charset and
// field problems 400.
func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appointment.ErrPastStartTime),
		errors.Is(err, appointment.ErrPatientConflict),
		errors.Is(err, appointment.ErrDoctorConflict):
		c.JSON(http.StatusUnprocessableEntity, handler.NewErrorResponse(err.Error()))
	case errors.Is(err, appointment.ErrNotAssigned),
		errors.Is(err, appointment.ErrComplaintLocked):
		c.JSON(http.StatusForbidden, handler.NewErrorResponse(err.Error()))
	case errors.Is(err, appointment.ErrNotADoctor):
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
	case apperrors.CodeOf(err) == apperrors.ErrBadRequest:
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
	case apperrors.CodeOf(err) == apperrors.ErrNotFound:
		c.JSON(http.StatusNotFound, handler.NewErrorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
	}
}
