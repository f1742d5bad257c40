package appointment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medik/hospital-api/internal/handler"
	"github.com/medik/hospital-api/internal/middleware"
	"github.com/medik/hospital-api/internal/model"
)

// Back-office CRUD over the appointment table. Doctors may browse and edit
// here too, but the complaint stays read-only for them and the end time is
// read-only for everyone (it is derived from the start).

func (h *Handler) registerAdminRoutes(r *gin.RouterGroup) {
	adminGate := h.auth.RequireRoles(model.RoleStaff, model.RoleRoot, model.RoleDoctor)
	deleteGate := h.auth.RequireRoles(model.RoleStaff, model.RoleRoot)

	admin := r.Group("/admin/appointments", adminGate)
	{
		admin.GET("", h.AdminList)
		admin.GET("/:id", h.GetAppointment)
		admin.POST("", h.AdminCreate)
		admin.PUT("/:id", h.AdminUpdate)
		admin.DELETE("/:id", deleteGate, h.AdminDelete)
	}
}

func (h *Handler) AdminList(c *gin.Context) {
	var filters model.AppointmentFilters

	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
			return
		}
		filters.PatientID = id
	}

	if v := c.Query("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
			return
		}
		filters.DoctorID = id
	}

	if v := c.Query("answered"); v != "" {
		answered, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid answered flag"))
			return
		}
		filters.Answered = &answered
	}

	appointments, err := h.service.AdminList(c.Request.Context(), &filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) AdminCreate(c *gin.Context) {
	var req model.AdminCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.service.AdminCreate(c.Request.Context(), &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) AdminUpdate(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.AdminUpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.service.AdminUpdate(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) AdminDelete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.service.AdminDelete(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
