package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
	"github.com/HorizonteApps/clinic-scheduler/internal/httpresp"
	"github.com/HorizonteApps/clinic-scheduler/internal/middleware"
	ucBooking "github.com/HorizonteApps/clinic-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	createUC     *ucBooking.CreateBooking
	transitionUC *ucBooking.TransitionAppointment
	listUC       *ucBooking.ListAppointmentsByDate
}

func NewBookingHandler(
	createUC *ucBooking.CreateBooking,
	transitionUC *ucBooking.TransitionAppointment,
	listUC *ucBooking.ListAppointmentsByDate,
) *BookingHandler {
	return &BookingHandler{
		createUC:     createUC,
		transitionUC: transitionUC,
		listUC:       listUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ProfessionalID uint    `json:"professional_id" binding:"required"`
	PatientID      uint    `json:"patient_id" binding:"required"`
	Date           string  `json:"date" binding:"required"`
	Time           string  `json:"time" binding:"required"`
	Price          float64 `json:"price"`
	Notes          string  `json:"notes"`

	ProviderPaymentRef string `json:"provider_payment_ref"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.createUC.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		ProfessionalID:     req.ProfessionalID,
		PatientID:          req.PatientID,
		Date:               req.Date,
		Time:               req.Time,
		Price:              req.Price,
		Notes:              req.Notes,
		ProviderPaymentRef: req.ProviderPaymentRef,
	})
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_create_booking", "Erro ao criar agendamento.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"appointment_id": ap.ID,
		"status":         ap.Status,
		"payment_id":     ap.PaymentID,
	})
}

// ======================================================
// LIST
// ======================================================

func (h *BookingHandler) ListByDate(c *gin.Context) {
	proID := c.MustGet(middleware.ContextUserID).(uint)

	date := c.Query("date")
	items, err := h.listUC.Execute(c.Request.Context(), proID, date)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_list_appointments", "Erro ao listar agendamentos.")
		return
	}

	httpresp.List(c, items)
}

// ======================================================
// TRANSITIONS
// ======================================================

func (h *BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, domain.StatusConfirmed)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, domain.StatusCompleted)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, domain.StatusCancelled)
}

func (h *BookingHandler) NoShow(c *gin.Context) {
	h.transition(c, domain.StatusNoShow)
}

func (h *BookingHandler) transition(c *gin.Context, target domain.Status) {
	actorID := c.MustGet(middleware.ContextUserID).(uint)

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_appointment_id", "Agendamento inválido.")
		return
	}

	ap, err := h.transitionUC.Execute(c.Request.Context(), uint(id64), target, &actorID)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_update_appointment", "Erro ao atualizar agendamento.")
		return
	}

	httpresp.OK(c, ap)
}
