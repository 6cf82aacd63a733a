package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
	"github.com/HorizonteApps/clinic-scheduler/internal/middleware"
	"github.com/HorizonteApps/clinic-scheduler/internal/models"
	"github.com/HorizonteApps/clinic-scheduler/internal/payment"
)

type PaymentHandler struct {
	repo       domain.Repository
	provider   payment.Provider
	reconciler *payment.Reconciler
}

func NewPaymentHandler(
	repo domain.Repository,
	provider payment.Provider,
	reconciler *payment.Reconciler,
) *PaymentHandler {
	return &PaymentHandler{
		repo:       repo,
		provider:   provider,
		reconciler: reconciler,
	}
}

// Status is the manual "check status" action: a one-off provider query that
// mutates nothing. The reconciler owns driving outcomes.
func (h *PaymentHandler) Status(c *gin.Context) {
	ref := c.Param("ref")

	res, err := h.provider.Status(c.Request.Context(), ref)
	if err != nil {
		httperr.Internal(c, "provider_unreachable", "Erro ao consultar pagamento.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      res.Status,
		"detail_code": res.DetailCode,
	})
}

type AttachPaymentRequest struct {
	ProviderPaymentRef string `json:"provider_payment_ref" binding:"required"`
}

// Attach registers a provider payment against an existing appointment and
// starts reconciliation. Used when the checkout happens after booking.
func (h *PaymentHandler) Attach(c *gin.Context) {
	proID := c.MustGet(middleware.ContextUserID).(uint)

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_appointment_id", "Agendamento inválido.")
		return
	}

	var req AttachPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ctx := c.Request.Context()

	ap, err := h.repo.GetAppointment(ctx, uint(id64))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "appointment_not_found", "Agendamento não encontrado.")
			return
		}
		httperr.Internal(c, "internal_error", "Erro interno.")
		return
	}

	if ap.ProfessionalID != proID {
		httperr.Forbidden(c, "forbidden", "Agendamento de outro profissional.")
		return
	}

	if domain.IsTerminal(domain.Status(ap.Status)) {
		httperr.Conflict(c, "appointment_terminal", "Agendamento já encerrado.")
		return
	}

	if existing, err := h.repo.GetPaymentAttemptByAppointment(ctx, ap.ID); err == nil {
		if domain.PaymentStatus(existing.Status).Terminal() {
			httperr.Conflict(c, "payment_already_resolved", "Pagamento já resolvido.")
			return
		}
	}

	attempt := &models.PaymentAttempt{
		ID:            uuid.NewString(),
		AppointmentID: ap.ID,
		Status:        string(domain.PaymentPending),
		ProviderRef:   req.ProviderPaymentRef,
	}
	if err := h.repo.CreatePaymentAttempt(ctx, attempt); err != nil {
		httperr.Internal(c, "failed_to_create_payment", "Erro ao registrar pagamento.")
		return
	}

	ap.PaymentID = &attempt.ID
	if err := h.repo.UpdateAppointment(ctx, ap); err != nil {
		httperr.Internal(c, "failed_to_update_appointment", "Erro ao atualizar agendamento.")
		return
	}

	h.reconciler.Start(ap.ID, attempt.ID, attempt.ProviderRef)

	c.JSON(http.StatusCreated, gin.H{
		"payment_id": attempt.ID,
		"status":     attempt.Status,
	})
}
