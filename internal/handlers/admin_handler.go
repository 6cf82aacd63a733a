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

// AdminHandler exposes the administrative appointment operations. Both go
// through the same orchestrator paths as everything else, so the same
// events reach the dashboards.
type AdminHandler struct {
	transitionUC *ucBooking.TransitionAppointment
	deleteUC     *ucBooking.DeleteBooking
}

func NewAdminHandler(
	transitionUC *ucBooking.TransitionAppointment,
	deleteUC *ucBooking.DeleteBooking,
) *AdminHandler {
	return &AdminHandler{
		transitionUC: transitionUC,
		deleteUC:     deleteUC,
	}
}

// ForceCancel cancels an appointment regardless of who booked it. An
// in-flight payment reconciliation is aborted by the transition itself.
func (h *AdminHandler) ForceCancel(c *gin.Context) {
	actorID := c.MustGet(middleware.ContextUserID).(uint)

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_appointment_id", "Agendamento inválido.")
		return
	}

	ap, err := h.transitionUC.Execute(c.Request.Context(), uint(id64), domain.StatusCancelled, &actorID)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_cancel_appointment", "Erro ao cancelar agendamento.")
		return
	}

	httpresp.OK(c, ap)
}

// Delete hard-removes a terminal appointment.
func (h *AdminHandler) Delete(c *gin.Context) {
	actorID := c.MustGet(middleware.ContextUserID).(uint)

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_appointment_id", "Agendamento inválido.")
		return
	}

	if err := h.deleteUC.Execute(c.Request.Context(), uint(id64), &actorID); err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_delete_appointment", "Erro ao remover agendamento.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
