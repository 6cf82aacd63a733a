package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
)

type PatientHandler struct {
	repo domain.Repository
}

func NewPatientHandler(repo domain.Repository) *PatientHandler {
	return &PatientHandler{repo: repo}
}

type PatientRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email"`
}

// Register is get-or-create keyed by phone, so booking creation always has
// a patient id to reference.
func (h *PatientHandler) Register(c *gin.Context) {
	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	patient, err := h.repo.GetOrCreatePatient(c.Request.Context(), req.Name, req.Phone, req.Email)
	if err != nil {
		httperr.Internal(c, "failed_to_create_patient", "Erro ao registrar paciente.")
		return
	}

	c.JSON(http.StatusCreated, patient)
}
