package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HorizonteApps/clinic-scheduler/internal/availability"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
	"github.com/HorizonteApps/clinic-scheduler/internal/httpresp"
	"github.com/HorizonteApps/clinic-scheduler/internal/middleware"
)

type AvailabilityHandler struct {
	editor    *availability.Editor
	allocator *availability.Allocator
}

func NewAvailabilityHandler(
	editor *availability.Editor,
	allocator *availability.Allocator,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		editor:    editor,
		allocator: allocator,
	}
}

type availabilityPayload struct {
	Days      []availability.DayConfig      `json:"days"`
	Overrides []availability.OverrideConfig `json:"overrides"`
}

// GetCommitted returns the durable template-and-override state.
func (h *AvailabilityHandler) GetCommitted(c *gin.Context) {
	proID := c.MustGet(middleware.ContextUserID).(uint)

	d, err := h.editor.Committed(c.Request.Context(), proID)
	if err != nil {
		httperr.Internal(c, "failed_to_load_availability", "Erro ao carregar agenda.")
		return
	}

	httpresp.OK(c, d)
}

func (h *AvailabilityHandler) GetDraft(c *gin.Context) {
	proID := c.MustGet(middleware.ContextUserID).(uint)

	d, err := h.editor.GetDraft(c.Request.Context(), proID)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_load_draft", "Erro ao carregar rascunho.")
		return
	}

	httpresp.OK(c, d)
}

// SaveDraft replaces the working copy. Nothing here touches the durable
// store; concurrent booking attempts keep seeing the committed state.
func (h *AvailabilityHandler) SaveDraft(c *gin.Context) {
	proID := c.MustGet(middleware.ContextUserID).(uint)

	var payload availabilityPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	draft := &availability.Draft{
		Days:      payload.Days,
		Overrides: payload.Overrides,
	}

	if err := h.editor.SaveDraft(c.Request.Context(), proID, draft); err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_save_draft", "Erro ao salvar rascunho.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AvailabilityHandler) DiscardDraft(c *gin.Context) {
	proID := c.MustGet(middleware.ContextUserID).(uint)

	if err := h.editor.DiscardDraft(c.Request.Context(), proID); err != nil {
		httperr.Internal(c, "failed_to_discard_draft", "Erro ao descartar rascunho.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Commit swaps the working copy (or an inline payload) into the durable
// store atomically. Success or failure, never partial.
func (h *AvailabilityHandler) Commit(c *gin.Context) {
	proID := c.MustGet(middleware.ContextUserID).(uint)

	var err error
	if c.Request.ContentLength > 0 {
		var payload availabilityPayload
		if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
			httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
			return
		}
		err = h.editor.CommitPayload(c.Request.Context(), proID, &availability.Draft{
			Days:      payload.Days,
			Overrides: payload.Overrides,
		})
	} else {
		err = h.editor.Commit(c.Request.Context(), proID)
	}

	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_commit_availability", "Erro ao salvar agenda.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NextSlot suggests the first free business-day boundary for quick-add.
// Read-only; the professional adds the slot through a draft edit.
func (h *AvailabilityHandler) NextSlot(c *gin.Context) {
	proID := c.MustGet(middleware.ContextUserID).(uint)

	date := c.Query("date")
	slot, err := h.allocator.NextAvailableSlot(c.Request.Context(), proID, date)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_find_slot", "Erro ao buscar horário.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"slot": slot})
}

// PublicSlots serves the patient-facing slot query for a professional/date.
func (h *AvailabilityHandler) PublicSlots(c *gin.Context) {
	proID64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_professional_id", "Profissional inválido.")
		return
	}
	proID := uint(proID64)
	date := c.Query("date")

	effective, err := h.allocator.EffectiveSlots(c.Request.Context(), proID, date)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_load_slots", "Erro ao carregar horários.")
		return
	}

	free, err := h.allocator.FreeSlots(c.Request.Context(), proID, date)
	if err != nil {
		httperr.Internal(c, "failed_to_load_slots", "Erro ao carregar horários.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":      date,
		"slots":     free,
		"effective": effective,
	})
}
