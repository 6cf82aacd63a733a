package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
)

// writeBusinessError maps a business error code onto an HTTP status and
// reports whether it handled the error. Non-business errors fall through to
// the caller, which responds 500.
func writeBusinessError(c *gin.Context, err error) bool {
	code := httperr.BusinessCode(err)
	if code == "" {
		return false
	}

	switch {
	case code == httperr.CodeSlotConflict,
		code == httperr.CodeInvalidTransition,
		code == httperr.CodeNotTerminal,
		code == httperr.CodeNoCapacity:
		httperr.Conflict(c, code, "Operação em conflito com o estado atual.")

	case strings.HasSuffix(code, "_not_found"):
		httperr.NotFound(c, code, "Registro não encontrado.")

	default:
		httperr.BadRequest(c, code, "Dados inválidos.")
	}

	return true
}
