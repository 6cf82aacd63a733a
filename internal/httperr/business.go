package httperr

import "errors"

// Business rule violations travel as codes, never as free text. Handlers map
// the code to an HTTP status; the realtime channel never carries them.
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// BusinessCode extracts the code from a business error, or "" when err is not one.
func BusinessCode(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Codes shared between usecases and handlers.
const (
	CodeSlotConflict      = "slot_conflict"
	CodeInvalidTransition = "invalid_transition"
	CodeNoCapacity        = "no_capacity"
	CodeDraftNotFound     = "draft_not_found"
	CodeNotTerminal       = "not_terminal"
)
