package booking

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/HorizonteApps/clinic-scheduler/internal/audit"
	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/fanout"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
	"github.com/HorizonteApps/clinic-scheduler/internal/models"
	"github.com/HorizonteApps/clinic-scheduler/internal/timezone"
)

var eventTypeByTarget = map[domain.Status]string{
	domain.StatusConfirmed: fanout.TypeBookingConfirmed,
	domain.StatusCompleted: fanout.TypeBookingCompleted,
	domain.StatusCancelled: fanout.TypeBookingCancelled,
	domain.StatusNoShow:    fanout.TypeBookingNoShow,
}

var auditActionByTarget = map[domain.Status]string{
	domain.StatusConfirmed: "appointment_confirmed",
	domain.StatusCompleted: "appointment_completed",
	domain.StatusCancelled: "appointment_cancelled",
	domain.StatusNoShow:    "appointment_no_show",
}

type TransitionAppointment struct {
	repo     domain.Repository
	hub      *fanout.Hub
	audit    *audit.Dispatcher
	payments PaymentTasks
	locks    *idLocks
	tz       string
}

func NewTransitionAppointment(
	repo domain.Repository,
	hub *fanout.Hub,
	auditDispatcher *audit.Dispatcher,
	payments PaymentTasks,
	tz string,
) *TransitionAppointment {
	return &TransitionAppointment{
		repo:     repo,
		hub:      hub,
		audit:    auditDispatcher,
		payments: payments,
		locks:    newIDLocks(),
		tz:       tz,
	}
}

// Execute moves an appointment along the state graph. All transitions for a
// given appointment id are serialized here, so a payment-driven move and an
// admin-driven move cannot race into an inconsistent state.
func (uc *TransitionAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	target domain.Status,
	actorID *uint,
) (*models.Appointment, error) {

	if !domain.Known(target) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}

	unlock := uc.locks.lock(appointmentID)
	defer unlock()

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
		return nil, err
	}

	if err := domain.CanTransition(domain.Status(ap.Status), target); err != nil {
		return nil, err
	}

	now := timezone.NowIn(uc.tz)
	ap.Status = string(target)
	switch target {
	case domain.StatusConfirmed:
		ap.ConfirmedAt = &now
	case domain.StatusCompleted:
		ap.CompletedAt = &now
	case domain.StatusCancelled, domain.StatusNoShow:
		ap.CancelledAt = &now
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	// A booking leaving the active path takes its pending reconciliation
	// with it.
	if (target == domain.StatusCancelled || target == domain.StatusNoShow) && uc.payments != nil {
		uc.payments.Abort(ap.ID)
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: ap.ProfessionalID,
		ActorID:        actorID,
		Action:         auditActionByTarget[target],
		Entity:         "appointment",
		EntityID:       &ap.ID,
	})

	uc.hub.Publish(fanout.Event{
		Type:        eventTypeByTarget[target],
		Payload:     ap,
		TargetRoles: fanout.Dashboards(),
	})

	return ap, nil
}

// Transition adapts Execute to the reconciler's Bookings interface.
func (uc *TransitionAppointment) Transition(
	ctx context.Context,
	appointmentID uint,
	target domain.Status,
	actorID *uint,
) (*models.Appointment, error) {
	return uc.Execute(ctx, appointmentID, target, actorID)
}
