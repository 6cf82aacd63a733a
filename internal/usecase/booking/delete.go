package booking

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/HorizonteApps/clinic-scheduler/internal/audit"
	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/fanout"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
)

// DeleteBooking is the administrative hard remove. It lives outside the
// state machine: only terminal appointments may be deleted, cancellation is
// the in-machine path.
type DeleteBooking struct {
	repo  domain.Repository
	hub   *fanout.Hub
	audit *audit.Dispatcher
}

func NewDeleteBooking(
	repo domain.Repository,
	hub *fanout.Hub,
	auditDispatcher *audit.Dispatcher,
) *DeleteBooking {
	return &DeleteBooking{
		repo:  repo,
		hub:   hub,
		audit: auditDispatcher,
	}
}

func (uc *DeleteBooking) Execute(
	ctx context.Context,
	appointmentID uint,
	actorID *uint,
) error {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.ErrBusiness("appointment_not_found")
		}
		return err
	}

	if !domain.IsTerminal(domain.Status(ap.Status)) {
		return httperr.ErrBusiness(httperr.CodeNotTerminal)
	}

	if err := uc.repo.DeleteAppointment(ctx, ap.ID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: ap.ProfessionalID,
		ActorID:        actorID,
		Action:         "appointment_deleted",
		Entity:         "appointment",
		EntityID:       &ap.ID,
	})

	uc.hub.Publish(fanout.Event{
		Type:        fanout.TypeBookingDeleted,
		Payload:     ap,
		TargetRoles: fanout.Dashboards(),
	})

	return nil
}
