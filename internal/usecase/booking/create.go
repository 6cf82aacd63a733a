package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HorizonteApps/clinic-scheduler/internal/audit"
	"github.com/HorizonteApps/clinic-scheduler/internal/availability"
	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/fanout"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
	"github.com/HorizonteApps/clinic-scheduler/internal/models"
)

// PaymentTasks is the slice of the payment reconciler the orchestrator
// drives: bookings start reconciliations, cancellations abort them.
type PaymentTasks interface {
	Start(appointmentID uint, attemptID string, providerRef string)
	Abort(appointmentID uint) bool
}

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	ProfessionalID uint
	PatientID      uint

	Date string
	Time string

	DurationMinutes int
	Price           float64
	Notes           string

	// Provider payment id from the checkout flow. When set together with a
	// positive price the booking gets a pending PaymentAttempt and a
	// reconciliation task.
	ProviderPaymentRef string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo     domain.Repository
	slots    *availability.Allocator
	hub      *fanout.Hub
	audit    *audit.Dispatcher
	payments PaymentTasks
}

func NewCreateBooking(
	repo domain.Repository,
	slots *availability.Allocator,
	hub *fanout.Hub,
	auditDispatcher *audit.Dispatcher,
	payments PaymentTasks,
) *CreateBooking {
	return &CreateBooking{
		repo:     repo,
		slots:    slots,
		hub:      hub,
		audit:    auditDispatcher,
		payments: payments,
	}
}

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Appointment, error) {

	if !domain.ValidDate(in.Date) || !domain.ValidClock(in.Time) {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	if _, err := uc.repo.GetProfessionalByID(ctx, in.ProfessionalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("professional_not_found")
		}
		return nil, err
	}

	if _, err := uc.repo.GetPatientByID(ctx, in.PatientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("patient_not_found")
		}
		return nil, err
	}

	bookable, err := uc.slots.HasSlot(ctx, in.ProfessionalID, in.Date, in.Time)
	if err != nil {
		return nil, err
	}
	if !bookable {
		return nil, httperr.ErrBusiness("slot_not_available")
	}

	duration := in.DurationMinutes
	if duration <= 0 {
		duration = domain.SlotStepMinutes
	}

	// The insert is the race arbiter: the partial unique index on active
	// (professional, date, time) rows turns a concurrent duplicate into a
	// slot_conflict here, never a double booking.
	ap := &models.Appointment{
		ProfessionalID:  in.ProfessionalID,
		PatientID:       in.PatientID,
		Date:            in.Date,
		Time:            in.Time,
		DurationMinutes: duration,
		Status:          string(domain.InitialStatus()),
		Price:           in.Price,
		Notes:           in.Notes,
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	if in.Price > 0 && in.ProviderPaymentRef != "" {
		attempt := &models.PaymentAttempt{
			ID:            uuid.NewString(),
			AppointmentID: ap.ID,
			Status:        string(domain.PaymentPending),
			ProviderRef:   in.ProviderPaymentRef,
		}
		// Um agendamento pago sem a tentativa registrada não pode ficar para
		// trás; a falha desfaz a reserva e libera o horário.
		if err := uc.repo.CreatePaymentAttempt(ctx, attempt); err != nil {
			_ = uc.repo.DeleteAppointment(ctx, ap.ID)
			return nil, err
		}

		ap.PaymentID = &attempt.ID
		if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
			_ = uc.repo.DeleteAppointment(ctx, ap.ID)
			return nil, err
		}

		if uc.payments != nil {
			uc.payments.Start(ap.ID, attempt.ID, attempt.ProviderRef)
		}
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: in.ProfessionalID,
		Action:         "appointment_created",
		Entity:         "appointment",
		EntityID:       &ap.ID,
	})

	uc.hub.Publish(fanout.Event{
		Type:        fanout.TypeBookingCreated,
		Payload:     ap,
		TargetRoles: fanout.Dashboards(),
	})

	return ap, nil
}
