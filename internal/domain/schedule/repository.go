package schedule

import (
	"context"

	"github.com/HorizonteApps/clinic-scheduler/internal/models"
)

type Repository interface {
	// -------- Professional --------
	GetProfessionalByID(
		ctx context.Context,
		id uint,
	) (*models.Professional, error)

	// -------- Patient --------
	GetPatientByID(
		ctx context.Context,
		id uint,
	) (*models.Patient, error)

	GetOrCreatePatient(
		ctx context.Context,
		name string,
		phone string,
		email string,
	) (*models.Patient, error)

	// -------- Availability (committed state) --------
	GetTemplateDay(
		ctx context.Context,
		professionalID uint,
		weekday int,
	) (*models.WeeklyTemplate, error)

	ListTemplate(
		ctx context.Context,
		professionalID uint,
	) ([]models.WeeklyTemplate, error)

	GetOverride(
		ctx context.Context,
		professionalID uint,
		date string,
	) (*models.DateOverride, error)

	ListOverrides(
		ctx context.Context,
		professionalID uint,
	) ([]models.DateOverride, error)

	// ReplaceAvailability swaps the whole template-and-override state in a
	// single transaction. No partial commit may ever be visible.
	ReplaceAvailability(
		ctx context.Context,
		professionalID uint,
		days []models.WeeklyTemplate,
		overrides []models.DateOverride,
	) error

	// -------- Appointment --------

	// CreateAppointment inserts guarded by the active-slot unique index and
	// returns a slot_conflict business error on violation.
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	DeleteAppointment(
		ctx context.Context,
		id uint,
	) error

	ListAppointmentsForDate(
		ctx context.Context,
		professionalID uint,
		date string,
	) ([]models.Appointment, error)

	// ActiveAppointmentTimes lists the slot times already held by
	// non-cancelled, non-no-show appointments on that date.
	ActiveAppointmentTimes(
		ctx context.Context,
		professionalID uint,
		date string,
	) ([]string, error)

	// -------- Payment --------
	CreatePaymentAttempt(
		ctx context.Context,
		pa *models.PaymentAttempt,
	) error

	GetPaymentAttempt(
		ctx context.Context,
		id string,
	) (*models.PaymentAttempt, error)

	GetPaymentAttemptByAppointment(
		ctx context.Context,
		appointmentID uint,
	) (*models.PaymentAttempt, error)

	UpdatePaymentAttempt(
		ctx context.Context,
		pa *models.PaymentAttempt,
	) error
}
