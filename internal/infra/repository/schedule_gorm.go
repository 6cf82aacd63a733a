package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
	"github.com/HorizonteApps/clinic-scheduler/internal/models"
)

const pgUniqueViolation = "23505"

type ScheduleGormRepository struct {
	db *gorm.DB
}

func NewScheduleGormRepository(db *gorm.DB) *ScheduleGormRepository {
	return &ScheduleGormRepository{db: db}
}

// --------------------------------------------------
// Professional
// --------------------------------------------------

func (r *ScheduleGormRepository) GetProfessionalByID(
	ctx context.Context,
	id uint,
) (*models.Professional, error) {

	var pro models.Professional
	if err := r.db.WithContext(ctx).First(&pro, id).Error; err != nil {
		return nil, err
	}
	return &pro, nil
}

// --------------------------------------------------
// Patient
// --------------------------------------------------

func (r *ScheduleGormRepository) GetPatientByID(
	ctx context.Context,
	id uint,
) (*models.Patient, error) {

	var patient models.Patient
	if err := r.db.WithContext(ctx).First(&patient, id).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *ScheduleGormRepository) GetOrCreatePatient(
	ctx context.Context,
	name string,
	phone string,
	email string,
) (*models.Patient, error) {

	var patient models.Patient
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&patient).Error

	if err == nil {
		return &patient, nil
	}

	patient = models.Patient{
		Name:  name,
		Phone: phone,
		Email: email,
	}

	if err := r.db.WithContext(ctx).Create(&patient).Error; err != nil {
		return nil, err
	}

	return &patient, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *ScheduleGormRepository) GetTemplateDay(
	ctx context.Context,
	professionalID uint,
	weekday int,
) (*models.WeeklyTemplate, error) {

	var day models.WeeklyTemplate
	if err := r.db.WithContext(ctx).
		Where("professional_id = ? AND weekday = ?", professionalID, weekday).
		First(&day).Error; err != nil {
		return nil, err
	}

	return &day, nil
}

func (r *ScheduleGormRepository) ListTemplate(
	ctx context.Context,
	professionalID uint,
) ([]models.WeeklyTemplate, error) {

	var days []models.WeeklyTemplate
	if err := r.db.WithContext(ctx).
		Where("professional_id = ?", professionalID).
		Order("weekday ASC").
		Find(&days).Error; err != nil {
		return nil, err
	}

	return days, nil
}

func (r *ScheduleGormRepository) GetOverride(
	ctx context.Context,
	professionalID uint,
	date string,
) (*models.DateOverride, error) {

	var override models.DateOverride
	if err := r.db.WithContext(ctx).
		Where("professional_id = ? AND date = ?", professionalID, date).
		First(&override).Error; err != nil {
		return nil, err
	}

	return &override, nil
}

func (r *ScheduleGormRepository) ListOverrides(
	ctx context.Context,
	professionalID uint,
) ([]models.DateOverride, error) {

	var overrides []models.DateOverride
	if err := r.db.WithContext(ctx).
		Where("professional_id = ?", professionalID).
		Order("date ASC").
		Find(&overrides).Error; err != nil {
		return nil, err
	}

	return overrides, nil
}

func (r *ScheduleGormRepository) ReplaceAvailability(
	ctx context.Context,
	professionalID uint,
	days []models.WeeklyTemplate,
	overrides []models.DateOverride,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := tx.
			Where("professional_id = ?", professionalID).
			Delete(&models.WeeklyTemplate{}).Error; err != nil {
			return err
		}

		if err := tx.
			Where("professional_id = ?", professionalID).
			Delete(&models.DateOverride{}).Error; err != nil {
			return err
		}

		if len(days) > 0 {
			if err := tx.Create(&days).Error; err != nil {
				return err
			}
		}

		if len(overrides) > 0 {
			if err := tx.Create(&overrides).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *ScheduleGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {

	err := r.db.WithContext(ctx).Create(ap).Error
	if err == nil {
		return nil
	}

	// The partial unique index on (professional_id, date, time) for active
	// statuses is the double-booking guard. Map its violation to a conflict
	// the caller can retry with a different slot.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return httperr.ErrBusiness(httperr.CodeSlotConflict)
	}

	return err
}

func (r *ScheduleGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *ScheduleGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

func (r *ScheduleGormRepository) DeleteAppointment(
	ctx context.Context,
	id uint,
) error {
	return r.db.WithContext(ctx).Delete(&models.Appointment{}, id).Error
}

func (r *ScheduleGormRepository) ListAppointmentsForDate(
	ctx context.Context,
	professionalID uint,
	date string,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Where("professional_id = ? AND date = ?", professionalID, date).
		Order("time ASC").
		Find(&aps).Error; err != nil {
		return nil, err
	}

	return aps, nil
}

func (r *ScheduleGormRepository) ActiveAppointmentTimes(
	ctx context.Context,
	professionalID uint,
	date string,
) ([]string, error) {

	var times []string
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"professional_id = ? AND date = ? AND status NOT IN ?",
			professionalID, date,
			[]string{string(domain.StatusCancelled), string(domain.StatusNoShow)},
		).
		Order("time ASC").
		Pluck("time", &times).Error; err != nil {
		return nil, err
	}

	return times, nil
}

// --------------------------------------------------
// Payment
// --------------------------------------------------

func (r *ScheduleGormRepository) CreatePaymentAttempt(
	ctx context.Context,
	pa *models.PaymentAttempt,
) error {
	return r.db.WithContext(ctx).Create(pa).Error
}

func (r *ScheduleGormRepository) GetPaymentAttempt(
	ctx context.Context,
	id string,
) (*models.PaymentAttempt, error) {

	var pa models.PaymentAttempt
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&pa).Error; err != nil {
		return nil, err
	}

	return &pa, nil
}

func (r *ScheduleGormRepository) GetPaymentAttemptByAppointment(
	ctx context.Context,
	appointmentID uint,
) (*models.PaymentAttempt, error) {

	var pa models.PaymentAttempt
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at DESC").
		First(&pa).Error; err != nil {
		return nil, err
	}

	return &pa, nil
}

func (r *ScheduleGormRepository) UpdatePaymentAttempt(
	ctx context.Context,
	pa *models.PaymentAttempt,
) error {
	return r.db.WithContext(ctx).Save(pa).Error
}

// Compile-time check
var _ domain.Repository = (*ScheduleGormRepository)(nil)
