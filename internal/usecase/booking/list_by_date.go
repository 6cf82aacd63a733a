package booking

import (
	"context"

	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/dto"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
)

// ListAppointmentsByDate is the dashboard read model: observers resync the
// full day from here after (re)connecting to the realtime channel.
type ListAppointmentsByDate struct {
	repo domain.Repository
}

func NewListAppointmentsByDate(
	repo domain.Repository,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		repo: repo,
	}
}

func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	professionalID uint,
	date string,
) ([]dto.AppointmentListDTO, error) {

	if !domain.ValidDate(date) {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	appointments, err := uc.repo.ListAppointmentsForDate(
		ctx,
		professionalID,
		date,
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.AppointmentListDTO{
			ID:          ap.ID,
			Date:        ap.Date,
			Time:        ap.Time,
			Status:      ap.Status,
			PatientName: ap.Patient.Name,
			Price:       ap.Price,
			PaymentID:   ap.PaymentID,
		})
	}

	return out, nil
}
