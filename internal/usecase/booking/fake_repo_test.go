package booking

import (
	"context"
	"sync"

	"gorm.io/gorm"

	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
	"github.com/HorizonteApps/clinic-scheduler/internal/models"
)

// fakeRepo is an in-memory schedule.Repository. CreateAppointment enforces
// the same active-slot uniqueness the real store enforces with its partial
// unique index, so the concurrency behavior under test matches production.
type fakeRepo struct {
	mu sync.Mutex

	professionals map[uint]*models.Professional
	patients      map[uint]*models.Patient
	templates     map[int]*models.WeeklyTemplate
	overrides     map[string]*models.DateOverride
	appointments  map[uint]*models.Appointment
	attempts      map[string]*models.PaymentAttempt

	nextAppointmentID uint
	nextPatientID     uint

	createAttemptErr     error
	updateAppointmentErr error
}

var _ domain.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		professionals:     map[uint]*models.Professional{},
		patients:          map[uint]*models.Patient{},
		templates:         map[int]*models.WeeklyTemplate{},
		overrides:         map[string]*models.DateOverride{},
		appointments:      map[uint]*models.Appointment{},
		attempts:          map[string]*models.PaymentAttempt{},
		nextAppointmentID: 1,
		nextPatientID:     1,
	}
}

func (f *fakeRepo) GetProfessionalByID(ctx context.Context, id uint) (*models.Professional, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.professionals[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetPatientByID(ctx context.Context, id uint) (*models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.patients[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetOrCreatePatient(ctx context.Context, name, phone, email string) (*models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.patients {
		if p.Phone == phone {
			cp := *p
			return &cp, nil
		}
	}
	p := &models.Patient{ID: f.nextPatientID, Name: name, Phone: phone, Email: email}
	f.nextPatientID++
	f.patients[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) GetTemplateDay(ctx context.Context, professionalID uint, weekday int) (*models.WeeklyTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tpl, ok := f.templates[weekday]; ok {
		cp := *tpl
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListTemplate(ctx context.Context, professionalID uint) ([]models.WeeklyTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.WeeklyTemplate, 0, len(f.templates))
	for _, tpl := range f.templates {
		out = append(out, *tpl)
	}
	return out, nil
}

func (f *fakeRepo) GetOverride(ctx context.Context, professionalID uint, date string) (*models.DateOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ov, ok := f.overrides[date]; ok {
		cp := *ov
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListOverrides(ctx context.Context, professionalID uint) ([]models.DateOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.DateOverride, 0, len(f.overrides))
	for _, ov := range f.overrides {
		out = append(out, *ov)
	}
	return out, nil
}

func (f *fakeRepo) ReplaceAvailability(ctx context.Context, professionalID uint, days []models.WeeklyTemplate, overrides []models.DateOverride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templates = map[int]*models.WeeklyTemplate{}
	f.overrides = map[string]*models.DateOverride{}
	for i := range days {
		day := days[i]
		f.templates[day.Weekday] = &day
	}
	for i := range overrides {
		ov := overrides[i]
		f.overrides[ov.Date] = &ov
	}
	return nil
}

func (f *fakeRepo) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.appointments {
		if existing.ProfessionalID == ap.ProfessionalID &&
			existing.Date == ap.Date &&
			existing.Time == ap.Time &&
			domain.IsActive(domain.Status(existing.Status)) {
			return httperr.ErrBusiness(httperr.CodeSlotConflict)
		}
	}
	ap.ID = f.nextAppointmentID
	f.nextAppointmentID++
	cp := *ap
	f.appointments[ap.ID] = &cp
	return nil
}

func (f *fakeRepo) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ap, ok := f.appointments[id]; ok {
		cp := *ap
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateAppointmentErr != nil {
		return f.updateAppointmentErr
	}
	if _, ok := f.appointments[ap.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *ap
	f.appointments[ap.ID] = &cp
	return nil
}

func (f *fakeRepo) DeleteAppointment(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.appointments, id)
	return nil
}

func (f *fakeRepo) ListAppointmentsForDate(ctx context.Context, professionalID uint, date string) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.ProfessionalID == professionalID && ap.Date == date {
			out = append(out, *ap)
		}
	}
	return out, nil
}

func (f *fakeRepo) ActiveAppointmentTimes(ctx context.Context, professionalID uint, date string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, ap := range f.appointments {
		if ap.ProfessionalID == professionalID && ap.Date == date &&
			domain.IsActive(domain.Status(ap.Status)) {
			out = append(out, ap.Time)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreatePaymentAttempt(ctx context.Context, pa *models.PaymentAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createAttemptErr != nil {
		return f.createAttemptErr
	}
	cp := *pa
	f.attempts[pa.ID] = &cp
	return nil
}

func (f *fakeRepo) GetPaymentAttempt(ctx context.Context, id string) (*models.PaymentAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pa, ok := f.attempts[id]; ok {
		cp := *pa
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetPaymentAttemptByAppointment(ctx context.Context, appointmentID uint) (*models.PaymentAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pa := range f.attempts {
		if pa.AppointmentID == appointmentID {
			cp := *pa
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdatePaymentAttempt(ctx context.Context, pa *models.PaymentAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *pa
	f.attempts[pa.ID] = &cp
	return nil
}

func (f *fakeRepo) appointment(id uint) *models.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ap, ok := f.appointments[id]; ok {
		cp := *ap
		return &cp
	}
	return nil
}

// fakePayments records Start and Abort calls.
type fakePayments struct {
	mu      sync.Mutex
	started []string
	aborted []uint
}

func (f *fakePayments) Start(appointmentID uint, attemptID, providerRef string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, attemptID)
}

func (f *fakePayments) Abort(appointmentID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = append(f.aborted, appointmentID)
	return true
}

func (f *fakePayments) startedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.started)
}

func (f *fakePayments) abortedIDs() []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint, len(f.aborted))
	copy(out, f.aborted)
	return out
}
