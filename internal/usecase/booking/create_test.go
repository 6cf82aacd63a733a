package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/HorizonteApps/clinic-scheduler/internal/availability"
	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/fanout"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
	"github.com/HorizonteApps/clinic-scheduler/internal/models"
)

// 2026-09-07 is a Monday.
const testDate = "2026-09-07"

func seededRepo() *fakeRepo {
	repo := newFakeRepo()
	repo.professionals[1] = &models.Professional{ID: 1, Name: "Dra. Ana", Email: "ana@clinic.test"}
	repo.patients[2] = &models.Patient{ID: 2, Name: "João", Phone: "11999990000"}
	repo.templates[1] = &models.WeeklyTemplate{
		ProfessionalID: 1, Weekday: 1, Enabled: true,
		StartTime: "09:00", EndTime: "17:00",
	}
	return repo
}

func newCreateUC(repo *fakeRepo, payments PaymentTasks) (*CreateBooking, *fanout.Hub) {
	hub := fanout.NewHub()
	slots := availability.NewAllocator(repo)
	return NewCreateBooking(repo, slots, hub, nil, payments), hub
}

func TestCreateBooking(t *testing.T) {
	repo := seededRepo()
	payments := &fakePayments{}
	uc, hub := newCreateUC(repo, payments)
	sub := hub.Subscribe("obs", []fanout.Role{fanout.RoleAdmin})

	ap, err := uc.Execute(context.Background(), CreateBookingInput{
		ProfessionalID: 1,
		PatientID:      2,
		Date:           testDate,
		Time:           "10:00",
		Price:          150,
	})
	if err != nil {
		t.Fatal(err)
	}
	if ap.ID == 0 {
		t.Fatal("appointment id not assigned")
	}
	if ap.Status != string(domain.StatusScheduled) {
		t.Fatalf("new booking must start scheduled, got %s", ap.Status)
	}
	if ap.DurationMinutes != domain.SlotStepMinutes {
		t.Fatalf("default duration wrong: %d", ap.DurationMinutes)
	}

	select {
	case ev := <-sub.Events():
		if ev.Type != fanout.TypeBookingCreated {
			t.Fatalf("expected BookingCreated, got %s", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no BookingCreated event")
	}

	// No provider ref, so no payment attempt and no reconciliation task.
	if ap.PaymentID != nil || payments.startedCount() != 0 {
		t.Fatal("unpaid booking must not start payment reconciliation")
	}
}

func TestCreateBookingWithPayment(t *testing.T) {
	repo := seededRepo()
	payments := &fakePayments{}
	uc, _ := newCreateUC(repo, payments)

	ap, err := uc.Execute(context.Background(), CreateBookingInput{
		ProfessionalID:     1,
		PatientID:          2,
		Date:               testDate,
		Time:               "10:00",
		Price:              150,
		ProviderPaymentRef: "mp-12345",
	})
	if err != nil {
		t.Fatal(err)
	}
	if ap.PaymentID == nil {
		t.Fatal("paid booking must carry a payment attempt id")
	}

	attempt, err := repo.GetPaymentAttempt(context.Background(), *ap.PaymentID)
	if err != nil {
		t.Fatal(err)
	}
	if attempt.AppointmentID != ap.ID || attempt.Status != "pending" || attempt.ProviderRef != "mp-12345" {
		t.Fatalf("bad attempt: %+v", attempt)
	}
	if payments.startedCount() != 1 {
		t.Fatalf("expected 1 reconciliation start, got %d", payments.startedCount())
	}
}

func TestCreateBookingFreePriceSkipsPayment(t *testing.T) {
	repo := seededRepo()
	payments := &fakePayments{}
	uc, _ := newCreateUC(repo, payments)

	ap, err := uc.Execute(context.Background(), CreateBookingInput{
		ProfessionalID:     1,
		PatientID:          2,
		Date:               testDate,
		Time:               "11:00",
		Price:              0,
		ProviderPaymentRef: "mp-12345",
	})
	if err != nil {
		t.Fatal(err)
	}
	if ap.PaymentID != nil || payments.startedCount() != 0 {
		t.Fatal("zero-price booking must not create a payment attempt")
	}
}

func TestCreateBookingPaymentFailureFreesSlot(t *testing.T) {
	ctx := context.Background()
	in := CreateBookingInput{
		ProfessionalID:     1,
		PatientID:          2,
		Date:               testDate,
		Time:               "10:00",
		Price:              150,
		ProviderPaymentRef: "mp-12345",
	}

	cases := []struct {
		name   string
		inject func(*fakeRepo)
	}{
		{"attempt insert fails", func(r *fakeRepo) { r.createAttemptErr = errors.New("connection reset") }},
		{"payment link fails", func(r *fakeRepo) { r.updateAppointmentErr = errors.New("connection reset") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			brokenRepo := seededRepo()
			tc.inject(brokenRepo)
			payments := &fakePayments{}
			uc, hub := newCreateUC(brokenRepo, payments)
			sub := hub.Subscribe("obs", []fanout.Role{fanout.RoleAdmin})

			if _, err := uc.Execute(ctx, in); err == nil {
				t.Fatal("expected the store failure to surface")
			}

			// The half-created booking is rolled back: no lingering row, no
			// event, no reconciliation, and the slot is bookable again.
			if len(brokenRepo.appointments) != 0 {
				t.Fatalf("appointment left behind: %v", brokenRepo.appointments)
			}
			select {
			case ev := <-sub.Events():
				t.Fatalf("unexpected event %s", ev.Type)
			default:
			}
			if payments.startedCount() != 0 {
				t.Fatal("reconciliation started for a rolled-back booking")
			}

			brokenRepo.createAttemptErr = nil
			brokenRepo.updateAppointmentErr = nil
			if _, err := uc.Execute(ctx, in); err != nil {
				t.Fatalf("slot should be free after rollback: %v", err)
			}
		})
	}
}

func TestCreateBookingValidation(t *testing.T) {
	repo := seededRepo()
	uc, _ := newCreateUC(repo, &fakePayments{})
	ctx := context.Background()

	cases := []struct {
		name     string
		in       CreateBookingInput
		wantCode string
	}{
		{
			"bad date",
			CreateBookingInput{ProfessionalID: 1, PatientID: 2, Date: "07/09/2026", Time: "10:00"},
			"invalid_date_or_time",
		},
		{
			"bad time",
			CreateBookingInput{ProfessionalID: 1, PatientID: 2, Date: testDate, Time: "10h"},
			"invalid_date_or_time",
		},
		{
			"unknown professional",
			CreateBookingInput{ProfessionalID: 99, PatientID: 2, Date: testDate, Time: "10:00"},
			"professional_not_found",
		},
		{
			"unknown patient",
			CreateBookingInput{ProfessionalID: 1, PatientID: 99, Date: testDate, Time: "10:00"},
			"patient_not_found",
		},
		{
			"time outside effective slots",
			CreateBookingInput{ProfessionalID: 1, PatientID: 2, Date: testDate, Time: "19:00"},
			"slot_not_available",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, tc.in)
			if !httperr.IsBusiness(err, tc.wantCode) {
				t.Fatalf("expected %s, got %v", tc.wantCode, err)
			}
		})
	}
}

func TestCreateBookingRejectsTakenSlot(t *testing.T) {
	repo := seededRepo()
	uc, _ := newCreateUC(repo, &fakePayments{})
	ctx := context.Background()

	in := CreateBookingInput{ProfessionalID: 1, PatientID: 2, Date: testDate, Time: "10:00"}
	if _, err := uc.Execute(ctx, in); err != nil {
		t.Fatal(err)
	}
	_, err := uc.Execute(ctx, in)
	if !httperr.IsBusiness(err, httperr.CodeSlotConflict) {
		t.Fatalf("expected slot_conflict, got %v", err)
	}
}

func TestCreateBookingConcurrentSameSlot(t *testing.T) {
	repo := seededRepo()
	uc, _ := newCreateUC(repo, &fakePayments{})
	ctx := context.Background()

	const racers = 32
	var wg sync.WaitGroup
	results := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(ctx, CreateBookingInput{
				ProfessionalID: 1, PatientID: 2, Date: testDate, Time: "14:00",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case httperr.IsBusiness(err, httperr.CodeSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != racers-1 {
		t.Fatalf("expected exactly one winner, got %d wins and %d conflicts", wins, conflicts)
	}
}

func TestCreateBookingAfterCancellationFreesSlot(t *testing.T) {
	repo := seededRepo()
	uc, hub := newCreateUC(repo, &fakePayments{})
	ctx := context.Background()

	in := CreateBookingInput{ProfessionalID: 1, PatientID: 2, Date: testDate, Time: "15:00"}
	first, err := uc.Execute(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	transitions := NewTransitionAppointment(repo, hub, nil, &fakePayments{}, "UTC")
	if _, err := transitions.Execute(ctx, first.ID, domain.StatusCancelled, nil); err != nil {
		t.Fatal(err)
	}

	if _, err := uc.Execute(ctx, in); err != nil {
		t.Fatalf("cancelled slot should be bookable again: %v", err)
	}
}
