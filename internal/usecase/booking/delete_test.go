package booking

import (
	"context"
	"testing"
	"time"

	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/fanout"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
)

func TestDeleteBookingTerminalOnly(t *testing.T) {
	repo := seededRepo()
	hub := fanout.NewHub()
	uc := NewDeleteBooking(repo, hub, nil)
	ctx := context.Background()

	for _, status := range []domain.Status{domain.StatusScheduled, domain.StatusConfirmed} {
		ap := seedAppointment(repo, status)
		err := uc.Execute(ctx, ap.ID, nil)
		if !httperr.IsBusiness(err, httperr.CodeNotTerminal) {
			t.Fatalf("%s: expected not_terminal, got %v", status, err)
		}
		if repo.appointment(ap.ID) == nil {
			t.Fatalf("%s appointment must survive a refused delete", status)
		}
		_ = repo.DeleteAppointment(ctx, ap.ID)
	}
}

func TestDeleteBookingRemovesTerminal(t *testing.T) {
	repo := seededRepo()
	hub := fanout.NewHub()
	uc := NewDeleteBooking(repo, hub, nil)
	sub := hub.Subscribe("obs", []fanout.Role{fanout.RoleAdmin})
	ctx := context.Background()

	ap := seedAppointment(repo, domain.StatusCancelled)
	if err := uc.Execute(ctx, ap.ID, nil); err != nil {
		t.Fatal(err)
	}
	if repo.appointment(ap.ID) != nil {
		t.Fatal("appointment still present after delete")
	}

	select {
	case ev := <-sub.Events():
		if ev.Type != fanout.TypeBookingDeleted {
			t.Fatalf("expected BookingDeleted, got %s", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no BookingDeleted event")
	}
}

func TestDeleteBookingMissing(t *testing.T) {
	uc := NewDeleteBooking(seededRepo(), fanout.NewHub(), nil)

	err := uc.Execute(context.Background(), 404, nil)
	if !httperr.IsBusiness(err, "appointment_not_found") {
		t.Fatalf("expected appointment_not_found, got %v", err)
	}
}
