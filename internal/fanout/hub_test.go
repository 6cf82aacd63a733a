package fanout

import (
	"testing"
	"time"
)

func recvOne(t *testing.T, sub *Subscriber) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscriber channel closed unexpectedly")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func assertClosed(t *testing.T, sub *Subscriber) {
	t.Helper()
	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("expected closed channel, got event")
		}
	case <-time.After(time.Second):
		t.Fatal("channel should be closed")
	}
}

func TestPublishFiltersByRole(t *testing.T) {
	hub := NewHub()
	admin := hub.Subscribe("admin-1", []Role{RoleAdmin})
	pro := hub.Subscribe("pro-1", []Role{RoleProfessional})

	hub.Publish(Event{
		Type:        TypeBookingCreated,
		TargetRoles: []Role{RoleAdmin},
	})

	ev := recvOne(t, admin)
	if ev.Type != TypeBookingCreated {
		t.Fatalf("unexpected type %s", ev.Type)
	}

	select {
	case ev := <-pro.Events():
		t.Fatalf("professional must not see admin-only event, got %v", ev)
	default:
	}
}

func TestPublishDashboardsReachesBoth(t *testing.T) {
	hub := NewHub()
	admin := hub.Subscribe("admin-1", []Role{RoleAdmin})
	pro := hub.Subscribe("pro-1", []Role{RoleProfessional})

	hub.Publish(Event{Type: TypeBookingConfirmed, TargetRoles: Dashboards()})

	if recvOne(t, admin).Type != TypeBookingConfirmed {
		t.Fatal("admin missed dashboard event")
	}
	if recvOne(t, pro).Type != TypeBookingConfirmed {
		t.Fatal("professional missed dashboard event")
	}
}

func TestPublishFillsTimestamp(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("s1", []Role{RoleAdmin})

	hub.Publish(Event{Type: TypePaymentApproved, TargetRoles: []Role{RoleAdmin}})

	if recvOne(t, sub).Timestamp.IsZero() {
		t.Fatal("publish must stamp events")
	}
}

func TestOverflowClosesSubscriber(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe("slow", []Role{RoleAdmin})

	// Nobody drains the queue, so filling it plus one forces the drop.
	for i := 0; i <= defaultQueueSize; i++ {
		hub.Publish(Event{Type: TypeBookingCreated, TargetRoles: []Role{RoleAdmin}})
	}

	if hub.Subscribers() != 0 {
		t.Fatalf("overflowed subscriber should be removed, have %d", hub.Subscribers())
	}

	// The queued events drain, then the closed channel shows through.
	for i := 0; i < defaultQueueSize; i++ {
		recvOne(t, slow)
	}
	assertClosed(t, slow)
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	hub.Subscribe("stuck", []Role{RoleAdmin})

	done := make(chan struct{})
	go func() {
		for i := 0; i < defaultQueueSize*3; i++ {
			hub.Publish(Event{Type: TypeBookingCreated, TargetRoles: []Role{RoleAdmin}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("s1", []Role{RoleProfessional})

	hub.Unsubscribe("s1")

	assertClosed(t, sub)
	if hub.Subscribers() != 0 {
		t.Fatal("subscriber still registered after unsubscribe")
	}

	// Unsubscribing twice is harmless.
	hub.Unsubscribe("s1")
}

func TestResubscribeReplacesConnection(t *testing.T) {
	hub := NewHub()
	old := hub.Subscribe("conn", []Role{RoleAdmin})
	fresh := hub.Subscribe("conn", []Role{RoleAdmin})

	assertClosed(t, old)

	hub.Publish(Event{Type: TypeBookingDeleted, TargetRoles: []Role{RoleAdmin}})
	if recvOne(t, fresh).Type != TypeBookingDeleted {
		t.Fatal("replacement subscriber missed event")
	}
}
