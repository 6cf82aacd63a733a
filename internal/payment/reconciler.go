package payment

import (
	"context"
	"log"
	"sync"
	"time"

	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/fanout"
	"github.com/HorizonteApps/clinic-scheduler/internal/models"
)

// Bookings is the slice of the booking orchestrator the reconciler drives:
// payment outcomes translate into appointment transitions.
type Bookings interface {
	Transition(
		ctx context.Context,
		appointmentID uint,
		target domain.Status,
		actorID *uint,
	) (*models.Appointment, error)
}

// AttemptStore persists payment attempts. Satisfied by the schedule
// repository.
type AttemptStore interface {
	GetPaymentAttempt(ctx context.Context, id string) (*models.PaymentAttempt, error)
	UpdatePaymentAttempt(ctx context.Context, pa *models.PaymentAttempt) error
}

// EventPayload is what payment events carry over the realtime channel.
type EventPayload struct {
	AppointmentID uint   `json:"appointment_id"`
	PaymentID     string `json:"payment_id"`
	Status        string `json:"status"`
	DetailCode    string `json:"detail_code,omitempty"`
}

type task struct {
	attemptID string
	cancel    context.CancelFunc
}

// Reconciler drives created-but-unpaid appointments to a terminal payment
// outcome. One goroutine per in-flight reconciliation, polling the provider
// on a fixed interval with a bounded attempt count, cancellable when the
// appointment is cancelled out from under it.
type Reconciler struct {
	attempts AttemptStore
	provider Provider
	hub      *fanout.Hub

	interval          time.Duration
	maxAttempts       int
	confirmOnApproval bool

	mu       sync.Mutex
	bookings Bookings
	tasks    map[uint]*task
}

func NewReconciler(
	attempts AttemptStore,
	provider Provider,
	hub *fanout.Hub,
	interval time.Duration,
	maxAttempts int,
	confirmOnApproval bool,
) *Reconciler {
	return &Reconciler{
		attempts:          attempts,
		provider:          provider,
		hub:               hub,
		interval:          interval,
		maxAttempts:       maxAttempts,
		confirmOnApproval: confirmOnApproval,
		tasks:             make(map[uint]*task),
	}
}

// BindBookings wires the orchestrator in after construction. The booking
// usecases and the reconciler reference each other, so one side binds late.
func (r *Reconciler) BindBookings(b Bookings) {
	r.mu.Lock()
	r.bookings = b
	r.mu.Unlock()
}

// Start registers a polling task for the appointment's payment attempt.
// Starting twice for the same appointment replaces the previous task.
func (r *Reconciler) Start(appointmentID uint, attemptID string, providerRef string) {
	ctx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	if prev, ok := r.tasks[appointmentID]; ok {
		prev.cancel()
	}
	r.tasks[appointmentID] = &task{attemptID: attemptID, cancel: cancel}
	r.mu.Unlock()

	go r.run(ctx, appointmentID, attemptID, providerRef)
}

// Abort stops an in-flight reconciliation, leaving the attempt pending, and
// reports whether there was one to stop. Used when the appointment is
// cancelled independently of payment.
func (r *Reconciler) Abort(appointmentID uint) bool {
	r.mu.Lock()
	t, ok := r.tasks[appointmentID]
	if ok {
		delete(r.tasks, appointmentID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	t.cancel()
	r.hub.Publish(fanout.Event{
		Type: fanout.TypePaymentReconciliationAborted,
		Payload: EventPayload{
			AppointmentID: appointmentID,
			PaymentID:     t.attemptID,
			Status:        string(domain.PaymentPending),
		},
		TargetRoles: fanout.Dashboards(),
	})
	return true
}

// Pending reports whether a reconciliation is in flight for the appointment.
func (r *Reconciler) Pending(appointmentID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[appointmentID]
	return ok
}

func (r *Reconciler) run(ctx context.Context, appointmentID uint, attemptID, providerRef string) {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			// Abort already published the event.
			return
		case <-time.After(r.interval):
		}

		res, err := r.provider.Status(ctx, providerRef)
		if err != nil {
			// Transient provider failure: consumes the attempt, not
			// surfaced. Exhaustion becomes PaymentUnresolved below.
			log.Printf("payment: poll %d/%d for appointment %d failed: %v",
				attempt, r.maxAttempts, appointmentID, err)
			continue
		}

		if res.Status.Terminal() {
			if r.claim(appointmentID) {
				r.Resolve(appointmentID, attemptID, res)
			}
			return
		}
	}

	if !r.claim(appointmentID) {
		return
	}

	// Attempts exhausted with the provider still pending: a fact requiring
	// manual follow-up, not an error.
	r.hub.Publish(fanout.Event{
		Type: fanout.TypePaymentUnresolved,
		Payload: EventPayload{
			AppointmentID: appointmentID,
			PaymentID:     attemptID,
			Status:        string(domain.PaymentPending),
		},
		TargetRoles: fanout.Dashboards(),
	})
}

// claim removes the task entry, returning false when an Abort got there
// first. Removing before resolving keeps the cancel path from firing a
// second outcome for the same attempt.
func (r *Reconciler) claim(appointmentID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[appointmentID]; !ok {
		return false
	}
	delete(r.tasks, appointmentID)
	return true
}

// Resolve applies a terminal provider result. Idempotent: a duplicate
// approval (or rejection) for an already-terminal attempt is a no-op.
func (r *Reconciler) Resolve(appointmentID uint, attemptID string, res Result) {
	ctx := context.Background()

	attempt, err := r.attempts.GetPaymentAttempt(ctx, attemptID)
	if err != nil {
		log.Printf("payment: load attempt %s: %v", attemptID, err)
		return
	}
	if domain.PaymentStatus(attempt.Status).Terminal() {
		return
	}

	attempt.Status = string(res.Status)
	attempt.DetailCode = res.DetailCode
	if err := r.attempts.UpdatePaymentAttempt(ctx, attempt); err != nil {
		log.Printf("payment: update attempt %s: %v", attemptID, err)
		return
	}

	switch res.Status {
	case domain.PaymentApproved:
		if r.confirmOnApproval {
			r.transition(ctx, appointmentID, domain.StatusConfirmed)
		}
		r.publish(fanout.TypePaymentApproved, appointmentID, attempt)

	case domain.PaymentRejected:
		r.transition(ctx, appointmentID, domain.StatusCancelled)
		r.publish(fanout.TypePaymentRejected, appointmentID, attempt)
	}
}

func (r *Reconciler) transition(ctx context.Context, appointmentID uint, target domain.Status) {
	r.mu.Lock()
	bookings := r.bookings
	r.mu.Unlock()

	if bookings == nil {
		return
	}
	if _, err := bookings.Transition(ctx, appointmentID, target, nil); err != nil {
		// The appointment may have moved on its own (e.g. admin cancel);
		// the payment outcome stands either way.
		log.Printf("payment: transition appointment %d to %s: %v", appointmentID, target, err)
	}
}

func (r *Reconciler) publish(eventType string, appointmentID uint, attempt *models.PaymentAttempt) {
	r.hub.Publish(fanout.Event{
		Type: eventType,
		Payload: EventPayload{
			AppointmentID: appointmentID,
			PaymentID:     attempt.ID,
			Status:        attempt.Status,
			DetailCode:    attempt.DetailCode,
		},
		TargetRoles: fanout.Dashboards(),
	})
}
