package fanout

import "time"

// Observer roles. Events carry the roles allowed to see them; a subscriber
// receives an event when its role set intersects the event's target roles.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleProfessional Role = "professional"
)

// Wire-level event types pushed over the realtime channel.
const (
	TypeBookingCreated   = "BookingCreated"
	TypeBookingConfirmed = "BookingConfirmed"
	TypeBookingCompleted = "BookingCompleted"
	TypeBookingCancelled = "BookingCancelled"
	TypeBookingNoShow    = "BookingNoShow"
	TypeBookingDeleted   = "BookingDeleted"

	TypePaymentApproved              = "PaymentApproved"
	TypePaymentRejected              = "PaymentRejected"
	TypePaymentUnresolved            = "PaymentUnresolved"
	TypePaymentReconciliationAborted = "PaymentReconciliationAborted"
)

type Event struct {
	Type        string    `json:"type"`
	Payload     any       `json:"payload"`
	Timestamp   time.Time `json:"timestamp"`
	TargetRoles []Role    `json:"-"`
}

// Dashboards is the default audience: admins plus the professional.
func Dashboards() []Role {
	return []Role{RoleAdmin, RoleProfessional}
}
