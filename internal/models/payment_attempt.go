package models

import "time"

type PaymentAttempt struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	AppointmentID uint `gorm:"index" json:"appointment_id"`

	Status string `gorm:"size:20;default:'pending'" json:"status"`

	// ProviderRef is the payment id on the provider side, used for status
	// polling. DetailCode carries the provider status_detail verbatim.
	ProviderRef string `gorm:"size:64" json:"provider_ref"`
	DetailCode  string `gorm:"size:64" json:"detail_code"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
