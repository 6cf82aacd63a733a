package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ProfessionalID uint         `json:"professional_id"`
	Professional   Professional `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"professional"`

	PatientID uint    `json:"patient_id"`
	Patient   Patient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"patient"`

	// Slot identity: calendar date plus clock time, both in the clinic
	// timezone. The partial unique index on (professional_id, date, time)
	// for active statuses lives in db.NewDB.
	Date string `gorm:"size:10;not null" json:"date"`
	Time string `gorm:"size:5;not null" json:"time"`

	DurationMinutes int `gorm:"default:30" json:"duration_minutes"`

	Status string `gorm:"size:20;default:'scheduled'" json:"status"`

	Price float64 `json:"price"`
	Notes string  `gorm:"size:255" json:"notes"`

	PaymentID *string `gorm:"size:36" json:"payment_id"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
