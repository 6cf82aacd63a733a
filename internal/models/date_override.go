package models

import "time"

// DateOverride replaces the weekly template for its date in full: when a row
// exists for (professional, date) the template is not consulted at all.
type DateOverride struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ProfessionalID uint `gorm:"uniqueIndex:uniq_override_date" json:"professional_id"`

	Date string `gorm:"size:10;uniqueIndex:uniq_override_date" json:"date"`

	// Sorted, deduplicated "15:04" values.
	Times []string `gorm:"serializer:json;type:text" json:"times"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
