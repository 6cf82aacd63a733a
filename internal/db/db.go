package db

import (
	"log"
	"time"

	"github.com/HorizonteApps/clinic-scheduler/internal/config"
	"github.com/HorizonteApps/clinic-scheduler/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Professional{},
		&models.Patient{},
		&models.WeeklyTemplate{},
		&models.DateOverride{},
		&models.Appointment{},
		&models.PaymentAttempt{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// Partial unique index: the double-booking guard. An insert racing an
	// existing active appointment for the same slot fails atomically with a
	// unique violation instead of relying on check-then-insert. Without this
	// index appointment creation has no conflict arbiter, so a failure here
	// (duplicate active rows after a restore, for one) must stop the server.
	if err := db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_slot
        ON appointments (professional_id, date, time)
        WHERE status NOT IN ('cancelled', 'no_show')
    `).Error; err != nil {
		log.Fatalf("failed to create uniq_active_slot index: %v", err)
	}

	return db
}
