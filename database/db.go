package database

import (
	"fmt"

	"parcel-delivery/config"
	"parcel-delivery/logger"
	log_model "parcel-delivery/models/log"
	"parcel-delivery/models/parcel"
	"parcel-delivery/models/payment"
	"parcel-delivery/models/rider"
	"parcel-delivery/models/tracking"
	"parcel-delivery/models/user"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB connects to PostgreSQL and brings the schema up to date. The
// returned handle is shared by every service and must be closed with Close
// on shutdown.
func InitDB(cfg config.Database) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Success("Successfully connected to the database")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Success("All migrations and indexes completed successfully")

	return db, nil
}

// Migrate creates or updates every table and the extra indexes.
func Migrate(db *gorm.DB) error {
	// Stage 1: accounts
	stage1Models := []interface{}{
		&user.User{},
		&rider.Rider{},
	}

	// Stage 2: parcels and their satellite records
	stage2Models := []interface{}{
		&parcel.Parcel{},
		&tracking.Event{},
		&payment.Payment{},
	}

	// Stage 3: request audit log
	stage3Models := []interface{}{
		&log_model.Log{},
	}

	for _, stage := range [][]interface{}{stage1Models, stage2Models, stage3Models} {
		for _, model := range stage {
			if err := db.AutoMigrate(model); err != nil {
				return fmt.Errorf("failed to migrate %T: %w", model, err)
			}
		}
	}

	return createIndexes(db)
}

// createIndexes adds indexes that struct tags cannot express.
func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name string
		sql  string
	}{
		{"idx_users_email_lower", "CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))"},
		{"idx_parcels_created_by_creation_date", "CREATE INDEX IF NOT EXISTS idx_parcels_created_by_creation_date ON parcels (created_by, creation_date)"},
		{"idx_payments_email_paid_at", "CREATE INDEX IF NOT EXISTS idx_payments_email_paid_at ON payments (email, paid_at)"},
		{"idx_tracking_events_tracking_id_timestamp", "CREATE INDEX IF NOT EXISTS idx_tracking_events_tracking_id_timestamp ON tracking_events (tracking_id, timestamp)"},
	}

	for _, index := range indexes {
		if err := db.Exec(index.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", index.name, err)
		}
	}
	return nil
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
