package postgres

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/campushub/event-registration/config"

	_ "github.com/lib/pq"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username VARCHAR(64) UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'student',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			location VARCHAR(255) NOT NULL DEFAULT '',
			date TIMESTAMPTZ NOT NULL,
			max_capacity INTEGER NOT NULL CHECK (max_capacity >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS registrations (
			id TEXT PRIMARY KEY,
			student_id TEXT NOT NULL REFERENCES users(id),
			event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			registered_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (student_id, event_id)
		)`,

		`CREATE TABLE IF NOT EXISTS audit_log (
			id TEXT PRIMARY KEY,
			action VARCHAR(20) NOT NULL,
			registration_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_registrations_event_id ON registrations(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_registrations_student_id ON registrations(student_id)`,
		`CREATE INDEX IF NOT EXISTS idx_registrations_registered_at ON registrations(registered_at)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_log_occurred_at ON audit_log(occurred_at)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}
