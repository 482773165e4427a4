package database

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"payment-gateway/infrastructure/config"
)

const schema = `
	CREATE TABLE IF NOT EXISTS payments (
		correlation_id UUID PRIMARY KEY,
		amount NUMERIC(10, 2) NOT NULL,
		requested_at TIMESTAMPTZ NOT NULL,
		processor VARCHAR(10) NOT NULL,
		status VARCHAR(10) NOT NULL,
		processed_at TIMESTAMPTZ,
		fee NUMERIC(10, 2)
	);
	CREATE INDEX IF NOT EXISTS idx_payments_summary
		ON payments (processor, requested_at) WHERE status = 'processed';`

func NewPostgres(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(time.Second * 15)

	if err = db.Ping(); err != nil {
		return nil, err
	}

	if _, err = db.Exec(schema); err != nil {
		return nil, err
	}

	log.Info().Msg("connected to PostgreSQL")
	return db, nil
}
