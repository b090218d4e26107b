package db

import (
	"database/sql"
	"fmt"
	"log"

	"mipastel-pos/internal/config"

	_ "github.com/lib/pq"
)

func InitDB(cfg *config.Config) *sql.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	if err = EnsureSchema(db); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	log.Println("Database connection established")
	return db
}

// EnsureSchema creates the cart snapshot table on first run. One row per
// order kind, mirroring the two storage keys the cart was persisted under
// historically.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cart_snapshots (
			kind TEXT PRIMARY KEY,
			items JSONB NOT NULL DEFAULT '[]',
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure cart_snapshots table: %w", err)
	}
	return nil
}
