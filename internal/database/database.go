package database

import (
	"database/sql"
	"fmt"

	"order-dashboard/internal/config"
	"order-dashboard/internal/logger"

	_ "github.com/lib/pq"
)

// DB оборачивает пул соединений с базой данных
type DB struct {
	*sql.DB
}

// Connect создает подключение к PostgreSQL и проверяет его
func Connect(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Successfully connected to PostgreSQL")

	return &DB{DB: db}, nil
}

// Health проверяет доступность базы данных
func (db *DB) Health() error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database is not initialized")
	}
	return db.Ping()
}

// Close закрывает пул соединений
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}
