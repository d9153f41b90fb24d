package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"progression/internal/config"
)

// DB représente la connection à la base de données
type DB struct {
	*sqlx.DB
	Config *config.DatabaseConfig
}

// NewConnection crée une nouvelle connection à la base de données
func NewConnection(cfg config.DatabaseConfig) (*DB, error) {
	dsn := cfg.GetDSN()

	// connection à la base de données
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configuration de la pool de connections
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Test de la connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.Name,
		"service":  "progression",
	}).Info("Connected to PostgreSQL database")

	return &DB{
		DB:     db,
		Config: &cfg,
	}, nil
}

// Close ferme la connection à la base de données
func (db *DB) Close() error {
	if db.DB != nil {
		logrus.Info("Closing progression database connection")
		return db.DB.Close()
	}
	return nil
}

// HealthCheck vérifie l'état de la base de données
func (db *DB) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("progression database health check failed: %w", err)
	}

	return nil
}
