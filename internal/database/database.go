// Package database owns the read and write connection pools. The pools are
// constructed once at startup from config and handed to the repositories;
// nothing reaches for them through globals.
package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/neighborhood-library/api-service/internal/config"
	"github.com/neighborhood-library/api-service/internal/entities"
)

var (
	ErrMissingUser     = errors.New("DATABASE_USER environment variable must be set")
	ErrMissingPassword = errors.New("DATABASE_PASSWORD environment variable must be set")
)

// Database holds the two gorm handles. Read serves GET traffic and may point
// at a replica; Write always targets the primary and runs the migrations.
type Database struct {
	Read  *gorm.DB
	Write *gorm.DB
}

func New(cfg config.Database) (*Database, error) {
	if cfg.User == "" {
		return nil, ErrMissingUser
	}
	if cfg.Password == "" {
		return nil, ErrMissingPassword
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)

	write, err := open(postgres.Open(dsn), cfg.LogQueries)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to primary database: %w", err)
	}
	if err := configurePool(write, cfg.WriteMaxOpenConns, cfg.WriteMaxIdleConns, cfg); err != nil {
		return nil, err
	}

	if err := migrate(write); err != nil {
		return nil, err
	}

	read, err := open(postgres.Open(dsn), cfg.LogQueries)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to read database: %w", err)
	}
	if err := configurePool(read, cfg.ReadMaxOpenConns, cfg.ReadMaxIdleConns, cfg); err != nil {
		return nil, err
	}

	log.Printf("Database pools initialized (read: %d conns, write: %d conns)",
		cfg.ReadMaxOpenConns, cfg.WriteMaxOpenConns)

	return &Database{Read: read, Write: write}, nil
}

// NewSQLite opens a single sqlite handle serving as both pools. Used by the
// test suite and for credential-free local runs.
func NewSQLite(path string) (*Database, error) {
	db, err := open(sqlite.Open(path), false)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return &Database{Read: db, Write: db}, nil
}

func open(dialector gorm.Dialector, logQueries bool) (*gorm.DB, error) {
	logMode := logger.Warn
	if logQueries {
		logMode = logger.Info
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
}

func configurePool(db *gorm.DB, maxOpen, maxIdle int, cfg config.Database) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return nil
}

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.Book{},
		&entities.Member{},
		&entities.Borrowing{},
		&entities.User{},
		&entities.Testimonial{},
		&entities.Subscription{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Ping verifies the read pool is reachable.
func (d *Database) Ping() error {
	sqlDB, err := d.Read.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	if readDB, err := d.Read.DB(); err == nil {
		if d.Read != d.Write {
			if closeErr := readDB.Close(); closeErr != nil {
				return closeErr
			}
		}
	}
	writeDB, err := d.Write.DB()
	if err != nil {
		return err
	}
	return writeDB.Close()
}
