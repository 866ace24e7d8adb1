package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB owns the gorm connection pool and the schema.
type DB struct {
	db     *gorm.DB
	logger apt.Logger
	config *apt.Config
}

func NewDB(config *apt.Config, logger apt.Logger) *DB {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &DB{
		logger: logger,
		config: config,
	}
}

func (d *DB) Start(ctx context.Context) error {
	dsn, ok := d.config.GetString("db.postgres.dsn")
	if !ok || dsn == "" {
		return fmt.Errorf("db.postgres.dsn is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("cannot open PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("cannot get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("cannot ping PostgreSQL: %w", err)
	}

	if err := Migrate(db.WithContext(ctx)); err != nil {
		return err
	}

	d.db = db
	d.logger.Info("Connected to PostgreSQL")
	return nil
}

func (d *DB) Stop(ctx context.Context) error {
	if d.db == nil {
		return nil
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("cannot get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("cannot close PostgreSQL: %w", err)
	}
	d.logger.Info("Disconnected from PostgreSQL")
	return nil
}

func (d *DB) Gorm() *gorm.DB {
	return d.db
}

// Migrate creates or updates every dining table.
func Migrate(db *gorm.DB) error {
	models := []interface{}{
		&tableModel{},
		&orderModel{},
		&itemModel{},
		&paymentModel{},
		&menuModel{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("cannot migrate %T: %w", m, err)
		}
	}
	return nil
}
