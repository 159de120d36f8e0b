package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/outboxrepo"
	"fulfillment/internal/adapters/out/postgres/taskrepo"
	"fulfillment/internal/adapters/out/postgres/trackingrepo"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "github.com/lib/pq"              // registers the "postgres" database/sql driver
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Driver names a registered database/sql driver.
type Driver string

const (
	// DriverPQ is lib/pq, the default.
	DriverPQ Driver = "postgres"
	// DriverPGX is pgx through its database/sql adapter.
	DriverPGX Driver = "pgx"
)

// ParseDriver accepts "postgres", "pq", "lib/pq" and "pgx". Empty selects lib/pq.
func ParseDriver(name string) (Driver, error) {
	switch name {
	case "", "postgres", "pq", "lib/pq":
		return DriverPQ, nil
	case "pgx":
		return DriverPGX, nil
	default:
		return "", fmt.Errorf("unknown database driver %q", name)
	}
}

// PoolConfig bounds the database/sql pool GORM runs on.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds a keyword/value connection string understood by both drivers.
func DSN(host, port, user, password, dbName, sslMode string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslMode)
}

// Open connects through driver and hands the pool to GORM.
// The connection is verified with a ping bounded by ctx.
func Open(ctx context.Context, driver Driver, dsn string, pool PoolConfig) (*gorm.DB, error) {
	if driver == "" {
		driver = DriverPQ
	}
	sqlDB, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	return db, nil
}

// DriverProfileDTO is the read model of driver profiles kept by the identity
// provider. This service only reads it to show who is delivering.
type DriverProfileDTO struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name  string    `gorm:"type:varchar(255);not null"`
	Phone string    `gorm:"type:varchar(32)"`
}

func (DriverProfileDTO) TableName() string {
	return "drivers"
}

// Migrate creates or updates the schema. It is safe to run on every start.
func Migrate(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)

	if err := tx.AutoMigrate(
		&orderrepo.OrderDTO{},
		&taskrepo.DriverTaskDTO{},
		&trackingrepo.TrackingLogDTO{},
		&outboxrepo.OutboxMessageDTO{},
		&DriverProfileDTO{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// At most one non-delivered task per order; delivered tasks are history.
	if err := tx.Exec(fmt.Sprintf(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_driver_tasks_active_order ON driver_tasks (order_id) WHERE status <> %d`,
		taskrepo.DeliveredStatusValue,
	)).Error; err != nil {
		return fmt.Errorf("create active task index: %w", err)
	}

	return nil
}
