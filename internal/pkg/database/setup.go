package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/TokenFox/app/models"
	"github.com/ManuelReschke/TokenFox/internal/pkg/config"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// Setup connects to the configured database, retrying MySQL while the server
// comes up, and migrates the schema.
func Setup(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if debug {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	attempts := 1
	if cfg.Driver == config.DriverMySQL {
		attempts = maxRetries
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < attempts; i++ {
		db, err = Open(cfg, gormCfg)
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, attempts, err)
		if i < attempts-1 {
			log.Printf("Retry in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("Connected to %s database", cfg.Driver)
	return db, nil
}

// Open opens the database without touching the schema.
func Open(cfg config.DatabaseConfig, gormCfg *gorm.Config) (*gorm.DB, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		return gorm.Open(mysql.New(mysql.Config{
			DSN:                       cfg.MySQLDSN(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), gormCfg)
	case config.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(SQLiteDSN(cfg.Path)), gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite allows one writer; serialize through a single connection
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// SQLiteDSN turns a file path into a DSN with a busy timeout and foreign
// keys enabled. Paths already written as "file:" URIs are used unchanged.
func SQLiteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_busy_timeout=5000&_foreign_keys=on"
}

// Migrate creates or updates the tables of the login flow.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ProviderAccount{},
		&models.TokenRecord{},
	)
}
