package database

import (
	"fmt"
	"net/url"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ghg_inventory_backend/internals/configs"
	"ghg_inventory_backend/internals/helpers/logger"
)

var DB *gorm.DB

// BuildDSN assembles the postgres URL from DB_* env. statement_timeout matches
// the 5s HTTP guard in main.
func BuildDSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(configs.GetEnv("DB_USER"), configs.GetEnv("DB_PASSWORD")),
		Host:   configs.GetEnv("DB_HOST", "localhost") + ":" + configs.GetEnv("DB_PORT", "5432"),
		Path:   "/" + configs.GetEnv("DB_NAME"),
	}
	q := url.Values{}
	q.Set("sslmode", configs.GetEnv("DB_SSLMODE", "require"))
	q.Set("application_name", "ghg_inventory")
	q.Set("options", "-c statement_timeout=5000")
	u.RawQuery = q.Encode()
	return u.String()
}

func ConnectDB() error {
	logger.Sugar.Info("connecting to PostgreSQL...")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  BuildDSN(),
		PreferSimpleProtocol: true, // PgBouncer transaction pooling
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	DB = db
	logger.Sugar.Info("db connected")
	return nil
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		logger.Sugar.Warnf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(configs.GetEnvInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(configs.GetEnvInt("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func Ping() error {
	if DB == nil {
		return fmt.Errorf("db not initialised")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
