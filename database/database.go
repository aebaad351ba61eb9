package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	mysql2 "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sugawani/user-service/config"
	applog "github.com/sugawani/user-service/logger"
)

const maxRetries = 5

// OpenMySQL opens a gorm connection and waits until the server answers a ping.
// A handle that fails its ping is closed before the next attempt.
func OpenMySQL(ctx context.Context, cfg config.MySQLConfig, log *applog.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	err := backoff.Retry(func() error {
		var err error
		db, err = connect(ctx, cfg)
		if err != nil {
			log.Errorf(err, "failed to connect to mysql at %s:%d, retrying", cfg.Host, cfg.Port)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	log.Infof("connected to mysql at %s:%d", cfg.Host, cfg.Port)
	return db, nil
}

func connect(ctx context.Context, cfg config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql2.Open(cfg.DSN()), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		if db != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.Close()
			}
		}
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = pingOrClose(ctx, sqlDB); err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(time.Minute)
	return db, nil
}

type pingCloser interface {
	PingContext(ctx context.Context) error
	Close() error
}

func pingOrClose(ctx context.Context, p pingCloser) error {
	if err := p.PingContext(ctx); err != nil {
		p.Close()
		return err
	}
	return nil
}

// OpenSQLite opens the database at cfg.Path. An empty path gives a private
// in-memory database that lives as long as the returned handle.
func OpenSQLite(ctx context.Context, cfg config.SQLiteConfig) (*sql.DB, error) {
	path := cfg.Path
	inMemory := path == ""
	if inMemory {
		path = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	if inMemory {
		// the database is dropped once its last connection closes
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite %s: %w", path, err)
	}
	return db, nil
}
