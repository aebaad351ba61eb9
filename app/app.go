// Package app wires configuration, logging and the selected store into a UserService.
package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sugawani/user-service/config"
	"github.com/sugawani/user-service/database"
	"github.com/sugawani/user-service/logger"
	"github.com/sugawani/user-service/repository"
	"github.com/sugawani/user-service/service"
)

type App struct {
	Config  *config.Config
	Logger  *logger.Logger
	Service *service.UserService

	repo    repository.UserRepository
	closers []func() error
}

type Option func(*App)

// WithLogger replaces the stdout logger built from the config.
func WithLogger(l *logger.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Logger: logger.New(cfg.LogLevel, nil),
	}
	for _, opt := range opts {
		opt(a)
	}

	repo, err := a.openRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.repo = repo
	a.Service = service.NewUserService(repo, service.WithLogger(a.Logger))

	a.Logger.GetComponentLogger("app").Infof("user service ready on %s store", cfg.Store)
	return a, nil
}

func (a *App) openRepository(ctx context.Context) (repository.UserRepository, error) {
	log := a.Logger.GetComponentLogger("database")

	switch a.Config.Store {
	case config.StoreMemory:
		return repository.NewMemoryUserRepository(), nil

	case config.StoreMySQL:
		db, err := database.OpenMySQL(ctx, a.Config.MySQL, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, gormCloser(db))
		return repository.NewGormUserRepository(db), nil

	case config.StoreSQLite:
		db, err := database.OpenSQLite(ctx, a.Config.SQLite)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		repo := repository.NewSQLUserRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown store %q", a.Config.Store)
	}
}

// Repository exposes the store behind the service.
func (a *App) Repository() repository.UserRepository {
	return a.repo
}

func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func gormCloser(db *gorm.DB) func() error {
	return func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
}
