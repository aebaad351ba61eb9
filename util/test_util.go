package util

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	tclog "github.com/testcontainers/testcontainers-go/log"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/sugawani/user-service/config"
	"github.com/sugawani/user-service/database"
	applog "github.com/sugawani/user-service/logger"
	"github.com/sugawani/user-service/models"
)

type LogConsumer struct {
	log *applog.Logger
}

// Accept forwards container output to the harness logger
func (lc *LogConsumer) Accept(l testcontainers.Log) {
	lc.log.Debug(string(l.Content))
}

type Util struct {
	N string

	// Verbose keeps the testcontainers library logs
	Verbose bool
}

func (u Util) newLogger() *applog.Logger {
	level := "info"
	if u.Verbose {
		level = "debug"
	}
	return applog.NewWithConsoleWriter(level).GetComponentLogger("testdb").With("name", u.N)
}

var (
	dbContainerName = "mysqldb"
	dbName          = "mysql"
	dbPort          = 3306
	dbPortNat       = nat.Port("3306/tcp")
	mysqlImage      = "mysql:8.0"
	flywayImage     = "flyway/flyway:10.17.1"
	migrationsDir   = "../migrations"
)

// NewTestDB starts MySQL and Flyway on a private network and returns a migrated connection.
// Setup failures panic since there is nothing a test can do about them.
func (u Util) NewTestDB(ctx context.Context) (*gorm.DB, func()) {
	db, _, cleanup := u.NewTestDBWithConfig(ctx)
	return db, cleanup
}

// NewTestDBWithConfig also returns the host-side connection settings, for callers
// that want to open their own handle.
func (u Util) NewTestDBWithConfig(ctx context.Context) (*gorm.DB, config.MySQLConfig, func()) {
	if !u.Verbose {
		SilenceTestcontainers()
	}

	var (
		containerNetwork *testcontainers.DockerNetwork
		err              error
	)
	err = backoff.Retry(func() error {
		containerNetwork, err = network.New(ctx)
		return err
	}, backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), 10))
	if err != nil {
		panic(err)
	}

	mysqlC, cleanupFunc, err := u.createMySQLContainer(ctx, containerNetwork.Name)
	if err != nil {
		panic(err)
	}

	if err = u.execFlywayContainer(ctx, containerNetwork.Name); err != nil {
		panic(err)
	}

	db, cfg, err := u.createDBConnection(ctx, mysqlC)
	if err != nil {
		panic(err)
	}
	cleanupF := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		cleanupFunc()
		if err = containerNetwork.Remove(ctx); err != nil {
			panic(err)
		}
	}

	return db, cfg, cleanupF
}

// SilenceTestcontainers drops the library's own progress logs.
func SilenceTestcontainers() {
	tclog.SetDefault(stdlog.New(io.Discard, "", 0))
}

// mysqlHostConfig keeps the data directory in memory so containers start and stop fast.
func mysqlHostConfig(hc *container.HostConfig) {
	if hc.Tmpfs == nil {
		hc.Tmpfs = map[string]string{}
	}
	hc.Tmpfs["/var/lib/mysql"] = "rw"
}

// CleanupUsers empties the users table between cases sharing a container.
func CleanupUsers(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error; err != nil {
		t.Fatal("failed to beforeCleanup", err)
	}
}

func (u Util) createMySQLContainer(ctx context.Context, networkName string) (testcontainers.Container, func(), error) {
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: mysqlImage,
			Env: map[string]string{
				"MYSQL_DATABASE":             dbName,
				"MYSQL_ALLOW_EMPTY_PASSWORD": "yes",
			},
			ExposedPorts:       []string{fmt.Sprintf("%d/tcp", dbPort)},
			HostConfigModifier: mysqlHostConfig,
			Networks:           []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {dbContainerName},
			},
			WaitingFor: wait.ForLog("port: 3306  MySQL Community Server"),
		},
		Started: true,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanupFunc := func() {
		if mysqlC.IsRunning() {
			if err = mysqlC.Terminate(ctx); err != nil {
				panic(err)
			}
		}
	}
	return mysqlC, cleanupFunc, nil
}

func (u Util) execFlywayContainer(ctx context.Context, networkName string) error {
	mysqlDBUrl := fmt.Sprintf("-url=jdbc:mysql://%s:%d/%s?allowPublicKeyRetrieval=true", dbContainerName, dbPort, dbName)
	flywayC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: flywayImage,
			Cmd: []string{
				mysqlDBUrl, "-user=root",
				"baseline", "-baselineVersion=0.0",
				"-locations=filesystem:/flyway", "-validateOnMigrate=false", "migrate"},
			Networks: []string{networkName},
			Files: []testcontainers.ContainerFile{
				{
					HostFilePath:      migrationsDir,
					ContainerFilePath: "/flyway/sql",
					FileMode:          0o644,
				},
			},
			WaitingFor: wait.ForLog("Successfully applied|No migration necessary").AsRegexp(),
			LogConsumerCfg: &testcontainers.LogConsumerConfig{
				Opts:      []testcontainers.LogProductionOption{testcontainers.WithLogProductionTimeout(10 * time.Second)},
				Consumers: []testcontainers.LogConsumer{&LogConsumer{log: u.newLogger()}},
			},
		},
		Started: true,
	})
	if err != nil {
		return err
	}

	defer func() {
		if err = flywayC.Terminate(ctx); err != nil {
			panic(err)
		}
	}()
	return err
}

func (u Util) createDBConnection(ctx context.Context, mysqlC testcontainers.Container) (*gorm.DB, config.MySQLConfig, error) {
	l := u.newLogger()

	host, err := mysqlC.Host(ctx)
	if err != nil {
		l.Errorf(err, "failed to get mysql host")
		return nil, config.MySQLConfig{}, err
	}
	port, err := mysqlC.MappedPort(ctx, dbPortNat)
	if err != nil {
		l.Errorf(err, "failed to get mysql port")
		return nil, config.MySQLConfig{}, err
	}
	cfg := config.MySQLConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "root",
		Database: dbName,
	}

	db, err := database.OpenMySQL(ctx, cfg, l)
	if err != nil {
		l.Errorf(err, "mysql connection max retry exceeded")
		return nil, config.MySQLConfig{}, err
	}
	return db, cfg, nil
}
