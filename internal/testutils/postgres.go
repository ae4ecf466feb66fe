// Package testutils starts disposable infrastructure for integration tests.
package testutils

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/noah-isme/bidportal-archiver/pkg/config"
	"github.com/noah-isme/bidportal-archiver/pkg/database"
)

// SetupPostgres returns a migrated database. TEST_DB_HOST points the tests at an
// existing server instead of starting a postgres:15 container.
func SetupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	cfg := config.DatabaseConfig{
		Host:     os.Getenv("TEST_DB_HOST"),
		Port:     5432,
		User:     "test",
		Password: "test",
		Name:     "bidportal",
		SSLMode:  "disable",
	}

	if cfg.Host == "" {
		req := testcontainers.ContainerRequest{
			Image: "postgres:15",
			Env: map[string]string{
				"POSTGRES_PASSWORD": cfg.Password,
				"POSTGRES_USER":     cfg.User,
				"POSTGRES_DB":       cfg.Name,
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		}
		pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			t.Fatalf("start postgres container: %v", err)
		}
		t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

		host, err := pg.Host(ctx)
		if err != nil {
			t.Fatalf("container host: %v", err)
		}
		port, err := pg.MappedPort(ctx, "5432")
		if err != nil {
			t.Fatalf("container port: %v", err)
		}
		cfg.Host = host
		cfg.Port = port.Int()
	} else if p, err := strconv.Atoi(os.Getenv("TEST_DB_PORT")); err == nil {
		cfg.Port = p
	}

	var (
		db  *sqlx.DB
		err error
	)
	for i := 0; i < 10; i++ {
		db, err = database.NewPostgres(ctx, cfg)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := database.Migrate(cfg); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
