// Package testhelpers provides a shared throwaway Postgres for integration
// tests.
package testhelpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/database"
)

var (
	setupOnce sync.Once
	sharedDB  *database.DB
	setupErr  error
)

// SharedDB returns a database backed by a containerized Postgres, started
// once per test binary with all migrations applied. Tests share the instance,
// so they must use distinct keys.
func SharedDB(t *testing.T) *database.DB {
	t.Helper()

	setupOnce.Do(func() {
		sharedDB, setupErr = startDatabase(context.Background())
	})
	if setupErr != nil {
		t.Fatalf("failed to start test database: %v", setupErr)
	}
	return sharedDB
}

func startDatabase(ctx context.Context) (*database.DB, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("directory_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, err
	}

	cfg := &database.Config{
		Host:     host,
		Port:     port.Int(),
		User:     "postgres",
		Password: "postgres",
		Name:     "directory_test",
		SSLMode:  "disable",
	}

	migrations, err := migrationsDir()
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(cfg, migrations, zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return database.NewConnection(ctx, cfg)
}

// migrationsDir walks up from the working directory until it finds the
// migrations folder at the repository root.
func migrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found above %s", dir)
		}
		dir = parent
	}
}
