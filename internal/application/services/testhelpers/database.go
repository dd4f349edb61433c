package testhelpers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DanielPopoola/classbook/db"
	"github.com/DanielPopoola/classbook/internal/config"
	"github.com/DanielPopoola/classbook/internal/infrastructure/persistence/postgres"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgImage    = "postgres:16-alpine"
	pgUser     = "classbook"
	pgPassword = "classbook"
	pgDatabase = "classbook_test"
)

// Tables in truncation order. CASCADE covers the foreign keys but the
// list still names every table the suites write to.
var tables = []string{
	"outbox", "webhook_events", "class_attendance", "payments", "bookings",
	"enrollments", "classes", "customers", "instructors", "users",
}

// TestDatabase is a migrated Postgres running in a throwaway container.
type TestDatabase struct {
	Container testcontainers.Container
	DB        *postgres.DB
	Config    *config.DatabaseConfig
}

func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDatabase,
			},
			// The server logs readiness twice: once for the init run, once for real.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err, "start postgres container")

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		URL:             fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", pgUser, pgPassword, endpoint, pgDatabase),
		MaxOpenConns:    8,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}

	database, err := postgres.Connect(ctx, cfg, Logger())
	require.NoError(t, err, "connect to test database")

	applied, err := postgres.Migrate(ctx, database, db.Migrations, "migrations")
	require.NoError(t, err, "migrate test database")
	require.NotEmpty(t, applied)

	return &TestDatabase{Container: container, DB: database, Config: cfg}
}

func (td *TestDatabase) Cleanup(t *testing.T) {
	td.DB.Close()
	require.NoError(t, td.Container.Terminate(context.Background()))
}

func (td *TestDatabase) CleanTables(t *testing.T) {
	query := "TRUNCATE TABLE "
	for i, table := range tables {
		if i > 0 {
			query += ", "
		}
		query += table
	}
	_, err := td.DB.Pool.Exec(context.Background(), query+" RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

// Logger only lets errors through so suite output stays readable.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}
