package telemetry_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/DanielPopoola/classbook/internal/config"
	"github.com/DanielPopoola/classbook/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	shutdown, err := telemetry.Init(context.Background(), config.TelemetryConfig{ServiceName: "classbook"}, "test", logger)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_WithEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	// The gRPC exporter connects lazily, so no collector is needed here.
	shutdown, err := telemetry.Init(context.Background(), config.TelemetryConfig{
		Endpoint:    "localhost:4317",
		ServiceName: "classbook",
	}, "test", logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
