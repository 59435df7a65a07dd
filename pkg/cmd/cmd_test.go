package cmd

import (
	"log/slog"
	"testing"

	"github.com/facilityops/flowdesk/pkg/persistence/memory"
	"github.com/facilityops/flowdesk/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventBus(t *testing.T) {
	t.Parallel()

	bus, err := NewEventBus(EventBusMemory, slog.Default())
	require.NoError(t, err)
	require.NotNil(t, bus)
	require.NoError(t, bus.Close())

	_, err = NewEventBus("rabbitmq", slog.Default())
	require.Error(t, err)
}

func TestNewTracer_Disabled(t *testing.T) {
	t.Parallel()

	tracer, shutdown := NewTracer(t.Context(), false, slog.Default())
	require.NotNil(t, tracer)
	require.NoError(t, shutdown(t.Context()))
}

func TestSeedWorkflows(t *testing.T) {
	t.Parallel()

	service := services.NewWorkflow(memory.NewPersistence())

	require.NoError(t, SeedWorkflows(t.Context(), slog.Default(), service, ""))

	workflows, err := service.ListWorkflows(t.Context(), services.ListWorkflowsRequest{})
	require.NoError(t, err)
	assert.Empty(t, workflows)

	require.NoError(t, SeedWorkflows(t.Context(), slog.Default(), service, "sample"))

	workflows, err = service.ListWorkflows(t.Context(), services.ListWorkflowsRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, workflows)
}
