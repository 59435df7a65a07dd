package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/facilityops/flowdesk/pkg/channels/gochannel"
	"github.com/facilityops/flowdesk/pkg/eventbus"
	"github.com/facilityops/flowdesk/pkg/events"
	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/facilityops/flowdesk/pkg/persistence/memory"
	"github.com/facilityops/flowdesk/pkg/testutil"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestAPI(t *testing.T, opts ...Option) (*API, *eventbus.WatermillEventBus) {
	t.Helper()

	pub, sub := gochannel.CreateChannel(watermill.NopLogger{})
	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() { _ = bus.Close() })

	return NewAPI(slog.Default(), memory.NewPersistence(), bus, opts...), bus
}

func request(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func TestAPI_RootEndpoint(t *testing.T) {
	t.Parallel()

	api, _ := setupTestAPI(t)

	status, body := request(t, api.App(), http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Flowdesk API", string(body))
}

func TestAPI_HealthCheck(t *testing.T) {
	t.Parallel()

	api, _ := setupTestAPI(t)

	status, body := request(t, api.App(), http.MethodGet, "/livez", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", string(body))

	status, body = request(t, api.App(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "healthy")
}

func TestAPI_AcyclicOption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		acyclic        bool
		expectedStatus int
		expectedType   string
	}{
		{name: "cycles allowed by default", acyclic: false, expectedStatus: http.StatusCreated},
		{name: "cycles rejected when acyclic", acyclic: true, expectedStatus: http.StatusConflict, expectedType: "invalid_connection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api, _ := setupTestAPI(t, WithAcyclicGraphs(tt.acyclic))
			require.NoError(t, api.WorkflowService().Import(t.Context(), []*models.Workflow{
				testutil.CreateLinearWorkflow("wf", "A", "B", "C"),
			}))

			status, body := request(t, api.App(), http.MethodPost, "/workflows/wf/connections", map[string]string{
				"source": "C",
				"target": "A",
			})
			assert.Equal(t, tt.expectedStatus, status, string(body))

			if tt.expectedType != "" {
				assert.Contains(t, string(body), tt.expectedType)
			}
		})
	}
}

func TestAPI_PublishesChanges(t *testing.T) {
	t.Parallel()

	api, bus := setupTestAPI(t)

	received := make(chan *events.WorkflowCreated, 1)
	require.NoError(t, bus.Handle(events.WorkflowCreatedEvent, func(_ context.Context, event any) error {
		if created, ok := event.(*events.WorkflowCreated); ok {
			received <- created
		}

		return nil
	}))
	require.NoError(t, bus.Subscribe(t.Context()))

	status, body := request(t, api.App(), http.MethodPost, "/workflows", map[string]string{
		"name": "Roof Drain Heater",
		"type": "scheduled",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	select {
	case event := <-received:
		assert.Equal(t, "Roof Drain Heater", event.Workflow.Name)
		assert.Equal(t, events.WorkflowCreatedEvent, event.GetType())
	case <-time.After(5 * time.Second):
		t.Fatal("workflow.created event not received")
	}
}
