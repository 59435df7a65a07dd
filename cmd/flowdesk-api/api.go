// Package main provides the Flowdesk API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/facilityops/flowdesk/pkg/editor"
	"github.com/facilityops/flowdesk/pkg/eventbus"
	"github.com/facilityops/flowdesk/pkg/events"
	"github.com/facilityops/flowdesk/pkg/otelhelper"
	"github.com/facilityops/flowdesk/pkg/persistence"
	"github.com/facilityops/flowdesk/pkg/services"
	"github.com/facilityops/flowdesk/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	validate    *validator.Validate
	tracer      trace.Tracer
	acyclic     bool

	workflowService *services.Workflow
	sessions        *editor.Sessions
}

type Option func(*API)

func WithTracer(tracer trace.Tracer) Option {
	return func(a *API) {
		a.tracer = tracer
	}
}

func WithAcyclicGraphs(enabled bool) Option {
	return func(a *API) {
		a.acyclic = enabled
	}
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	opts ...Option,
) *API {
	a := &API{
		persistence: persistence,
		logger:      logger,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		tracer:      otelhelper.NoopTracer(),
	}

	for _, opt := range opts {
		opt(a)
	}

	serviceOpts := []services.Option{
		services.WithEventPublisher(eventBus),
		services.WithTracer(a.tracer),
		services.WithLogger(logger.With("component", "workflow_service")),
	}
	if a.acyclic {
		serviceOpts = append(serviceOpts, services.WithAcyclicGraphs())
	}

	a.workflowService = services.NewWorkflow(persistence, serviceOpts...)
	a.sessions = editor.NewSessions(a.workflowService)

	return a
}

// WorkflowService is the single writer of the workflow collection.
func (a *API) WorkflowService() *services.Workflow {
	return a.workflowService
}

// WatchChanges logs every workflow change event received from the event bus.
func (a *API) WatchChanges(ctx context.Context) error {
	eventTypes := []events.EventType{
		events.WorkflowCreatedEvent,
		events.WorkflowUpdatedEvent,
		events.NodeAddedEvent,
		events.NodeUpdatedEvent,
		events.NodeMovedEvent,
		events.ConnectionAddedEvent,
		events.ConnectionRemovedEvent,
	}

	for _, eventType := range eventTypes {
		err := a.eventBus.Handle(eventType, func(ctx context.Context, event any) error {
			a.logger.DebugContext(ctx, "Workflow changed", "event_type", eventType, "event", event)

			return nil
		})
		if err != nil {
			return err
		}
	}

	return a.eventBus.Subscribe(ctx)
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.workflowService, a.sessions, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowdesk API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
