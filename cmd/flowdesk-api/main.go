package main

import (
	"context"
	"os"

	"github.com/facilityops/flowdesk/pkg/cmd"
	"github.com/facilityops/flowdesk/pkg/log"
	"github.com/facilityops/flowdesk/pkg/persistence/memory"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "flowdesk-api",
		Usage:                 "Serve the facility workflow editor",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus for workflow change events (memory, kafka)",
				Value:   cmd.EventBusMemory,
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "seed-url",
				Usage:   "Workflow document to load at start-up (file://, mem://, ... or \"sample\")",
				Sources: cli.EnvVars("SEED_URL"),
			},
			&cli.BoolFlag{
				Name:    "acyclic",
				Usage:   "Reject connections that would close a cycle",
				Sources: cli.EnvVars("ACYCLIC_WORKFLOWS"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export OpenTelemetry traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_TRACING_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing Flowdesk API")

			persistence := memory.NewPersistence()

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			tracer, shutdown := cmd.NewTracer(ctx, command.Bool("tracing"), logger)

			defer func() {
				if err := shutdown(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
				}
			}()

			api := NewAPI(
				logger,
				persistence,
				eventBus,
				WithTracer(tracer),
				WithAcyclicGraphs(command.Bool("acyclic")),
			)

			if err := cmd.SeedWorkflows(ctx, logger, api.WorkflowService(), command.String("seed-url")); err != nil {
				return err
			}

			if err := api.WatchChanges(ctx); err != nil {
				return err
			}

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
