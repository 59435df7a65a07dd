// Package seed loads sample workflow documents into the workflow store at start-up.
package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/viant/afs"
	_ "github.com/viant/afs/embed"
	"github.com/viant/afs/storage"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// SampleURL points at the bundled sample workflows.
const SampleURL = "embed:///sample/workflows.yaml"

//go:embed sample/*
var sampleFS embed.FS

//go:embed schema.json
var documentSchema string

var ErrInvalidDocument = errors.New("invalid seed document")

// Importer receives the decoded workflows.
type Importer interface {
	Import(ctx context.Context, workflows []*models.Workflow) error
}

// Document is the on-disk shape of a seed file. JSON documents are valid YAML,
// so a single decoder serves both.
type Document struct {
	Workflows []WorkflowEntry `yaml:"workflows" validate:"dive"`
}

type WorkflowEntry struct {
	ID            string      `yaml:"id"            validate:"required"`
	Name          string      `yaml:"name"          validate:"required"`
	Description   string      `yaml:"description"`
	Type          string      `yaml:"type"          validate:"required,oneof=scheduled manual conditional event-based"`
	Status        string      `yaml:"status"        validate:"required,oneof=active paused error draft"`
	Icon          string      `yaml:"icon"`
	LinkedSystems []string    `yaml:"linkedSystems"`
	Zones         []string    `yaml:"zones"`
	Schedule      string      `yaml:"schedule"`
	Cron          string      `yaml:"cron"`
	NextRun       *string     `yaml:"nextRun"`
	LastRun       *string     `yaml:"lastRun"`
	SuccessRate   *float64    `yaml:"successRate"   validate:"omitempty,min=0,max=100"`
	Nodes         []NodeEntry `yaml:"nodes"         validate:"unique=ID,dive"`
}

type NodeEntry struct {
	ID          string         `yaml:"id"    validate:"required"`
	Type        string         `yaml:"type"  validate:"required,oneof=trigger condition action"`
	Title       string         `yaml:"title"`
	Params      map[string]any `yaml:"params"`
	Position    PositionEntry  `yaml:"position"`
	Connections []string       `yaml:"connections"`
}

type PositionEntry struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Loader reads seed documents from any afs supported URL.
type Loader struct {
	fs       afs.Service
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Loader)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithClock overrides the time used to compute next run labels.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		l.now = now
	}
}

func NewLoader(fs afs.Service, opts ...Option) *Loader {
	l := &Loader{
		fs:       fs,
		validate: validator.New(),
		logger:   slog.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Seed loads the document at url and imports its workflows in document order.
func (l *Loader) Seed(ctx context.Context, importer Importer, url string) (int, error) {
	workflows, err := l.Load(ctx, url)
	if err != nil {
		return 0, err
	}

	if err := importer.Import(ctx, workflows); err != nil {
		return 0, fmt.Errorf("failed to import seed workflows: %w", err)
	}

	l.logger.InfoContext(ctx, "Seeded workflows", "url", url, "count", len(workflows))

	return len(workflows), nil
}

// Load downloads and decodes the document at url.
func (l *Loader) Load(ctx context.Context, url string) ([]*models.Workflow, error) {
	var options []storage.Option
	if strings.HasPrefix(url, "embed:") {
		options = append(options, &sampleFS)
	}

	data, err := l.fs.DownloadWithURL(ctx, url, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed document %s: %w", url, err)
	}

	return l.Decode(data)
}

// Decode validates a raw document and converts it into workflows.
func (l *Loader) Decode(data []byte) ([]*models.Workflow, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := l.validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	now := l.now()
	workflows := make([]*models.Workflow, 0, len(doc.Workflows))

	for _, entry := range doc.Workflows {
		workflow, err := entry.toModel(now)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func validateSchema(raw any) error {
	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	dataLoader := gojsonschema.NewGoLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if !result.Valid() {
		var messages []string
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(messages, "; "))
	}

	return nil
}

func (e WorkflowEntry) toModel(now time.Time) (*models.Workflow, error) {
	workflow := models.NewWorkflow(e.ID, e.Name, e.Description, models.WorkflowType(e.Type))
	workflow.Status = models.WorkflowStatus(e.Status)
	workflow.Icon = e.Icon
	workflow.LastRun = e.LastRun
	workflow.SuccessRate = e.SuccessRate
	workflow.NextRun = e.NextRun

	if e.LinkedSystems != nil {
		workflow.LinkedSystems = e.LinkedSystems
	}

	if e.Zones != nil {
		workflow.Zones = e.Zones
	}

	if e.Schedule != "" {
		workflow.Schedule = e.Schedule
	}

	// Active cron workflows without an explicit label show their next activation.
	if e.Cron != "" && workflow.NextRun == nil && workflow.IsActive() {
		label, err := models.NextRunLabel(e.Cron, now)
		if err != nil {
			return nil, fmt.Errorf("%w: workflow %s: %w", ErrInvalidDocument, e.ID, err)
		}

		workflow.NextRun = &label
	}

	for _, n := range e.Nodes {
		node := models.NewWorkflowNode(
			n.ID,
			models.NodeType(n.Type),
			n.Title,
			n.Params,
			models.Position{X: n.Position.X, Y: n.Position.Y},
		)

		for _, target := range n.Connections {
			if !node.ConnectsTo(target) {
				node.Connections = append(node.Connections, target)
			}
		}

		workflow.Nodes = append(workflow.Nodes, node)
	}

	return workflow, nil
}
