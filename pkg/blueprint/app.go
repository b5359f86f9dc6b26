package blueprint

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/avi3tal/blueprint/internal/engine"
	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/avi3tal/blueprint/internal/logger"
	"github.com/avi3tal/blueprint/internal/nodes"
	"github.com/avi3tal/blueprint/internal/projects"
	"github.com/avi3tal/blueprint/internal/schema"
	"github.com/avi3tal/blueprint/internal/status"
	"github.com/avi3tal/blueprint/pkg/types"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Callback is invoked after every pass.
type Callback interface {
	OnComplete(ctx context.Context, result *PassResult) error
	OnError(ctx context.Context, err error) error
}

// App bundles the node registry, the engine and the project store.
type App struct {
	registry *schema.Registry
	engine   *engine.Engine
	tracker  *status.Tracker
	store    projects.Store
	log      *logger.Logger
	callback Callback
	listener Listener

	config types.Config
	tp     trace.TracerProvider
	mp     metric.MeterProvider
}

// AppOption is a functional option that configures the App before finalizing.
type AppOption func(*App)

func WithCallback(cb Callback) AppOption {
	return func(a *App) {
		a.callback = cb
	}
}

func WithListener(l Listener) AppOption {
	return func(a *App) {
		a.listener = l
	}
}

func WithProjectStore(store projects.Store) AppOption {
	return func(a *App) {
		a.store = store
	}
}

func WithLogger(l *logger.Logger) AppOption {
	return func(a *App) {
		a.log = l
	}
}

// WithPassConfig sets the limits applied to every pass
func WithPassConfig(cfg types.Config) AppOption {
	return func(a *App) {
		a.config = cfg.Clone()
	}
}

func WithTracerProvider(tp trace.TracerProvider) AppOption {
	return func(a *App) {
		a.tp = tp
	}
}

// WithMeterProvider sets where pass and node metrics are recorded
func WithMeterProvider(mp metric.MeterProvider) AppOption {
	return func(a *App) {
		a.mp = mp
	}
}

func WithDebug() AppOption {
	return func(a *App) {
		a.config.Debug = true
	}
}

// NewApp creates an App with the built-in node kinds registered
func NewApp(opts ...AppOption) (*App, error) {
	app := &App{
		registry: schema.NewRegistry(),
		tracker:  status.NewTracker(),
		log:      logger.Nop(),
		config:   engine.NewConfig(),
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.store == nil {
		app.store = projects.NewMemoryStore()
	}

	if err := nodes.RegisterBuiltins(app.registry); err != nil {
		return nil, fmt.Errorf("NewApp: %w", err)
	}

	engineOpts := []engine.Option{
		engine.WithConfig(app.config),
		engine.WithLogger(app.log),
		engine.WithTracker(app.tracker),
	}
	if app.tp != nil {
		engineOpts = append(engineOpts, engine.WithTracerProvider(app.tp))
	}
	if app.mp != nil {
		engineOpts = append(engineOpts, engine.WithMeterProvider(app.mp))
	}
	app.engine = engine.New(engineOpts...)
	return app, nil
}

// RegisterNodeType adds a custom node kind
func (app *App) RegisterNodeType(s NodeTypeSchema) error {
	return app.registry.Register(s)
}

// NodeTypes lists every registered kind
func (app *App) NodeTypes() []*NodeTypeSchema {
	return app.registry.List()
}

func (app *App) Registry() *schema.Registry { return app.registry }

func (app *App) Projects() projects.Store { return app.store }

func (app *App) NewGraph(name string, opts ...graph.Option) *Graph {
	return graph.NewGraph(name, app.registry, opts...)
}

// LoadGraph builds a graph from a document
func (app *App) LoadGraph(name string, doc Document, opts ...graph.Option) (*Graph, error) {
	return graph.FromDocument(name, doc, app.registry, opts...)
}

// OnStatusChange subscribes to node status transitions of every pass the
// App runs. The returned function unsubscribes.
func (app *App) OnStatusChange(fn func(StatusChange)) func() {
	return app.tracker.Subscribe(fn)
}

// Run executes one pass. startID may be empty to start at the ON_START node.
// If the App has a callback set, OnComplete/OnError is called here.
func (app *App) Run(ctx context.Context, g *Graph, startID string, globals *Variables) (*PassResult, error) {
	res, err := app.engine.Run(ctx, g, startID, globals)
	if err != nil {
		if app.callback != nil {
			_ = app.callback.OnError(ctx, err)
		}
		return res, errors.Wrap(err, "run: pass failed")
	}
	if app.callback != nil {
		if cbErr := app.callback.OnComplete(ctx, res); cbErr != nil {
			return res, fmt.Errorf("run: callback OnComplete failed: %w", cbErr)
		}
	}
	return res, nil
}

// RunProject loads a stored project and runs it with the project's variables
func (app *App) RunProject(ctx context.Context, projectID, startID string) (*PassResult, error) {
	p, err := app.store.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.Graph == nil {
		return nil, errors.Wrapf(engine.ErrNoStartNode, "project %s has no graph", projectID)
	}
	g, err := app.LoadGraph(p.Name, *p.Graph, graph.WithID(p.ID))
	if err != nil {
		return nil, errors.Wrapf(err, "project %s", projectID)
	}
	return app.Run(ctx, g, startID, NewVariables(p.Variables))
}

// SeedDemo stores the sum demo as project id unless it already exists
func (app *App) SeedDemo(ctx context.Context, id string) (*projects.Project, error) {
	if p, err := app.store.Get(ctx, id); err == nil {
		return p, nil
	} else if !errors.Is(err, projects.ErrProjectNotFound) {
		return nil, err
	}

	g, vars, err := nodes.SumDemo(app.registry)
	if err != nil {
		return nil, err
	}
	if _, err := app.store.Create(ctx, id, "Sum demo"); err != nil {
		return nil, err
	}
	return app.store.SaveGraph(ctx, id, g.Document(), vars)
}
