package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/avi3tal/blueprint/internal/logger"
	"github.com/avi3tal/blueprint/internal/nodes"
	"github.com/avi3tal/blueprint/internal/schema"
	"github.com/avi3tal/blueprint/internal/status"
	"github.com/avi3tal/blueprint/internal/variables"
	"github.com/avi3tal/blueprint/pkg/types"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/avi3tal/blueprint/engine"

// Engine runs passes over graphs. One Engine can serve many graphs; a graph
// runs at most one pass at a time.
type Engine struct {
	config  types.Config
	log     *logger.Logger
	tracker *status.Tracker
	tracer  trace.Tracer
	meter   metric.Meter
	metrics *Metrics
}

type Option func(*Engine)

// WithConfig sets the pass configuration
func WithConfig(cfg types.Config) Option {
	return func(e *Engine) {
		e.config = cfg.Clone()
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithTracker sets the status tracker that observes node transitions
func WithTracker(t *status.Tracker) Option {
	return func(e *Engine) {
		e.tracker = t
	}
}

// WithTracerProvider sets the provider node spans are created from
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer(instrumentationName)
	}
}

// WithMeterProvider sets the provider pass and node metrics are recorded on
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Engine) {
		e.meter = mp.Meter(instrumentationName)
	}
}

func New(opt ...Option) *Engine {
	e := &Engine{
		config:  NewConfig(),
		log:     logger.Nop(),
		tracker: status.NewTracker(),
		tracer:  otel.Tracer(instrumentationName),
		meter:   otel.Meter(instrumentationName),
	}
	for _, o := range opt {
		o(e)
	}
	e.log = e.log.WithComponent("engine")

	m, err := NewMetrics(e.meter)
	if err != nil {
		e.log.Warn("metrics disabled", logger.Fields(logger.FieldError, err.Error()))
	}
	e.metrics = m
	return e
}

func (e *Engine) Config() types.Config { return e.config.Clone() }

func (e *Engine) Tracker() *status.Tracker { return e.tracker }

// OnStatusChange subscribes to node status transitions
func (e *Engine) OnStatusChange(l status.Listener) func() {
	return e.tracker.Subscribe(l)
}

// Run executes one pass over g starting at startID, or at the first ON_START
// node when startID is empty. Node failures end only their branch and are
// reported in the result. The returned error is set when the pass could not
// start or was aborted by cancellation, timeout or the step limit; the
// partial result is returned alongside it.
func (e *Engine) Run(ctx context.Context, g *graph.Graph, startID string, globals *variables.Store) (*PassResult, error) {
	if globals == nil {
		globals = variables.NewStore(nil)
	}
	if err := g.Acquire(); err != nil {
		return nil, errors.Wrapf(err, "run graph %s", g.ID())
	}
	defer g.Release()

	start, err := startNode(g, startID)
	if err != nil {
		return nil, err
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.config.Timeout)*time.Second)
		defer cancel()
	}

	g.ResetRuntime()
	ids := make([]string, 0)
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	e.tracker.Reset(g.ID(), ids...)

	p := newPass(PassIDFromContext(ctx), g, start, globals, e.config)
	log := e.log.WithFields(logger.Fields(logger.FieldGraphID, g.ID(), logger.FieldPassID, p.id))

	ctx, span := e.passSpan(ctx, p)
	defer span.End()

	log.Info("pass started", logger.Fields("start_node", start))
	runErr := e.execute(ctx, p, start, true, nil)
	if runErr != nil && !isFatal(runErr) {
		// the start node failed on its own; that is recorded as a node failure
		runErr = nil
	}
	res := p.result(runErr)
	endSpan(span, runErr)
	e.metrics.recordPass(ctx, passOutcome(res), res.Duration)

	fields := logger.MergeWithDuration(logger.Fields("steps", res.Steps, "failures", len(res.Failures)), res.Duration)
	if runErr != nil {
		fields[logger.FieldError] = runErr.Error()
		log.Error("pass aborted", fields)
		return res, runErr
	}
	log.Info("pass finished", fields)
	return res, nil
}

func passOutcome(res *PassResult) string {
	switch {
	case res.Aborted != "":
		return "aborted"
	case res.Failed():
		return "failed"
	default:
		return "completed"
	}
}

func startNode(g *graph.Graph, startID string) (string, error) {
	if startID == "" {
		id, ok := g.FindByType(nodes.TypeOnStart)
		if !ok {
			return "", errors.Wrapf(ErrNoStartNode, "graph %s has no %s node", g.ID(), nodes.TypeOnStart)
		}
		return id, nil
	}
	if _, ok := g.Node(startID); !ok {
		return "", errors.Wrapf(ErrNoStartNode, "node %s does not exist", startID)
	}
	return startID, nil
}

// execute runs one node. fr is the memo scope of the caller when a pure
// node is evaluated for a consumer, nil for control flow.
func (e *Engine) execute(ctx context.Context, p *pass, id string, triggerOutputs bool, fr *frame) error {
	if err := p.step(ctx); err != nil {
		return err
	}
	node, ok := p.graph.Node(id)
	if !ok {
		return errors.Wrapf(graph.ErrNodeNotFound, "execute %s", id)
	}

	ctx, span := e.nodeSpan(ctx, p, node)
	defer span.End()
	e.metrics.recordNode(ctx, node.TypeID)

	e.setStatus(p, id, types.StatusRunning)

	sch, err := p.graph.Registry().Get(node.TypeID)
	if err != nil {
		return e.fail(ctx, p, node, nil, span, err)
	}
	if fr == nil {
		fr = p.frame()
	}

	inputs, err := e.resolveInputs(ctx, p, fr, node)
	p.graph.SetInputs(id, inputs)
	if err != nil {
		return e.fail(ctx, p, node, inputs, span, err)
	}

	if sch.Loop != nil {
		err = e.runLoop(ctx, p, node, sch, inputs, triggerOutputs)
	} else {
		err = e.runOnce(ctx, p, node, sch, inputs, triggerOutputs)
	}
	if err != nil {
		return e.fail(ctx, p, node, inputs, span, err)
	}

	e.setStatus(p, id, types.StatusCompleted)
	endSpan(span, nil)
	return nil
}

func (e *Engine) runOnce(ctx context.Context, p *pass, node graph.Node, sch *schema.NodeTypeSchema, inputs schema.Values, triggerOutputs bool) error {
	triggered := make(map[string]bool)
	published := schema.Values{}

	hooks := e.hooks(p, node, sch, triggerOutputs, triggered)
	hooks.SetOutputs = func(values schema.Values) {
		for k, v := range values {
			published[k] = v
		}
		p.graph.MergeOutputs(node.ID, values)
		p.markProduced(node.ID)
	}

	inv := schema.NewInvocation(node.ID, node.TypeID, node.Params, inputs, p.globals, hooks)
	out, err := invoke(ctx, sch.Behavior, inv)
	if err != nil {
		return err
	}
	for k, v := range out {
		published[k] = v
	}
	p.graph.SetOutputs(node.ID, published)
	p.markProduced(node.ID)

	if triggerOutputs && sch.ExecOutput(schema.DefaultExecPort) && !triggered[schema.DefaultExecPort] {
		return e.propagate(ctx, p, node.ID, schema.DefaultExecPort)
	}
	return nil
}

// invoke runs a behavior and turns a panic into an error, so the node fails
// like any other and its branch ends.
func invoke(ctx context.Context, b schema.Behavior, inv *schema.Invocation) (out schema.Values, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errors.Errorf("panic: %v", r)
		}
	}()
	return b.Execute(ctx, inv)
}

// hooks builds the Trigger and Print callbacks shared by single and looping runs
func (e *Engine) hooks(p *pass, node graph.Node, sch *schema.NodeTypeSchema, triggerOutputs bool, triggered map[string]bool) schema.Hooks {
	return schema.Hooks{
		Trigger: func(ctx context.Context, port string) error {
			if !sch.ExecOutput(port) {
				return fmt.Errorf("node %s has no exec output %q", node.ID, port)
			}
			triggered[port] = true
			if !triggerOutputs {
				return nil
			}
			return e.propagate(ctx, p, node.ID, port)
		},
		Print: func(value any) {
			line := p.print(node.ID, value)
			e.log.Info("console", logger.Fields(
				logger.FieldPassID, p.id,
				logger.FieldNodeID, line.NodeID,
				"value", line.Value,
			))
		},
	}
}

// propagate runs every node connected to an exec output, in edge order. A
// failed target ends its own branch only.
func (e *Engine) propagate(ctx context.Context, p *pass, nodeID, port string) error {
	for _, edge := range p.graph.EdgesFrom(nodeID, port) {
		if edge.Kind != graph.EdgeExec {
			continue
		}
		if err := e.execute(ctx, p, edge.Target, true, nil); err != nil && isFatal(err) {
			return err
		}
	}
	return nil
}

// fail marks a node as errored. Pass-level errors are returned as is, any
// other error becomes a NodeError recorded in the pass.
func (e *Engine) fail(ctx context.Context, p *pass, node graph.Node, inputs schema.Values, span trace.Span, err error) error {
	e.setStatus(p, node.ID, types.StatusError)
	endSpan(span, err)
	if isFatal(err) {
		return err
	}

	cause := err
	var nodeErr *NodeError
	if !errors.Is(err, ErrCyclicDependency) && !errors.As(err, &nodeErr) {
		cause = fmt.Errorf("%w: %w", ErrNodeExecutionFailure, err)
	}
	ne := &NodeError{
		NodeID: node.ID,
		TypeID: node.TypeID,
		Inputs: inputs.Clone(),
		Err:    cause,
	}
	p.recordFailure(ne)
	e.metrics.recordFailure(ctx, node.TypeID)

	e.log.Error("node failed", logger.Fields(
		logger.FieldPassID, p.id,
		logger.FieldNodeID, node.ID,
		logger.FieldNodeType, node.TypeID,
		logger.FieldInputs, ne.Inputs,
		logger.FieldError, err.Error(),
	))
	return ne
}

func (e *Engine) setStatus(p *pass, id string, s types.NodeStatus) {
	p.graph.SetStatus(id, s)
	e.tracker.Set(status.Change{PassID: p.id, GraphID: p.graph.ID(), NodeID: id, Status: s})
	if p.config.Debug {
		e.log.Debug("status", logger.Fields(logger.FieldPassID, p.id, logger.FieldNodeID, id, logger.FieldStatus, s))
	}
}
