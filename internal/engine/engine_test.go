package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/avi3tal/blueprint/internal/nodes"
	"github.com/avi3tal/blueprint/internal/schema"
	"github.com/avi3tal/blueprint/internal/status"
	"github.com/avi3tal/blueprint/internal/variables"
	"github.com/avi3tal/blueprint/pkg/types"
	"github.com/stretchr/testify/require"
)

//---------------------//
// Test node kinds     //
//---------------------//

const (
	typePass   = "PASS"
	typeFail   = "FAIL"
	typeRecord = "RECORD"
	typeEmit   = "EMIT"
	typeHook   = "HOOK"
)

// passThrough is a pure node copying "in" to "out"
func passThrough() schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID:       typePass,
		ValueInputs:  []schema.PortSpec{{Name: "in", Type: schema.TypeAny}},
		ValueOutputs: []schema.PortSpec{{Name: "out", Type: schema.TypeAny}},
		Behavior: schema.BehaviorFunc(func(_ context.Context, inv *schema.Invocation) (schema.Values, error) {
			return schema.Values{"out": inv.Inputs["in"]}, nil
		}),
	}
}

func failing() schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID:      typeFail,
		ValueInputs: []schema.PortSpec{{Name: "x", Type: schema.TypeAny}},
		ExecInputs:  []string{schema.DefaultExecPort},
		ExecOutputs: []string{schema.DefaultExecPort},
		Behavior: schema.BehaviorFunc(func(context.Context, *schema.Invocation) (schema.Values, error) {
			return nil, errors.New("boom")
		}),
	}
}

// recording captures the inputs of every call
func recording(calls *[]schema.Values) schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID:      typeRecord,
		ValueInputs: []schema.PortSpec{{Name: "x", Type: schema.TypeAny}},
		ExecInputs:  []string{schema.DefaultExecPort},
		ExecOutputs: []string{schema.DefaultExecPort},
		Behavior: schema.BehaviorFunc(func(_ context.Context, inv *schema.Invocation) (schema.Values, error) {
			*calls = append(*calls, inv.Inputs.Clone())
			return schema.Values{}, nil
		}),
	}
}

// emitting publishes its output before triggering explicitly
func emitting() schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID:       typeEmit,
		ValueOutputs: []schema.PortSpec{{Name: "v", Type: schema.TypeNumber}},
		ExecInputs:   []string{schema.DefaultExecPort},
		ExecOutputs:  []string{schema.DefaultExecPort},
		Behavior: schema.BehaviorFunc(func(ctx context.Context, inv *schema.Invocation) (schema.Values, error) {
			inv.SetOutputs(schema.Values{"v": 42})
			if err := inv.Trigger(ctx, schema.DefaultExecPort); err != nil {
				return nil, err
			}
			return schema.Values{"v": 42}, nil
		}),
	}
}

// hooked runs fn as its behavior
func hooked(fn func(ctx context.Context) error) schema.NodeTypeSchema {
	return schema.NodeTypeSchema{
		TypeID:      typeHook,
		ExecInputs:  []string{schema.DefaultExecPort},
		ExecOutputs: []string{schema.DefaultExecPort},
		Behavior: schema.BehaviorFunc(func(ctx context.Context, _ *schema.Invocation) (schema.Values, error) {
			return schema.Values{}, fn(ctx)
		}),
	}
}

func newRegistry(t *testing.T, extra ...schema.NodeTypeSchema) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, nodes.RegisterBuiltins(reg))
	for _, s := range extra {
		require.NoError(t, reg.Register(s))
	}
	return reg
}

func addNodes(t *testing.T, g *graph.Graph, ns ...graph.Node) {
	t.Helper()
	for _, n := range ns {
		_, err := g.AddNode(n)
		require.NoError(t, err)
	}
}

func addEdges(t *testing.T, g *graph.Graph, es ...graph.Edge) {
	t.Helper()
	for _, e := range es {
		_, err := g.AddEdge(e)
		require.NoError(t, err)
	}
}

func getter(id, variable string) graph.Node {
	return graph.NewNode(id, nodes.TypeVariableGetter, schema.Values{nodes.ParamVariable: variable})
}

func node(id, typeID string) graph.Node {
	return graph.NewNode(id, typeID, nil)
}

func edge(source, sourcePort, target, targetPort string) graph.Edge {
	return graph.NewEdge("", source, sourcePort, target, targetPort)
}

const def = schema.DefaultExecPort

//---------------------//
// Sum scenario        //
//---------------------//

func TestRun_SumDemo(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	g, vars, err := nodes.SumDemo(reg)
	require.NoError(t, err)
	globals := variables.NewStore(vars)

	res, err := New().Run(context.Background(), g, "", globals)
	require.NoError(t, err)
	require.False(t, res.Failed())
	require.NoError(t, res.Err())

	sum, _ := globals.Get("Sum")
	require.Equal(t, 15, sum)
	require.Equal(t, []any{15}, res.ConsoleValues())
	require.Equal(t, 15, res.Globals["Sum"])
	require.Equal(t, "onStart", res.StartNode)
	require.Equal(t, 20, res.Steps)

	for id, n := range res.Nodes {
		require.Equal(t, types.StatusCompleted, n.Status, id)
	}
	// last iteration stays cached
	require.Equal(t, 4, res.Nodes["forEach-1"].Outputs["index"])
	require.Equal(t, 5, res.Nodes["forEach-1"].Outputs["currentItem"])
}

func TestRun_SumDemoPassCache(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	g, vars, err := nodes.SumDemo(reg)
	require.NoError(t, err)
	globals := variables.NewStore(vars)

	e := New(WithConfig(NewConfig(WithPureCache(types.PureCachePass))))
	res, err := e.Run(context.Background(), g, "", globals)
	require.NoError(t, err)

	sum, _ := globals.Get("Sum")
	require.Equal(t, 5, sum)
	require.Equal(t, []any{5}, res.ConsoleValues())
}

func TestRun_PureOutputsIdempotent(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	g, vars, err := nodes.SumDemo(reg)
	require.NoError(t, err)
	e := New()

	first, err := e.Run(context.Background(), g, "", variables.NewStore(vars))
	require.NoError(t, err)
	second, err := e.Run(context.Background(), g, "", variables.NewStore(vars))
	require.NoError(t, err)

	require.Equal(t, first.Nodes["getter-values-1"].Outputs, second.Nodes["getter-values-1"].Outputs)
	require.Equal(t, first.Nodes["getter-sum-2"].Outputs, second.Nodes["getter-sum-2"].Outputs)
	require.Equal(t, first.ConsoleValues(), second.ConsoleValues())
	require.NotEqual(t, first.PassID, second.PassID)
}

func TestRun_ExplicitStartNode(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	g, vars, err := nodes.SumDemo(reg)
	require.NoError(t, err)

	res, err := New().Run(context.Background(), g, "consoleLog-1", variables.NewStore(vars))
	require.NoError(t, err)
	require.Equal(t, []any{0}, res.ConsoleValues())
	require.Equal(t, types.StatusIdle, res.Nodes["forEach-1"].Status)
	require.Equal(t, types.StatusCompleted, res.Nodes["getter-sum-2"].Status)
}

func TestRun_StatusTransitions(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	g, vars, err := nodes.SumDemo(reg)
	require.NoError(t, err)

	tracker := status.NewTracker()
	var mu sync.Mutex
	seen := map[string][]types.NodeStatus{}
	passes := map[string]bool{}
	tracker.Subscribe(func(c status.Change) {
		mu.Lock()
		defer mu.Unlock()
		seen[c.NodeID] = append(seen[c.NodeID], c.Status)
		passes[c.PassID+"/"+c.GraphID] = true
	})

	ctx := ContextWithPassID(context.Background(), "pass-1")
	res, err := New(WithTracker(tracker)).Run(ctx, g, "", variables.NewStore(vars))
	require.NoError(t, err)
	require.Equal(t, "pass-1", res.PassID)
	require.Equal(t, map[string]bool{"pass-1/" + g.ID(): true}, passes)

	require.Equal(t, []types.NodeStatus{types.StatusRunning, types.StatusCompleted}, seen["onStart"])
	require.Len(t, seen["add-1"], 10)
	for i := 0; i < 10; i += 2 {
		require.Equal(t, types.StatusRunning, seen["add-1"][i])
		require.Equal(t, types.StatusCompleted, seen["add-1"][i+1])
	}
	require.Equal(t, types.StatusCompleted, tracker.Status(g.ID(), "consoleLog-1"))
}

//---------------------//
// Resolution          //
//---------------------//

func TestRun_NoValueEdgesMeansEmptyInputs(t *testing.T) {
	t.Parallel()

	var calls []schema.Values
	reg := newRegistry(t, recording(&calls))
	g := graph.NewGraph("empty inputs", reg)
	addNodes(t, g, node("start", nodes.TypeOnStart), node("rec", typeRecord))
	addEdges(t, g, edge("start", def, "rec", def))

	res, err := New().Run(context.Background(), g, "", nil)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	require.Empty(t, calls[0])
	require.Empty(t, res.Nodes["rec"].Inputs)
}

func TestRun_UnexecutedFlowSourceYieldsNil(t *testing.T) {
	t.Parallel()

	var calls []schema.Values
	reg := newRegistry(t, recording(&calls))
	g := graph.NewGraph("nil input", reg)
	addNodes(t, g,
		node("start", nodes.TypeOnStart),
		node("rec", typeRecord),
		node("add", nodes.TypeAdd),
	)
	addEdges(t, g,
		edge("start", def, "rec", def),
		edge("add", "result", "rec", "x"),
	)

	_, err := New().Run(context.Background(), g, "", nil)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	v, ok := calls[0]["x"]
	require.True(t, ok)
	require.Nil(t, v)
}

func TestRun_TriggerSourceEvaluatedOnDemand(t *testing.T) {
	t.Parallel()

	var calls []schema.Values
	reg := newRegistry(t, recording(&calls), schema.NodeTypeSchema{
		TypeID:       "EVENT",
		ValueOutputs: []schema.PortSpec{{Name: "payload", Type: schema.TypeString}},
		ExecOutputs:  []string{def},
		Behavior: schema.BehaviorFunc(func(ctx context.Context, inv *schema.Invocation) (schema.Values, error) {
			if err := inv.Trigger(ctx, def); err != nil {
				return nil, err
			}
			return schema.Values{"payload": "ping"}, nil
		}),
	})
	g := graph.NewGraph("event source", reg)
	addNodes(t, g,
		node("start", nodes.TypeOnStart),
		node("evt", "EVENT"),
		node("log", nodes.TypeConsoleLog),
		node("rec", typeRecord),
	)
	addEdges(t, g,
		edge("start", def, "log", def),
		edge("evt", "payload", "log", "value"),
		edge("evt", def, "rec", def),
	)

	res, err := New().Run(context.Background(), g, "start", nil)
	require.NoError(t, err)
	require.Equal(t, []any{"ping"}, res.ConsoleValues())
	require.Equal(t, types.StatusCompleted, res.Nodes["evt"].Status)
	// exec outputs stay muted during on-demand evaluation
	require.Empty(t, calls)
	require.Equal(t, types.StatusIdle, res.Nodes["rec"].Status)
}

func TestRun_PureCycle(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, passThrough())
	g := graph.NewGraph("cycle", reg)
	addNodes(t, g,
		node("start", nodes.TypeOnStart),
		node("p1", typePass),
		node("p2", typePass),
		node("log", nodes.TypeConsoleLog),
	)
	addEdges(t, g,
		edge("start", def, "log", def),
		edge("p1", "out", "p2", "in"),
		edge("p2", "out", "p1", "in"),
		edge("p1", "out", "log", "value"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := New().Run(ctx, g, "", nil)
	require.NoError(t, err)
	require.True(t, res.Failed())
	require.ErrorIs(t, res.Err(), ErrCyclicDependency)

	failure, ok := res.Failure("log")
	require.True(t, ok)
	require.ErrorIs(t, failure, ErrCyclicDependency)
	require.Equal(t, types.StatusError, res.Nodes["log"].Status)
	require.Empty(t, res.Console)
}

func TestRun_FormatNode(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	g := graph.NewGraph("format", reg)
	addNodes(t, g,
		node("start", nodes.TypeOnStart),
		getter("name", "Name"),
		graph.NewNode("fmt", nodes.TypeFormat, schema.Values{nodes.ParamTemplate: "hello {{.value}}"}),
		node("log", nodes.TypeConsoleLog),
	)
	addEdges(t, g,
		edge("start", def, "log", def),
		edge("name", "value", "fmt", "value"),
		edge("fmt", "text", "log", "value"),
	)

	res, err := New().Run(context.Background(), g, "", variables.NewStore(map[string]any{"Name": "world"}))
	require.NoError(t, err)
	require.Equal(t, []any{"hello world"}, res.ConsoleValues())
}

//---------------------//
// Flow                //
//---------------------//

func TestRun_FailureStopsOnlyItsBranch(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, failing())
	g := graph.NewGraph("failure", reg)
	addNodes(t, g,
		node("start", nodes.TypeOnStart),
		getter("a", "A"),
		node("logA", nodes.TypeConsoleLog),
		node("fail", typeFail),
		node("logC", nodes.TypeConsoleLog),
		node("logB", nodes.TypeConsoleLog),
	)
	addEdges(t, g,
		edge("start", def, "logA", def),
		edge("start", def, "fail", def),
		edge("start", def, "logB", def),
		edge("fail", def, "logC", def),
		edge("a", "value", "logA", "value"),
		edge("a", "value", "fail", "x"),
		edge("a", "value", "logB", "value"),
	)

	res, err := New().Run(context.Background(), g, "", variables.NewStore(map[string]any{"A": "x"}))
	require.NoError(t, err)
	require.True(t, res.Failed())

	require.Equal(t, types.StatusCompleted, res.Nodes["logA"].Status)
	require.Equal(t, types.StatusError, res.Nodes["fail"].Status)
	require.Equal(t, types.StatusIdle, res.Nodes["logC"].Status)
	require.Equal(t, types.StatusCompleted, res.Nodes["logB"].Status)
	require.Equal(t, []any{"x", "x"}, res.ConsoleValues())

	failure, ok := res.Failure("fail")
	require.True(t, ok)
	require.ErrorIs(t, failure, ErrNodeExecutionFailure)
	require.Equal(t, typeFail, failure.TypeID)
	require.Equal(t, schema.Values{"x": "x"}, failure.Inputs)
	require.Equal(t, failure.Error(), res.Nodes["fail"].Error)
}

func TestRun_PanicStopsOnlyItsBranch(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, hooked(func(context.Context) error {
		var counts map[string]int
		counts["x"]++
		return nil
	}))
	tracker := status.NewTracker()
	g := graph.NewGraph("panic", reg)
	addNodes(t, g,
		node("start", nodes.TypeOnStart),
		getter("a", "A"),
		node("h", typeHook),
		node("after", nodes.TypeConsoleLog),
		node("log", nodes.TypeConsoleLog),
	)
	addEdges(t, g,
		edge("start", def, "h", def),
		edge("start", def, "log", def),
		edge("h", def, "after", def),
		edge("a", "value", "log", "value"),
	)

	res, err := New(WithTracker(tracker)).Run(context.Background(), g, "", variables.NewStore(map[string]any{"A": "ok"}))
	require.NoError(t, err)
	require.False(t, g.Locked())

	require.Equal(t, types.StatusError, res.Nodes["h"].Status)
	require.Equal(t, types.StatusError, tracker.Status(g.ID(), "h"))
	require.Equal(t, types.StatusIdle, res.Nodes["after"].Status)
	require.Equal(t, types.StatusCompleted, res.Nodes["log"].Status)
	require.Equal(t, []any{"ok"}, res.ConsoleValues())

	failure, ok := res.Failure("h")
	require.True(t, ok)
	require.ErrorIs(t, failure, ErrNodeExecutionFailure)
	require.Contains(t, failure.Error(), "panic")
}

func TestRun_PanicInLoopBody(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, schema.NodeTypeSchema{
		TypeID:      "EACH",
		ValueInputs: []schema.PortSpec{{Name: "array", Type: schema.TypeArray}},
		ValueOutputs: []schema.PortSpec{
			{Name: "index", Type: schema.TypeNumber},
			{Name: "item", Type: schema.TypeAny},
		},
		ExecInputs:  []string{def},
		ExecOutputs: []string{"iteration", "complete"},
		Loop: &schema.LoopSpec{
			ArrayInput:      "array",
			IndexOutput:     "index",
			ItemOutput:      "item",
			IterationOutput: "iteration",
			CompleteOutput:  "complete",
		},
		Behavior: schema.BehaviorFunc(func(_ context.Context, inv *schema.Invocation) (schema.Values, error) {
			if inv.Inputs["index"] == 1 {
				panic("bad element")
			}
			return schema.Values{"index": inv.Inputs["index"], "item": inv.Inputs["item"]}, nil
		}),
	})
	g := graph.NewGraph("loop panic", reg)
	addNodes(t, g,
		node("start", nodes.TypeOnStart),
		getter("values", "Values"),
		node("each", "EACH"),
		node("log", nodes.TypeConsoleLog),
	)
	addEdges(t, g,
		edge("start", def, "each", def),
		edge("values", "value", "each", "array"),
		edge("each", "iteration", "log", def),
		edge("each", "item", "log", "value"),
	)

	res, err := New().Run(context.Background(), g, "", variables.NewStore(map[string]any{"Values": []any{"a", "b", "c"}}))
	require.NoError(t, err)
	require.Equal(t, types.StatusError, res.Nodes["each"].Status)
	require.Equal(t, []any{"a"}, res.ConsoleValues())

	failure, ok := res.Failure("each")
	require.True(t, ok)
	require.ErrorContains(t, failure, "bad element")
}

func TestRun_ForEachRejectsNonArray(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	g, _, err := nodes.SumDemo(reg)
	require.NoError(t, err)

	res, err := New().Run(context.Background(), g, "", variables.NewStore(map[string]any{"Values": "abc", "Sum": 0}))
	require.NoError(t, err)
	require.Equal(t, types.StatusError, res.Nodes["forEach-1"].Status)
	require.Equal(t, types.StatusIdle, res.Nodes["add-1"].Status)
	require.ErrorIs(t, res.Err(), ErrNodeExecutionFailure)
}

func TestRun_ForEachEmptyArray(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	g, _, err := nodes.SumDemo(reg)
	require.NoError(t, err)

	res, err := New().Run(context.Background(), g, "", variables.NewStore(map[string]any{"Values": []int{}, "Sum": 7}))
	require.NoError(t, err)
	require.Equal(t, types.StatusIdle, res.Nodes["add-1"].Status)
	require.Equal(t, []any{7}, res.ConsoleValues())
}

func TestRun_BranchNode(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	g := graph.NewGraph("branch", reg)
	addNodes(t, g,
		node("start", nodes.TypeOnStart),
		getter("flag", "Flag"),
		getter("msg", "Msg"),
		node("branch", nodes.TypeBranch),
		node("yes", nodes.TypeConsoleLog),
		node("no", nodes.TypeConsoleLog),
	)
	addEdges(t, g,
		edge("start", def, "branch", def),
		edge("flag", "value", "branch", "condition"),
		edge("branch", "true", "yes", def),
		edge("branch", "false", "no", def),
		edge("msg", "value", "yes", "value"),
		edge("msg", "value", "no", "value"),
	)

	tests := []struct {
		name string
		flag any
		ran  string
		skip string
	}{
		{name: "true", flag: true, ran: "yes", skip: "no"},
		{name: "false", flag: false, ran: "no", skip: "yes"},
	}
	e := New()
	for _, tt := range tests {
		res, err := e.Run(context.Background(), g, "", variables.NewStore(map[string]any{"Flag": tt.flag, "Msg": tt.name}))
		require.NoError(t, err, tt.name)
		require.Equal(t, []any{tt.name}, res.ConsoleValues(), tt.name)
		require.Equal(t, types.StatusCompleted, res.Nodes[tt.ran].Status, tt.name)
		require.Equal(t, types.StatusIdle, res.Nodes[tt.skip].Status, tt.name)
	}
}

func TestRun_SetOutputsBeforeTrigger(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, emitting())
	g := graph.NewGraph("emit", reg)
	addNodes(t, g,
		node("start", nodes.TypeOnStart),
		node("emit", typeEmit),
		node("log", nodes.TypeConsoleLog),
	)
	addEdges(t, g,
		edge("start", def, "emit", def),
		edge("emit", def, "log", def),
		edge("emit", "v", "log", "value"),
	)

	res, err := New().Run(context.Background(), g, "", nil)
	require.NoError(t, err)
	// triggered once by the behavior, not again by the engine
	require.Equal(t, []any{42}, res.ConsoleValues())
}

//---------------------//
// Pass control        //
//---------------------//

func TestRun_NoStartNode(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	g := graph.NewGraph("no start", reg)
	addNodes(t, g, node("log", nodes.TypeConsoleLog))

	_, err := New().Run(context.Background(), g, "", nil)
	require.ErrorIs(t, err, ErrNoStartNode)

	_, err = New().Run(context.Background(), g, "missing", nil)
	require.ErrorIs(t, err, ErrNoStartNode)
	require.False(t, g.Locked())
}

func TestRun_GraphLockedDuringPass(t *testing.T) {
	t.Parallel()

	var g *graph.Graph
	var editErr, runErr error
	e := New()
	reg := newRegistry(t, hooked(func(ctx context.Context) error {
		_, editErr = g.AddNode(node("late", nodes.TypeConsoleLog))
		_, runErr = e.Run(ctx, g, "", nil)
		return nil
	}))
	g = graph.NewGraph("locked", reg)
	addNodes(t, g, node("start", nodes.TypeOnStart), node("hook", typeHook))
	addEdges(t, g, edge("start", def, "hook", def))

	res, err := e.Run(context.Background(), g, "", nil)
	require.NoError(t, err)
	require.False(t, res.Failed())
	require.ErrorIs(t, editErr, graph.ErrGraphLocked)
	require.ErrorIs(t, runErr, graph.ErrGraphLocked)

	require.False(t, g.Locked())
	_, err = g.AddNode(node("late", nodes.TypeConsoleLog))
	require.NoError(t, err)
}

func TestRun_Cancellation(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	g := graph.NewGraph("cancel", reg)
	addNodes(t, g,
		node("start", nodes.TypeOnStart),
		graph.NewNode("wait", nodes.TypeDelay, schema.Values{"ms": 5000}),
		node("log", nodes.TypeConsoleLog),
	)
	addEdges(t, g,
		edge("start", def, "wait", def),
		edge("wait", def, "log", def),
	)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	res, err := New().Run(ctx, g, "", nil)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	require.True(t, res.Failed())
	require.NotEmpty(t, res.Aborted)
	require.Equal(t, types.StatusIdle, res.Nodes["log"].Status)
	require.False(t, g.Locked())
}

func TestRun_Timeout(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	g := graph.NewGraph("timeout", reg)
	addNodes(t, g,
		node("start", nodes.TypeOnStart),
		graph.NewNode("wait", nodes.TypeDelay, schema.Values{"ms": 10000}),
	)
	addEdges(t, g, edge("start", def, "wait", def))

	e := New(WithConfig(NewConfig(WithTimeout(1))))
	_, err := e.Run(context.Background(), g, "", nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_MaxSteps(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	g := graph.NewGraph("loop forever", reg)
	addNodes(t, g,
		node("start", nodes.TypeOnStart),
		node("a", nodes.TypeConsoleLog),
		node("b", nodes.TypeConsoleLog),
	)
	addEdges(t, g,
		edge("start", def, "a", def),
		edge("a", def, "b", def),
		edge("b", def, "a", def),
	)

	e := New(WithConfig(NewConfig(WithMaxSteps(50))))
	res, err := e.Run(context.Background(), g, "", nil)
	require.ErrorIs(t, err, ErrMaxSteps)
	require.Len(t, res.Console, 49)
	require.False(t, g.Locked())
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	require.Equal(t, defaultMaxSteps, cfg.MaxSteps)
	require.Equal(t, types.PureCacheResolution, cfg.PureCache)
	require.False(t, cfg.Debug)

	cfg = NewConfig(WithMaxSteps(3), WithTimeout(9), WithPureCache(types.PureCachePass), WithDebug())
	require.Equal(t, types.Config{MaxSteps: 3, Timeout: 9, PureCache: types.PureCachePass, Debug: true}, cfg)
}

func TestToSlice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      any
		want    []any
		wantErr bool
	}{
		{name: "nil", in: nil, want: nil},
		{name: "any slice", in: []any{1, "a"}, want: []any{1, "a"}},
		{name: "typed slice", in: []int{1, 2}, want: []any{1, 2}},
		{name: "array", in: [2]string{"a", "b"}, want: []any{"a", "b"}},
		{name: "string", in: "abc", wantErr: true},
		{name: "map", in: map[string]any{}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := toSlice(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.want, got, tt.name)
	}
}
