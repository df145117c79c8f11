// Package magma provides a high-level façade for building stateful,
// graph-based LLM workflows. Most applications interact with this package
// by:
//  1. Constructing models and tools through their registering factories
//  2. Creating an Agent via New() with the default model and tool set
//  3. Adding nodes and edges, then compiling into a runnable graph
//
// Every node function added through an Agent runs inside an execution
// scope carrying the agent's model and tools; prompts called within the
// node resolve their configuration from that scope. The façade delegates
// graph construction and execution to the graph package while keeping
// setup ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a durable
// checkpointer and a structured logger.
package magma

import (
	"context"

	"github.com/hupe1980/magma/core"
	"github.com/hupe1980/magma/graph"
	"github.com/hupe1980/magma/internal/util"
	"github.com/hupe1980/magma/logging"
	"github.com/hupe1980/magma/model"
	"github.com/hupe1980/magma/observe"
	"github.com/hupe1980/magma/registry"
	"github.com/hupe1980/magma/tool"
)

// ValidationError represents construction-time validation failures.
type ValidationError = util.ValidationError

// Options configures the Agent.
type Options struct {
	// Registry holds the agent's components. Defaults to a fresh registry;
	// pass one explicitly to share components across agents.
	Registry *registry.Registry

	// Tools are made visible to prompts executed inside node functions.
	Tools []*tool.Tool

	// Logger receives orchestration progress (defaults to NoOp logger if nil).
	Logger logging.Logger

	// TraceSinks receive node span events on every compiled run, in
	// addition to any sink configured from the environment.
	TraceSinks []observe.TraceSink
}

// WithRegistry shares an existing registry.
func WithRegistry(reg *registry.Registry) func(*Options) {
	return func(o *Options) { o.Registry = reg }
}

// WithTools sets the tools visible inside node scopes.
func WithTools(tools ...*tool.Tool) func(*Options) {
	return func(o *Options) { o.Tools = append(o.Tools, tools...) }
}

// WithLogger sets the orchestration logger.
func WithLogger(logger logging.Logger) func(*Options) {
	return func(o *Options) { o.Logger = logger }
}

// WithTraceSinks attaches explicit trace sinks.
func WithTraceSinks(sinks ...observe.TraceSink) func(*Options) {
	return func(o *Options) { o.TraceSinks = append(o.TraceSinks, sinks...) }
}

// Agent is the primary orchestrator for building, configuring and running
// graph-based workflows bound to one model and tool set.
type Agent struct {
	model    *model.Model
	tools    []*tool.Tool
	registry *registry.Registry
	graph    *graph.StateGraph
	logger   logging.Logger
	sinks    []observe.TraceSink
}

// New creates an agent around its default model. Node functions added via
// AddNode observe {model, tools} as their execution scope.
func New(m *model.Model, optFns ...func(o *Options)) (*Agent, error) {
	if m == nil {
		return nil, &ValidationError{Field: "model", Message: "agent model must not be nil"}
	}

	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Registry == nil {
		opts.Registry = registry.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Agent{
		model:    m,
		tools:    append([]*tool.Tool(nil), opts.Tools...),
		registry: opts.Registry,
		graph:    graph.NewStateGraph(),
		logger:   opts.Logger,
		sinks:    opts.TraceSinks,
	}, nil
}

// Registry returns the registry backing this agent.
func (a *Agent) Registry() *registry.Registry { return a.registry }

// Model returns the agent's default model.
func (a *Agent) Model() *model.Model { return a.model }

// Tools returns a copy of the agent's tool set.
func (a *Agent) Tools() []*tool.Tool {
	return append([]*tool.Tool(nil), a.tools...)
}

// AddNode adds fn as a graph node, wrapped so the agent's execution scope
// is visible to everything fn calls.
func (a *Agent) AddNode(name string, fn graph.NodeFunc) error {
	if fn == nil {
		return a.graph.AddNode(name, nil)
	}
	return a.graph.AddNode(name, a.scoped(name, fn))
}

// AddEdge adds a direct edge between two nodes.
func (a *Agent) AddEdge(from, to string) error {
	return a.graph.AddEdge(from, to)
}

// AddConditionalEdges adds conditional edges from a node to others.
func (a *Agent) AddConditionalEdges(from string, cond graph.Condition, pathMap map[string]string) error {
	return a.graph.AddConditionalEdges(from, cond, pathMap)
}

// SetEntryPoint sets the starting node for the graph.
func (a *Agent) SetEntryPoint(name string) error {
	return a.graph.SetEntryPoint(name)
}

// Compile finalizes the graph and returns a runnable workflow.
//
// The agent's logger and explicit trace sinks are attached, plus the
// env-configured sink when tracing credentials are present in the
// environment; its absence changes nothing else. Caller options are
// applied last and may override logger and step budget.
func (a *Agent) Compile(optFns ...func(*graph.CompileOptions)) (*graph.Runnable, error) {
	base := []func(*graph.CompileOptions){
		graph.WithLogger(a.logger),
	}

	if len(a.sinks) > 0 {
		base = append(base, graph.WithTraceSinks(a.sinks...))
	}

	if sink, ok := observe.SinkFromEnv(a.logger); ok {
		a.logger.Info("trace credentials detected, enabling observability")
		base = append(base, graph.WithTraceSinks(sink))
	}

	return a.graph.Compile(append(base, optFns...)...)
}

// scoped wraps a node function so its context carries the agent's scope
// for exactly the duration of the call frame. The scope dies with the
// derived context on return, error and panic alike; the bookkeeping in the
// deferred teardown must never panic or replace the node's own outcome.
func (a *Agent) scoped(name string, fn graph.NodeFunc) graph.NodeFunc {
	return func(ctx context.Context, state graph.State) (graph.State, error) {
		scope := core.Scope{
			Model: a.model,
			Tools: a.scopeTools(),
		}

		defer func() {
			defer func() { _ = recover() }() // teardown failures are swallowed
			a.logger.Debug("node scope released", "node", name)
		}()

		return fn(core.WithScope(ctx, scope), state)
	}
}

func (a *Agent) scopeTools() []core.Tool {
	tools := make([]core.Tool, len(a.tools))
	for i, t := range a.tools {
		tools[i] = t
	}
	return tools
}
