// Package graph implements the stateful workflow graph magma agents
// compile and run: named nodes transforming a shared state, connected by
// static or conditional edges, executed step by step until the terminal
// edge is reached.
package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/magma/logging"
	"github.com/hupe1980/magma/observe"
)

// End is the reserved terminal target. Edges pointing at End finish the run.
const End = "__end__"

// DefaultMaxSteps bounds a run when no explicit budget is configured,
// guarding against non-terminating cycles.
const DefaultMaxSteps = 100

// State is the shared workflow state. Nodes receive the full state and
// return a partial delta; deltas are merged into the state in execution
// order.
type State map[string]any

// NodeFunc is a workflow node: it observes the current state and returns a
// state delta.
type NodeFunc func(ctx context.Context, state State) (State, error)

// Condition routes a conditional edge: it observes the state and returns
// either a path-map key or, when no path map is supplied, the next node
// name directly.
type Condition func(ctx context.Context, state State) string

type conditionalEdge struct {
	cond    Condition
	pathMap map[string]string
}

// StateGraph accumulates nodes and edges before compilation. It is a
// builder; construction is not safe for concurrent use, the compiled
// Runnable is.
type StateGraph struct {
	nodes       map[string]NodeFunc
	edges       map[string]string
	conditional map[string]conditionalEdge
	entryPoint  string
}

// NewStateGraph creates an empty workflow graph.
func NewStateGraph() *StateGraph {
	return &StateGraph{
		nodes:       make(map[string]NodeFunc),
		edges:       make(map[string]string),
		conditional: make(map[string]conditionalEdge),
	}
}

// AddNode registers fn as a node under name.
func (g *StateGraph) AddNode(name string, fn NodeFunc) error {
	if name == "" {
		return errors.New("graph: node name must not be empty")
	}
	if name == End {
		return fmt.Errorf("graph: node name %q is reserved", End)
	}
	if fn == nil {
		return fmt.Errorf("graph: node %q must have a function", name)
	}
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("graph: node %q already exists", name)
	}

	g.nodes[name] = fn

	return nil
}

// AddEdge connects from to to unconditionally. End is a valid target and
// terminates the run.
func (g *StateGraph) AddEdge(from, to string) error {
	if from == End {
		return fmt.Errorf("graph: %q cannot have outgoing edges", End)
	}
	if from == "" || to == "" {
		return errors.New("graph: edge endpoints must not be empty")
	}
	if err := g.ensureNoOutgoing(from); err != nil {
		return err
	}

	g.edges[from] = to

	return nil
}

// AddConditionalEdges routes from through cond. With a path map, cond's
// result is resolved through it; without one, the result is used as the
// next node name directly.
func (g *StateGraph) AddConditionalEdges(from string, cond Condition, pathMap map[string]string) error {
	if from == End {
		return fmt.Errorf("graph: %q cannot have outgoing edges", End)
	}
	if from == "" {
		return errors.New("graph: edge endpoints must not be empty")
	}
	if cond == nil {
		return fmt.Errorf("graph: conditional edge from %q needs a condition", from)
	}
	if err := g.ensureNoOutgoing(from); err != nil {
		return err
	}

	g.conditional[from] = conditionalEdge{cond: cond, pathMap: pathMap}

	return nil
}

func (g *StateGraph) ensureNoOutgoing(from string) error {
	if _, exists := g.edges[from]; exists {
		return fmt.Errorf("graph: node %q already has an outgoing edge", from)
	}
	if _, exists := g.conditional[from]; exists {
		return fmt.Errorf("graph: node %q already has an outgoing edge", from)
	}
	return nil
}

// SetEntryPoint selects the node a run starts at.
func (g *StateGraph) SetEntryPoint(name string) error {
	if name == "" {
		return errors.New("graph: entry point must not be empty")
	}

	g.entryPoint = name

	return nil
}

// CompileOptions configures the compiled Runnable.
type CompileOptions struct {
	// Checkpointer persists run state after every executed node. Nil
	// disables checkpointing (and Resume).
	Checkpointer Checkpointer

	// TraceSinks receive node span events.
	TraceSinks []observe.TraceSink

	// Logger receives run progress. Defaults to NoOpLogger.
	Logger logging.Logger

	// MaxSteps bounds the number of executed nodes per run. Defaults to
	// DefaultMaxSteps.
	MaxSteps int
}

// WithCheckpointer enables run persistence.
func WithCheckpointer(cp Checkpointer) func(*CompileOptions) {
	return func(o *CompileOptions) { o.Checkpointer = cp }
}

// WithTraceSinks attaches span sinks.
func WithTraceSinks(sinks ...observe.TraceSink) func(*CompileOptions) {
	return func(o *CompileOptions) { o.TraceSinks = append(o.TraceSinks, sinks...) }
}

// WithLogger sets the run logger.
func WithLogger(logger logging.Logger) func(*CompileOptions) {
	return func(o *CompileOptions) { o.Logger = logger }
}

// WithMaxSteps overrides the step budget.
func WithMaxSteps(n int) func(*CompileOptions) {
	return func(o *CompileOptions) { o.MaxSteps = n }
}

// Compile validates the graph and freezes it into a Runnable.
//
// Validation requires: an entry point naming a known node; static edge
// endpoints known (End allowed as target); conditional path-map targets
// known; every node owning an outgoing edge, so runs terminate through an
// explicit edge to End.
func (g *StateGraph) Compile(optFns ...func(*CompileOptions)) (*Runnable, error) {
	if g.entryPoint == "" {
		return nil, errors.New("graph: entry point not set")
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("graph: entry point %q is not a node", g.entryPoint)
	}

	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("graph: edge from unknown node %q", from)
		}
		if to != End {
			if _, ok := g.nodes[to]; !ok {
				return nil, fmt.Errorf("graph: edge from %q targets unknown node %q", from, to)
			}
		}
	}

	for from, ce := range g.conditional {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("graph: conditional edge from unknown node %q", from)
		}
		for result, target := range ce.pathMap {
			if target != End {
				if _, ok := g.nodes[target]; !ok {
					return nil, fmt.Errorf("graph: conditional path %q from %q targets unknown node %q", result, from, target)
				}
			}
		}
	}

	for name := range g.nodes {
		if _, ok := g.edges[name]; ok {
			continue
		}
		if _, ok := g.conditional[name]; ok {
			continue
		}
		return nil, fmt.Errorf("graph: node %q has no outgoing edge", name)
	}

	opts := CompileOptions{
		Logger:   logging.NoOpLogger{},
		MaxSteps: DefaultMaxSteps,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}

	nodes := make(map[string]NodeFunc, len(g.nodes))
	for name, fn := range g.nodes {
		nodes[name] = fn
	}
	edges := make(map[string]string, len(g.edges))
	for from, to := range g.edges {
		edges[from] = to
	}
	conditional := make(map[string]conditionalEdge, len(g.conditional))
	for from, ce := range g.conditional {
		conditional[from] = ce
	}

	return &Runnable{
		nodes:        nodes,
		edges:        edges,
		conditional:  conditional,
		entryPoint:   g.entryPoint,
		checkpointer: opts.Checkpointer,
		sinks:        opts.TraceSinks,
		logger:       opts.Logger,
		maxSteps:     opts.MaxSteps,
	}, nil
}
