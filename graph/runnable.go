package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/magma/internal/util"
	"github.com/hupe1980/magma/logging"
	"github.com/hupe1980/magma/observe"
)

// Checkpointer persists run progress so interrupted runs can be resumed.
type Checkpointer interface {
	// Save stores cp, replacing any previous checkpoint for the same run.
	Save(ctx context.Context, cp Checkpoint) error

	// Load returns the latest checkpoint for runID; ok is false when none
	// exists.
	Load(ctx context.Context, runID string) (Checkpoint, bool, error)
}

// Checkpoint captures a run's position after one executed node: the merged
// state, the node that just ran and the node scheduled next.
type Checkpoint struct {
	RunID   string    `json:"run_id"`
	Step    int       `json:"step"`
	Node    string    `json:"node"`
	Next    string    `json:"next"`
	State   State     `json:"state"`
	SavedAt time.Time `json:"saved_at"`
}

// InvokeOptions configures a single run.
type InvokeOptions struct {
	// RunID identifies the run in checkpoints and traces. A UUID is
	// generated when empty.
	RunID string
}

// WithRunID pins the run identifier.
func WithRunID(id string) func(*InvokeOptions) {
	return func(o *InvokeOptions) { o.RunID = id }
}

// BatchOptions configures InvokeBatch.
type BatchOptions struct {
	// MaxConcurrency caps the number of runs in flight at once. Zero or
	// negative means no cap.
	MaxConcurrency int
}

// WithMaxConcurrency bounds how many batch runs execute concurrently.
func WithMaxConcurrency(n int) func(*BatchOptions) {
	return func(o *BatchOptions) { o.MaxConcurrency = n }
}

// Runnable is a compiled, immutable workflow graph. It is safe for
// concurrent use; every run owns its own state copy.
type Runnable struct {
	nodes        map[string]NodeFunc
	edges        map[string]string
	conditional  map[string]conditionalEdge
	entryPoint   string
	checkpointer Checkpointer
	sinks        []observe.TraceSink
	logger       logging.Logger
	maxSteps     int
}

// Invoke executes the graph from its entry point over a copy of initial
// and returns the final merged state.
func (r *Runnable) Invoke(ctx context.Context, initial State, optFns ...func(*InvokeOptions)) (State, error) {
	opts := InvokeOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.RunID == "" {
		opts.RunID = util.NewID()
	}

	return r.run(ctx, opts.RunID, r.entryPoint, cloneState(initial), 0)
}

// InvokeBatch executes one run per input concurrently and returns the final
// states in input order. The first failing run cancels the rest.
func (r *Runnable) InvokeBatch(ctx context.Context, inputs []State, optFns ...func(*BatchOptions)) ([]State, error) {
	opts := BatchOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	results := make([]State, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	if opts.MaxConcurrency > 0 {
		g.SetLimit(opts.MaxConcurrency)
	}

	for i, input := range inputs {
		g.Go(func() error {
			out, err := r.Invoke(ctx, input)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Resume continues a checkpointed run from the node scheduled after its
// last completed step. A run whose checkpoint already points at End returns
// its final state unchanged.
func (r *Runnable) Resume(ctx context.Context, runID string) (State, error) {
	if r.checkpointer == nil {
		return nil, errors.New("graph: resume requires a checkpointer")
	}

	cp, ok, err := r.checkpointer.Load(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("graph: no checkpoint for run %q", runID)
	}

	state := cloneState(cp.State)
	if cp.Next == End {
		return state, nil
	}

	return r.run(ctx, runID, cp.Next, state, cp.Step)
}

func (r *Runnable) run(ctx context.Context, runID, start string, state State, step int) (State, error) {
	current := start

	for current != End {
		if step >= r.maxSteps {
			return state, fmt.Errorf("graph: run %s exceeded the step budget of %d", runID, r.maxSteps)
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		fn, ok := r.nodes[current]
		if !ok {
			return state, fmt.Errorf("graph: run %s reached unknown node %q", runID, current)
		}

		for _, sink := range r.sinks {
			sink.NodeStart(ctx, runID, current)
		}

		startedAt := time.Now()
		delta, err := fn(ctx, state)
		elapsed := time.Since(startedAt)

		for _, sink := range r.sinks {
			sink.NodeEnd(ctx, runID, current, err, elapsed)
		}

		if err != nil {
			r.logger.Error("node failed", "run_id", runID, "node", current, "error", err)
			return state, fmt.Errorf("node %q: %w", current, err)
		}

		mergeState(state, delta)
		step++

		r.logger.Debug("node completed", "run_id", runID, "node", current, "step", step, "duration_ms", elapsed.Milliseconds())

		next, err := r.nextNode(ctx, current, state)
		if err != nil {
			return state, err
		}

		if r.checkpointer != nil {
			cp := Checkpoint{
				RunID:   runID,
				Step:    step,
				Node:    current,
				Next:    next,
				State:   cloneState(state),
				SavedAt: time.Now().UTC(),
			}
			if err := r.checkpointer.Save(ctx, cp); err != nil {
				return state, fmt.Errorf("save checkpoint: %w", err)
			}
		}

		current = next
	}

	r.logger.Info("graph run completed", "run_id", runID, "steps", step)

	return state, nil
}

func (r *Runnable) nextNode(ctx context.Context, current string, state State) (string, error) {
	if next, ok := r.edges[current]; ok {
		return next, nil
	}

	ce, ok := r.conditional[current]
	if !ok {
		return "", fmt.Errorf("graph: node %q has no outgoing edge", current)
	}

	result := ce.cond(ctx, state)

	target := result
	if ce.pathMap != nil {
		mapped, ok := ce.pathMap[result]
		if !ok {
			return "", fmt.Errorf("graph: condition result %q from node %q has no path mapping", result, current)
		}
		target = mapped
	}

	if target != End {
		if _, ok := r.nodes[target]; !ok {
			return "", fmt.Errorf("graph: conditional edge from %q targets unknown node %q", current, target)
		}
	}

	return target, nil
}

func mergeState(state, delta State) {
	for k, v := range delta {
		state[k] = v
	}
}

func cloneState(s State) State {
	clone := make(State, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}
