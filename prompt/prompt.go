// Package prompt bridges workflow code and runtime-executable prompt
// functions. A Prompt wraps a runtime.Func; when called inside an active
// workflow node it resolves the execution scope from the context, projects
// the active model into a client registry and the active tools into a
// schema builder, and hands all three to the wrapped function.
package prompt

import (
	"context"
	"errors"
	"reflect"

	"github.com/hupe1980/magma/core"
	"github.com/hupe1980/magma/internal/util"
	"github.com/hupe1980/magma/registry"
	"github.com/hupe1980/magma/runtime"
	"github.com/hupe1980/magma/schema"
)

// ErrMissingContext is returned when a Prompt is called outside an active
// execution scope. The scope provides the model and tool configuration; a
// Prompt cannot run without it.
var ErrMissingContext = errors.New("prompt must be called from within an active execution scope")

// ErrInvalidModel is returned when the execution scope is present but its
// model slot does not carry a usable model.
var ErrInvalidModel = errors.New("execution scope is missing a valid model")

// ValidationError represents construction-time validation failures.
type ValidationError = util.ValidationError

// Options configures prompt construction.
type Options struct {
	// Name registers the prompt under this name. Empty means the prompt is
	// constructed unregistered; Register can attach it later.
	Name string
}

// WithName sets the registration name.
func WithName(name string) func(*Options) {
	return func(o *Options) { o.Name = name }
}

// Prompt wraps a runtime-executable function and executes it bound to the
// scope active at call time.
type Prompt struct {
	fn   runtime.Func
	name string
}

// New constructs a Prompt around fn. With a non-empty name option it is
// also registered into reg's prompt mapping; otherwise registration is
// deferred to the owning component.
func New(reg *registry.Registry, fn runtime.Func, optFns ...func(*Options)) (*Prompt, error) {
	if fn == nil {
		return nil, &ValidationError{Field: "fn", Message: "prompt function must not be nil"}
	}

	opts := Options{}
	for _, optFn := range optFns {
		optFn(&opts)
	}

	p := &Prompt{fn: fn, name: opts.Name}

	if opts.Name != "" {
		if err := reg.Add(registry.KindPrompt, opts.Name, p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Register registers an unnamed prompt under name.
func (p *Prompt) Register(reg *registry.Registry, name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "prompt name must not be empty"}
	}

	if err := reg.Add(registry.KindPrompt, name, p); err != nil {
		return err
	}

	p.name = name

	return nil
}

// Name returns the registration name, empty for unregistered prompts.
func (p *Prompt) Name() string { return p.name }

// Call executes the prompt bound to the scope carried by ctx.
//
// No scope means the prompt was called outside a workflow node and fails
// with ErrMissingContext regardless of the prompt's own configuration.
func (p *Prompt) Call(ctx context.Context, args map[string]any) (any, error) {
	scope, ok := core.ScopeFrom(ctx)
	if !ok {
		return nil, ErrMissingContext
	}

	return p.ExecuteWithContext(ctx, scope.Model, scope.Tools, args)
}

// ExecuteWithContext runs the wrapped function bound to an explicit model
// and tool set. This is the path the orchestrator uses; Call resolves the
// same material from the context scope.
func (p *Prompt) ExecuteWithContext(ctx context.Context, m core.Model, tools []core.Tool, args map[string]any) (any, error) {
	if !validModel(m) {
		return nil, ErrInvalidModel
	}

	clientRegistry := m.Routing()

	typeBuilder := schema.NewBuilder()
	for _, t := range tools {
		typeBuilder.Add(t.Schema())
	}

	opts := runtime.Options{
		ClientRegistry: clientRegistry,
		TypeBuilder:    typeBuilder,
	}

	return p.fn(ctx, args, opts)
}

// validModel guards against both nil interfaces and interfaces wrapping a
// nil pointer, which would pass a plain == nil check and panic later.
func validModel(m core.Model) bool {
	if m == nil {
		return false
	}

	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !v.IsNil()
	default:
		return true
	}
}
