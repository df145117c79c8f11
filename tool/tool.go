// Package tool implements the capability subsystem of magma: named,
// schema-described functions that workflow nodes and prompts can invoke.
//
// Tools are constructed through registering factories: explicitly (New),
// from a documented function (FromFunc), by adapting a foreign tool
// representation (FromForeign), from a compiled plugin (FromPlugin), from a
// hub artifact (FromHub), or by wrapping a live remote endpoint
// (FromSpace). Every factory registers the tool into the supplied registry;
// a duplicate name is a hard failure, never an overwrite.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/magma/internal/util"
	"github.com/hupe1980/magma/registry"
	"github.com/hupe1980/magma/schema"
)

// Func is the signature of a tool's underlying callable. Arguments arrive
// as a name → value map.
type Func func(ctx context.Context, args map[string]any) (any, error)

// ValidationError represents construction-time validation failures.
type ValidationError = util.ValidationError

// Param declares one tool parameter: name, semantic type and description.
type Param struct {
	Name        string
	Type        schema.ParamType
	Description string
}

// Tool is an invocable capability: a name, an underlying callable, a
// human-readable description, and an ordered parameter list. Tools are
// immutable after construction and safe for concurrent use.
type Tool struct {
	name        string
	fn          Func
	description string
	params      []Param
}

// New constructs a Tool and registers it into reg's tool mapping under
// name. The declared parameter order is preserved in the projected schema.
// A taken name fails with *registry.DuplicateError.
func New(reg *registry.Registry, name string, fn Func, description string, params []Param) (*Tool, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "tool name must not be empty"}
	}
	if fn == nil {
		return nil, &ValidationError{Field: "func", Message: "tool func must not be nil"}
	}

	t := &Tool{
		name:        name,
		fn:          fn,
		description: description,
		params:      append([]Param(nil), params...),
	}

	if err := reg.Add(registry.KindTool, name, t); err != nil {
		return nil, err
	}

	return t, nil
}

// Name returns the unique tool name.
func (t *Tool) Name() string { return t.name }

// Description returns the human-readable description.
func (t *Tool) Description() string { return t.description }

// Params returns a copy of the declared parameters in order.
func (t *Tool) Params() []Param {
	return append([]Param(nil), t.params...)
}

// Invoke dispatches to the underlying callable.
//
// Two calling conventions are accepted: a single map[string]any argument is
// unpacked as the named-argument set (the workflow engine invokes tools
// with one state mapping), and plain positional arguments bind to the
// declared parameters in order. Failures from the callable propagate
// unmodified.
func (t *Tool) Invoke(ctx context.Context, args ...any) (any, error) {
	if len(args) == 1 {
		if m, ok := args[0].(map[string]any); ok {
			return t.fn(ctx, m)
		}
	}

	if len(args) > len(t.params) {
		return nil, &ValidationError{
			Field:   t.name,
			Value:   len(args),
			Message: fmt.Sprintf("too many positional arguments: got %d, declared %d", len(args), len(t.params)),
		}
	}

	named := make(map[string]any, len(args))
	for i, arg := range args {
		named[t.params[i].Name] = arg
	}

	return t.fn(ctx, named)
}

// Schema renders the declarative capability schema: a record named after
// the tool, annotated with the first line of the description, containing
// one field per parameter in declared order.
func (t *Tool) Schema() string {
	fields := make([]schema.Field, len(t.params))
	for i, p := range t.params {
		fields[i] = schema.Field{Name: p.Name, Type: p.Type, Description: p.Description}
	}
	return schema.Class(t.name, t.description, fields)
}
