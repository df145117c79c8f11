package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/magma/registry"
	"github.com/hupe1980/magma/schema"
)

// ErrForeignShape is returned by FromForeign when a foreign value exposes
// neither a structured Call nor a generic Run entry point.
var ErrForeignShape = errors.New("foreign tool exposes no callable entry point")

// Foreign is the minimal surface a foreign tool representation must expose
// to be adapted. Values additionally implement ForeignCaller or
// ForeignRunner for invocation, and optionally ForeignSchema for a
// structured parameter list.
type Foreign interface {
	Name() string
	Description() string
}

// ForeignCaller is the structured entry point: named arguments in, result out.
type ForeignCaller interface {
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ForeignRunner is the generic entry point for foreign tools that only
// expose a single text-in/text-out method.
type ForeignRunner interface {
	Run(ctx context.Context, input string) (string, error)
}

// ForeignSchema is implemented by foreign tools that publish their
// parameter schema.
type ForeignSchema interface {
	ArgumentFields() []schema.Field
}

// FromForeign adapts a foreign tool representation and registers it under
// the foreign name. The structured Call entry point is preferred; a
// Run-only tool receives the "input" argument when declared, otherwise the
// JSON encoding of the full argument map.
func FromForeign(reg *registry.Registry, ft Foreign) (*Tool, error) {
	var params []Param

	if fs, ok := ft.(ForeignSchema); ok {
		for _, f := range fs.ArgumentFields() {
			params = append(params, Param{Name: f.Name, Type: f.Type, Description: f.Description})
		}
	}

	fn, err := foreignFunc(ft)
	if err != nil {
		return nil, err
	}

	return New(reg, ft.Name(), fn, ft.Description(), params)
}

func foreignFunc(ft Foreign) (Func, error) {
	switch impl := ft.(type) {
	case ForeignCaller:
		return impl.Call, nil
	case ForeignRunner:
		return func(ctx context.Context, args map[string]any) (any, error) {
			input, err := runnerInput(args)
			if err != nil {
				return nil, err
			}
			return impl.Run(ctx, input)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrForeignShape, ft)
	}
}

func runnerInput(args map[string]any) (string, error) {
	if raw, ok := args["input"]; ok {
		if s, ok := raw.(string); ok {
			return s, nil
		}
	}

	if len(args) == 0 {
		return "", nil
	}

	encoded, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode foreign tool input: %w", err)
	}

	return string(encoded), nil
}
