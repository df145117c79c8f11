// Package runtime defines the execution boundary between prompts and the
// function runtime that renders and runs them. The orchestration core hands
// a resolved client registry and schema builder across this boundary; what
// happens on the far side (template rendering, model calls) is the runtime
// function's business.
package runtime

import (
	"context"

	"github.com/hupe1980/magma/routing"
	"github.com/hupe1980/magma/schema"
)

// Option keys under which the execution options travel when encoded for a
// runtime that takes a plain bag instead of the typed struct.
const (
	OptionClientRegistry = "client_registry"
	OptionTypeBuilder    = "tb"
)

// Options carries the per-call execution material a prompt resolves from
// its scope: the routing projection of the active model and the schema
// builder pre-loaded with the active tools.
type Options struct {
	ClientRegistry *routing.ClientRegistry `json:"client_registry"`
	TypeBuilder    *schema.Builder         `json:"tb"`
}

// Func is a runtime-executable prompt function.
type Func func(ctx context.Context, args map[string]any, opts Options) (any, error)
