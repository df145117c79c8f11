package model

import (
	"strings"

	"github.com/hupe1980/magma/internal/util"
	"github.com/hupe1980/magma/registry"
	"github.com/hupe1980/magma/routing"
)

// ValidationError reports a malformed model identifier.
type ValidationError = util.ValidationError

// providerNames maps provider tags onto the canonical provider names the
// prompt-execution runtime routes on. Tags absent from the table pass
// through unchanged.
var providerNames = map[string]string{
	"openai":      "openai",
	"anthropic":   "anthropic",
	"vertex_ai":   "vertex-ai",
	"azure":       "azure-openai",
	"google":      "google-ai",
	"ollama":      "openai-generic",
	"huggingface": "openai-generic",
}

// Options configures Model construction.
type Options struct {
	// Params is the open provider parameter bag (temperature, credentials,
	// endpoint overrides, ...).
	Params map[string]any
}

// WithParams merges params into the model's parameter bag.
func WithParams(params map[string]any) func(*Options) {
	return func(o *Options) {
		for k, v := range params {
			o.Params[k] = v
		}
	}
}

// WithParam sets a single provider parameter.
func WithParam(key string, value any) func(*Options) {
	return func(o *Options) { o.Params[key] = value }
}

// Model is a configured reference to a foundation-model endpoint. Immutable
// after construction.
type Model struct {
	id       string
	provider string
	name     string
	params   map[string]any
}

// New validates id, constructs the Model, and registers it into reg's model
// mapping under id. Construction and registration are atomic: on any error
// no registered model remains observable.
//
// The identifier must be provider/model with exactly one separator and both
// halves non-empty. Anything else fails with a *ValidationError before any
// registration happens. A duplicate id fails with *registry.DuplicateError.
func New(reg *registry.Registry, id string, optFns ...func(*Options)) (*Model, error) {
	opts := Options{Params: map[string]any{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	provider, name, err := splitID(id)
	if err != nil {
		return nil, err
	}

	params := make(map[string]any, len(opts.Params))
	for k, v := range opts.Params {
		params[k] = v
	}

	m := &Model{id: id, provider: provider, name: name, params: params}

	if err := reg.Add(registry.KindModel, id, m); err != nil {
		return nil, err
	}

	return m, nil
}

// splitID splits a provider/model identifier, rejecting malformed shapes.
func splitID(id string) (provider, name string, err error) {
	if strings.Count(id, "/") != 1 {
		return "", "", &ValidationError{
			Field:   "id",
			Value:   id,
			Message: "model id must have the form provider/model",
		}
	}

	provider, name, _ = strings.Cut(id, "/")
	if provider == "" || name == "" {
		return "", "", &ValidationError{
			Field:   "id",
			Value:   id,
			Message: "model id must have the form provider/model",
		}
	}

	return provider, name, nil
}

// ID returns the full provider/model identifier.
func (m *Model) ID() string { return m.id }

// Provider returns the raw provider tag (the half before the separator).
func (m *Model) Provider() string { return m.provider }

// ModelName returns the provider-specific model name (the half after the
// separator).
func (m *Model) ModelName() string { return m.name }

// Params returns a copy of the provider parameter bag.
func (m *Model) Params() map[string]any {
	params := make(map[string]any, len(m.params))
	for k, v := range m.params {
		params[k] = v
	}
	return params
}

// Routing projects the provider-routing configuration for this model: one
// client under routing.DefaultClientName, marked primary, carrying the
// canonical provider name and the parameter bag with the model field
// overwritten to the model name. Pure and deterministic; the Model itself
// is never mutated.
func (m *Model) Routing() *routing.ClientRegistry {
	provider, ok := providerNames[m.provider]
	if !ok {
		provider = m.provider
	}

	options := m.Params()
	options["model"] = m.name

	cr := routing.NewClientRegistry()
	cr.AddClient(routing.DefaultClientName, provider, options)
	cr.SetPrimary(routing.DefaultClientName)

	return cr
}
