package tool

import (
	"errors"
	"fmt"
	"net/http"
	"plugin"

	"github.com/hupe1980/magma/registry"
)

// EntrySymbol is the fixed entry-point symbol a tool plugin must export.
const EntrySymbol = "NewTool"

// Factory is the signature the entry-point symbol must have. It receives
// the target registry and the construction kwargs and returns the
// registered tool.
type Factory = func(reg *registry.Registry, kwargs map[string]any) (*Tool, error)

// ErrUntrustedCode is returned by loaders that execute downloaded or
// user-supplied code when the explicit trust opt-in is missing. It is
// checked before any file or network access, so untrusted artifacts are
// never even fetched.
var ErrUntrustedCode = errors.New("loading executable tool code requires WithTrustCode(true)")

// NotFoundError reports a missing plugin entry point or remote endpoint.
type NotFoundError struct {
	Kind   string // "symbol" or "endpoint"
	Target string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no eligible %s %q found", e.Kind, e.Target)
}

// LoadOptions configures the code- and network-backed tool factories.
type LoadOptions struct {
	// TrustCode opts in to loading executable tool code (plugins, hub
	// artifacts). Off by default; code loading fails closed without it.
	TrustCode bool

	// HubBaseURL is the hub FromHub downloads artifacts from.
	HubBaseURL string

	// HTTPClient is used for hub downloads and space introspection.
	HTTPClient *http.Client
}

// WithTrustCode opts in to loading executable tool code.
func WithTrustCode(trust bool) func(*LoadOptions) {
	return func(o *LoadOptions) { o.TrustCode = trust }
}

// WithHubBaseURL overrides the default hub location.
func WithHubBaseURL(u string) func(*LoadOptions) {
	return func(o *LoadOptions) { o.HubBaseURL = u }
}

// WithHTTPClient overrides the HTTP client used for remote loading.
func WithHTTPClient(c *http.Client) func(*LoadOptions) {
	return func(o *LoadOptions) { o.HTTPClient = c }
}

func loadOptions(optFns []func(*LoadOptions)) LoadOptions {
	opts := LoadOptions{
		HubBaseURL: DefaultHubBaseURL,
		HTTPClient: http.DefaultClient,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.HubBaseURL == "" {
		opts.HubBaseURL = DefaultHubBaseURL
	}

	return opts
}

// symbolSource abstracts plugin symbol lookup so tests can substitute a
// fake loader.
type symbolSource interface {
	Lookup(name string) (plugin.Symbol, error)
}

var openPlugin = func(path string) (symbolSource, error) {
	return plugin.Open(path)
}

// FromPlugin loads a compiled tool plugin and hands construction to its
// exported NewTool entry point, which registers the tool itself.
//
// Plugins cross a trust boundary: without WithTrustCode(true) loading fails
// with ErrUntrustedCode before the file is touched. A plugin that does not
// export EntrySymbol with the Factory signature fails with *NotFoundError.
func FromPlugin(reg *registry.Registry, path string, kwargs map[string]any, optFns ...func(*LoadOptions)) (*Tool, error) {
	opts := loadOptions(optFns)
	if !opts.TrustCode {
		return nil, ErrUntrustedCode
	}

	p, err := openPlugin(path)
	if err != nil {
		return nil, fmt.Errorf("open tool plugin %s: %w", path, err)
	}

	sym, err := p.Lookup(EntrySymbol)
	if err != nil {
		return nil, &NotFoundError{Kind: "symbol", Target: EntrySymbol}
	}

	factory, ok := sym.(Factory)
	if !ok {
		return nil, &NotFoundError{Kind: "symbol", Target: EntrySymbol}
	}

	return factory(reg, kwargs)
}
