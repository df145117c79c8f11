package core

import "github.com/hupe1980/magma/routing"

// Model is the view of a registered model the execution layer needs: its
// identifier and its projected routing configuration.
type Model interface {
	// ID returns the full provider/model identifier.
	ID() string

	// Routing projects the provider-routing configuration for this model.
	Routing() *routing.ClientRegistry
}

// Tool is the view of a registered tool the execution layer needs: its name
// and its rendered capability schema.
type Tool interface {
	// Name returns the unique tool name.
	Name() string

	// Schema renders the declarative capability schema for this tool.
	Schema() string
}
