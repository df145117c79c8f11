// Package routing defines the provider-routing value objects a model
// projects for the prompt-execution runtime: a set of named clients, one of
// which is marked as the active (primary) client.
package routing

// DefaultClientName is the fixed client name models use when projecting a
// routing configuration.
const DefaultClientName = "magma-client"

// ClientConfig describes one named client: the canonical provider serving
// it and the provider options it is invoked with (model name, credentials,
// endpoint overrides and the like).
type ClientConfig struct {
	Name     string
	Provider string
	Options  map[string]any
}

// ClientRegistry accumulates named clients and tracks which one is primary.
// It is a plain value object handed across the runtime boundary; it is not
// safe for concurrent mutation.
type ClientRegistry struct {
	clients map[string]ClientConfig
	order   []string
	primary string
}

// NewClientRegistry creates an empty ClientRegistry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{clients: make(map[string]ClientConfig)}
}

// AddClient registers a named client. Re-adding a name replaces its
// definition but keeps its original position.
func (cr *ClientRegistry) AddClient(name, provider string, options map[string]any) {
	if _, exists := cr.clients[name]; !exists {
		cr.order = append(cr.order, name)
	}
	cr.clients[name] = ClientConfig{Name: name, Provider: provider, Options: options}
}

// SetPrimary marks name as the active client.
func (cr *ClientRegistry) SetPrimary(name string) {
	cr.primary = name
}

// PrimaryName returns the name most recently passed to SetPrimary.
func (cr *ClientRegistry) PrimaryName() string {
	return cr.primary
}

// Primary returns the active client, if one has been set and registered.
func (cr *ClientRegistry) Primary() (ClientConfig, bool) {
	c, ok := cr.clients[cr.primary]
	return c, ok
}

// Client returns the client registered under name.
func (cr *ClientRegistry) Client(name string) (ClientConfig, bool) {
	c, ok := cr.clients[name]
	return c, ok
}

// Clients returns all clients in registration order.
func (cr *ClientRegistry) Clients() []ClientConfig {
	out := make([]ClientConfig, 0, len(cr.order))
	for _, name := range cr.order {
		out = append(out, cr.clients[name])
	}
	return out
}

// Len returns the number of registered clients.
func (cr *ClientRegistry) Len() int {
	return len(cr.clients)
}
