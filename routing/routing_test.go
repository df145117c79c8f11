package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddClientAndLookup(t *testing.T) {
	cr := NewClientRegistry()
	require.Equal(t, 0, cr.Len())

	cr.AddClient("alpha", "openai", map[string]any{"model": "gpt-4o"})
	cr.AddClient("beta", "anthropic", map[string]any{"model": "claude-3-5-sonnet"})
	require.Equal(t, 2, cr.Len())

	c, ok := cr.Client("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", c.Name)
	assert.Equal(t, "openai", c.Provider)
	assert.Equal(t, "gpt-4o", c.Options["model"])

	_, ok = cr.Client("gamma")
	assert.False(t, ok)
}

func TestAddClientReplaceKeepsPosition(t *testing.T) {
	cr := NewClientRegistry()
	cr.AddClient("alpha", "openai", map[string]any{"model": "gpt-4o"})
	cr.AddClient("beta", "anthropic", nil)
	cr.AddClient("alpha", "openai-generic", map[string]any{"model": "llama3"})

	require.Equal(t, 2, cr.Len())

	clients := cr.Clients()
	require.Len(t, clients, 2)
	assert.Equal(t, "alpha", clients[0].Name)
	assert.Equal(t, "openai-generic", clients[0].Provider)
	assert.Equal(t, "beta", clients[1].Name)
}

func TestPrimarySelection(t *testing.T) {
	cr := NewClientRegistry()

	_, ok := cr.Primary()
	assert.False(t, ok, "empty registry has no primary")

	cr.AddClient(DefaultClientName, "openai", map[string]any{"model": "gpt-4o"})
	cr.SetPrimary(DefaultClientName)

	assert.Equal(t, DefaultClientName, cr.PrimaryName())

	primary, ok := cr.Primary()
	require.True(t, ok)
	assert.Equal(t, "openai", primary.Provider)
}

func TestPrimaryUnregisteredName(t *testing.T) {
	cr := NewClientRegistry()
	cr.AddClient("alpha", "openai", nil)
	cr.SetPrimary("missing")

	assert.Equal(t, "missing", cr.PrimaryName())

	_, ok := cr.Primary()
	assert.False(t, ok)
}

func TestClientsRegistrationOrder(t *testing.T) {
	cr := NewClientRegistry()
	cr.AddClient("c", "openai", nil)
	cr.AddClient("a", "anthropic", nil)
	cr.AddClient("b", "azure-openai", nil)

	names := make([]string, 0, cr.Len())
	for _, c := range cr.Clients() {
		names = append(names, c.Name)
	}

	assert.Equal(t, []string{"c", "a", "b"}, names)
}
