package tool

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/magma/registry"
	"github.com/hupe1980/magma/schema"
)

// -------------------- Foreign Fixtures --------------------

type callerTool struct {
	lastArgs map[string]any
}

func (c *callerTool) Name() string        { return "web_search" }
func (c *callerTool) Description() string { return "Searches the web." }

func (c *callerTool) Call(_ context.Context, args map[string]any) (any, error) {
	c.lastArgs = args
	return "results", nil
}

func (c *callerTool) ArgumentFields() []schema.Field {
	return []schema.Field{
		{Name: "query", Type: schema.TypeString, Description: "The search query"},
		{Name: "limit", Type: schema.TypeInt, Description: ""},
	}
}

type runnerTool struct {
	lastInput string
}

func (r *runnerTool) Name() string        { return "legacy_runner" }
func (r *runnerTool) Description() string { return "Runs text through a legacy tool." }

func (r *runnerTool) Run(_ context.Context, input string) (string, error) {
	r.lastInput = input
	return "ran: " + input, nil
}

type inertTool struct{}

func (inertTool) Name() string        { return "inert" }
func (inertTool) Description() string { return "Exposes nothing callable." }

// -------------------- Tests --------------------

func TestFromForeignCallerWithSchema(t *testing.T) {
	reg := registry.New()
	ft := &callerTool{}

	tl, err := FromForeign(reg, ft)
	require.NoError(t, err)

	assert.Equal(t, "web_search", tl.Name())
	assert.Equal(t, "Searches the web.", tl.Description())

	params := tl.Params()
	require.Len(t, params, 2)
	assert.Equal(t, "query", params[0].Name)
	assert.Equal(t, "The search query", params[0].Description)
	assert.Equal(t, schema.TypeInt, params[1].Type)

	out, err := tl.Invoke(context.Background(), map[string]any{"query": "go", "limit": 3})
	require.NoError(t, err)
	assert.Equal(t, "results", out)
	assert.Equal(t, map[string]any{"query": "go", "limit": 3}, ft.lastArgs)

	got, ok := reg.Tools().Get("web_search")
	assert.True(t, ok)
	assert.Same(t, tl, got)
}

func TestFromForeignRunnerUsesInputArg(t *testing.T) {
	reg := registry.New()
	ft := &runnerTool{}

	tl, err := FromForeign(reg, ft)
	require.NoError(t, err)
	assert.Empty(t, tl.Params())

	out, err := tl.Invoke(context.Background(), map[string]any{"input": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "ran: hello", out)
	assert.Equal(t, "hello", ft.lastInput)
}

func TestFromForeignRunnerEncodesArgMap(t *testing.T) {
	reg := registry.New()
	ft := &runnerTool{}

	tl, err := FromForeign(reg, ft)
	require.NoError(t, err)

	_, err = tl.Invoke(context.Background(), map[string]any{"city": "Berlin"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(ft.lastInput, `"city"`))
	assert.True(t, strings.Contains(ft.lastInput, `"Berlin"`))
}

func TestFromForeignRunnerEmptyArgs(t *testing.T) {
	reg := registry.New()
	ft := &runnerTool{lastInput: "stale"}

	tl, err := FromForeign(reg, ft)
	require.NoError(t, err)

	_, err = tl.Invoke(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "", ft.lastInput)
}

func TestFromForeignUnsupportedShape(t *testing.T) {
	reg := registry.New()

	_, err := FromForeign(reg, inertTool{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForeignShape)
	assert.Equal(t, 0, reg.Tools().Len())
}
