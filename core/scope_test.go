package core

import (
	"context"
	"sync"
	"testing"

	"github.com/hupe1980/magma/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct{ id string }

func (m fakeModel) ID() string                       { return m.id }
func (m fakeModel) Routing() *routing.ClientRegistry { return routing.NewClientRegistry() }

type fakeTool struct{ name string }

func (t fakeTool) Name() string   { return t.name }
func (t fakeTool) Schema() string { return "class " + t.name + " @description(\"\") {\n}" }

func TestScopeAbsentByDefault(t *testing.T) {
	_, ok := ScopeFrom(context.Background())
	assert.False(t, ok)
}

func TestWithScopeRoundTrip(t *testing.T) {
	m := fakeModel{id: "openai/gpt-4o"}
	tl := fakeTool{name: "search"}

	ctx := WithScope(context.Background(), Scope{Model: m, Tools: []Tool{tl}})

	s, ok := ScopeFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "openai/gpt-4o", s.Model.ID())
	require.Len(t, s.Tools, 1)
	assert.Equal(t, "search", s.Tools[0].Name())
}

func TestScopesNestLikeAStack(t *testing.T) {
	outer := WithScope(context.Background(), Scope{Model: fakeModel{id: "a/outer"}})
	inner := WithScope(outer, Scope{Model: fakeModel{id: "a/inner"}})

	s, ok := ScopeFrom(inner)
	require.True(t, ok)
	assert.Equal(t, "a/inner", s.Model.ID())

	// The outer context never sees the inner scope.
	s, ok = ScopeFrom(outer)
	require.True(t, ok)
	assert.Equal(t, "a/outer", s.Model.ID())
}

func TestScopesAreIsolatedAcrossGoroutines(t *testing.T) {
	base := context.Background()

	var wg sync.WaitGroup
	for _, id := range []string{"p/one", "p/two", "p/three"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			ctx := WithScope(base, Scope{Model: fakeModel{id: id}})
			s, ok := ScopeFrom(ctx)
			assert.True(t, ok)
			assert.Equal(t, id, s.Model.ID())
		}(id)
	}
	wg.Wait()

	// The shared base context stays scope-free.
	_, ok := ScopeFrom(base)
	assert.False(t, ok)
}
