package tool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/magma/registry"
	"github.com/hupe1980/magma/schema"
)

const spaceDescription = `{
  "named_endpoints": {
    "/predict": {
      "parameters": [
        {"label": "City name", "parameter_name": "city", "parameter_has_default": false},
        {"label": "Units", "parameter_name": "units", "parameter_has_default": true},
        {"label": "Days ahead", "parameter_name": "days", "parameter_has_default": false}
      ]
    },
    "/warmup": {
      "parameters": []
    }
  }
}`

func newSpaceServer(t *testing.T, description string, result []any) (*httptest.Server, *[][]any) {
	t.Helper()

	var calls [][]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api":
			_, _ = w.Write([]byte(description))
		case r.Method == http.MethodPost:
			var body struct {
				Data []any `json:"data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			calls = append(calls, body.Data)
			_ = json.NewEncoder(w).Encode(map[string]any{"data": result})
		default:
			http.NotFound(w, r)
		}
	}))

	return srv, &calls
}

func TestFromSpaceBuildsParamsFromDescription(t *testing.T) {
	srv, _ := newSpaceServer(t, spaceDescription, []any{"sunny"})
	defer srv.Close()

	reg := registry.New()

	tl, err := FromSpace(context.Background(), reg, srv.URL, "weather", "Forecasts the weather.")
	require.NoError(t, err)

	params := tl.Params()
	require.Len(t, params, 2, "defaulted parameters are skipped")
	assert.Equal(t, "city", params[0].Name)
	assert.Equal(t, schema.TypeString, params[0].Type)
	assert.Equal(t, "City name", params[0].Description)
	assert.Equal(t, "days", params[1].Name)
	assert.Equal(t, "Days ahead", params[1].Description)

	got, ok := reg.Tools().Get("weather")
	assert.True(t, ok)
	assert.Same(t, tl, got)
}

func TestFromSpaceInvokePostsPositionalData(t *testing.T) {
	srv, calls := newSpaceServer(t, spaceDescription, []any{"sunny", "ignored"})
	defer srv.Close()

	reg := registry.New()

	tl, err := FromSpace(context.Background(), reg, srv.URL, "weather", "Forecasts the weather.")
	require.NoError(t, err)

	out, err := tl.Invoke(context.Background(), map[string]any{"city": "Berlin", "days": "3"})
	require.NoError(t, err)
	assert.Equal(t, "sunny", out)

	require.Len(t, *calls, 1)
	assert.Equal(t, []any{"Berlin", "3"}, (*calls)[0])
}

func TestFromSpaceSelectsFirstEndpointInDocumentOrder(t *testing.T) {
	// "/zeta" precedes "/alpha" in the document even though it sorts after it.
	description := `{
  "named_endpoints": {
    "/zeta": {"parameters": [{"label": "Z", "parameter_name": "z", "parameter_has_default": false}]},
    "/alpha": {"parameters": [{"label": "A", "parameter_name": "a", "parameter_has_default": false}]}
  }
}`

	var calledPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(description))
			return
		}
		calledPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{"ok"}})
	}))
	defer srv.Close()

	reg := registry.New()

	tl, err := FromSpace(context.Background(), reg, srv.URL, "ordered", "Uses the first endpoint.")
	require.NoError(t, err)
	assert.Equal(t, "z", tl.Params()[0].Name)

	_, err = tl.Invoke(context.Background(), map[string]any{"z": "1"})
	require.NoError(t, err)
	assert.Equal(t, "/api/zeta", calledPath)
}

func TestFromSpaceWithoutNamedEndpoints(t *testing.T) {
	srv, _ := newSpaceServer(t, `{"named_endpoints": {}}`, nil)
	defer srv.Close()

	reg := registry.New()

	_, err := FromSpace(context.Background(), reg, srv.URL, "empty", "No endpoints.")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "endpoint", nf.Kind)
	assert.Equal(t, 0, reg.Tools().Len())
}

func TestFromSpaceDescriptionFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	reg := registry.New()

	_, err := FromSpace(context.Background(), reg, srv.URL, "down", "Unreachable.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}
