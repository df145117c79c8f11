package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"plugin"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/magma/registry"
)

func TestFromHubRequiresTrustBeforeDownload(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := registry.New()

	_, err := FromHub(context.Background(), reg, "acme/weather-tool", nil, WithHubBaseURL(srv.URL))
	assert.ErrorIs(t, err, ErrUntrustedCode)
	assert.Equal(t, 0, hits, "untrusted hub artifact must not be downloaded")
}

func TestFromHubDownloadsAndLoads(t *testing.T) {
	const artifact = "fake-shared-object-bytes"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acme/weather-tool/resolve/main/tool.so", r.URL.Path)
		_, _ = w.Write([]byte(artifact))
	}))
	defer srv.Close()

	factory := Factory(func(reg *registry.Registry, _ map[string]any) (*Tool, error) {
		return New(reg, "hub_tool", echoFunc, "from the hub", nil)
	})

	var stagedPath string
	withFakeOpener(t, func(path string) (symbolSource, error) {
		stagedPath = path
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, artifact, string(content))
		return &fakePlugin{symbols: map[string]plugin.Symbol{EntrySymbol: factory}}, nil
	})

	reg := registry.New()

	tl, err := FromHub(context.Background(), reg, "acme/weather-tool", nil,
		WithTrustCode(true), WithHubBaseURL(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "hub_tool", tl.Name())

	// The staged artifact is cleaned up after loading.
	_, statErr := os.Stat(stagedPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFromHubDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such repo", http.StatusNotFound)
	}))
	defer srv.Close()

	reg := registry.New()

	_, err := FromHub(context.Background(), reg, "acme/missing", nil,
		WithTrustCode(true), WithHubBaseURL(srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}
