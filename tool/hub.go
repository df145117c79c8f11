package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/hupe1980/magma/registry"
)

// DefaultHubBaseURL is the hub tool artifacts are downloaded from unless
// overridden with WithHubBaseURL.
const DefaultHubBaseURL = "https://huggingface.co"

// FromHub downloads the plugin artifact of a named hub repository and loads
// it like FromPlugin. The trust opt-in is checked before the download
// starts; an untrusted artifact is never fetched.
func FromHub(ctx context.Context, reg *registry.Registry, repoID string, kwargs map[string]any, optFns ...func(*LoadOptions)) (*Tool, error) {
	opts := loadOptions(optFns)
	if !opts.TrustCode {
		return nil, ErrUntrustedCode
	}

	url := fmt.Sprintf("%s/%s/resolve/main/tool.so", opts.HubBaseURL, repoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build hub request: %w", err)
	}

	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download tool from hub: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download tool from hub: unexpected status %s", resp.Status)
	}

	path, err := stageArtifact(resp.Body)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	return FromPlugin(reg, path, kwargs, optFns...)
}

// stageArtifact spools the downloaded plugin to a temp file, since the
// plugin loader only opens paths.
func stageArtifact(r io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "magma-tool-*.so")
	if err != nil {
		return "", fmt.Errorf("stage hub artifact: %w", err)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage hub artifact: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage hub artifact: %w", err)
	}

	return tmp.Name(), nil
}
