package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hupe1980/magma/registry"
	"github.com/hupe1980/magma/schema"
)

// endpointParam mirrors one parameter in a space's published API
// description.
type endpointParam struct {
	Label               string `json:"label"`
	ParameterName       string `json:"parameter_name"`
	ParameterHasDefault bool   `json:"parameter_has_default"`
}

type endpointInfo struct {
	Parameters []endpointParam `json:"parameters"`
}

// FromSpace wraps a live remote endpoint as a tool and registers it under
// name.
//
// The space's API description is fetched from GET <space>/api and the first
// named endpoint in document order is selected. Its non-defaulted
// parameters become the tool parameters, typed string, described by their
// labels. Invocation posts a positional "data" array built from the named
// arguments in declared order; the first "data" element of the reply is the
// result. A space without named endpoints fails with *NotFoundError. No
// trust opt-in is required: no code is loaded, only HTTP calls are made.
func FromSpace(ctx context.Context, reg *registry.Registry, spaceURL, name, description string, optFns ...func(*LoadOptions)) (*Tool, error) {
	opts := loadOptions(optFns)

	base := strings.TrimRight(spaceURL, "/")

	desc, err := fetchAPIDescription(ctx, opts.HTTPClient, base+"/api")
	if err != nil {
		return nil, err
	}

	endpoint, info, err := firstNamedEndpoint(spaceURL, desc)
	if err != nil {
		return nil, err
	}

	var params []Param
	for _, p := range info.Parameters {
		if p.ParameterHasDefault {
			continue
		}
		params = append(params, Param{
			Name:        p.ParameterName,
			Type:        schema.TypeString,
			Description: p.Label,
		})
	}

	callURL := base + "/api" + ensureLeadingSlash(endpoint)

	fn := func(ctx context.Context, args map[string]any) (any, error) {
		data := make([]any, len(params))
		for i, p := range params {
			data[i] = args[p.Name]
		}
		return callSpace(ctx, opts.HTTPClient, callURL, data)
	}

	return New(reg, name, fn, description, params)
}

func fetchAPIDescription(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build space request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch space api description: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch space api description: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read space api description: %w", err)
	}

	return body, nil
}

// firstNamedEndpoint walks the named_endpoints object with a token decoder
// to preserve document order, which encoding/json maps would lose.
func firstNamedEndpoint(spaceURL string, raw []byte) (string, endpointInfo, error) {
	var doc struct {
		NamedEndpoints json.RawMessage `json:"named_endpoints"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", endpointInfo{}, fmt.Errorf("decode space api description: %w", err)
	}

	if len(doc.NamedEndpoints) == 0 {
		return "", endpointInfo{}, &NotFoundError{Kind: "endpoint", Target: spaceURL}
	}

	dec := json.NewDecoder(bytes.NewReader(doc.NamedEndpoints))

	tok, err := dec.Token()
	if err != nil {
		return "", endpointInfo{}, fmt.Errorf("decode space api description: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", endpointInfo{}, fmt.Errorf("decode space api description: named_endpoints is not an object")
	}

	if !dec.More() {
		return "", endpointInfo{}, &NotFoundError{Kind: "endpoint", Target: spaceURL}
	}

	nameTok, err := dec.Token()
	if err != nil {
		return "", endpointInfo{}, fmt.Errorf("decode space api description: %w", err)
	}
	endpoint, _ := nameTok.(string)

	var info endpointInfo
	if err := dec.Decode(&info); err != nil {
		return "", endpointInfo{}, fmt.Errorf("decode space endpoint %q: %w", endpoint, err)
	}

	return endpoint, info, nil
}

func callSpace(ctx context.Context, client *http.Client, url string, data []any) (any, error) {
	payload, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		return nil, fmt.Errorf("encode space call: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build space call: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call space endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("call space endpoint: unexpected status %s", resp.Status)
	}

	var reply struct {
		Data []any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode space reply: %w", err)
	}

	if len(reply.Data) == 0 {
		return nil, nil
	}

	return reply.Data[0], nil
}

func ensureLeadingSlash(s string) string {
	if strings.HasPrefix(s, "/") {
		return s
	}
	return "/" + s
}
