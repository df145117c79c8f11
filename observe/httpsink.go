package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/magma/logging"
)

// ingestionPath is the batch ingestion endpoint relative to the host.
const ingestionPath = "/api/public/ingestion"

// HTTPSinkOptions configures an HTTPSink.
type HTTPSinkOptions struct {
	// HTTPClient performs the ingestion requests. Defaults to a client with
	// a short timeout so tracing never stalls a workflow run.
	HTTPClient *http.Client

	// Logger receives swallowed delivery failures. Defaults to NoOpLogger.
	Logger logging.Logger
}

// WithSinkHTTPClient overrides the ingestion HTTP client.
func WithSinkHTTPClient(c *http.Client) func(*HTTPSinkOptions) {
	return func(o *HTTPSinkOptions) { o.HTTPClient = c }
}

// WithLogger sets the logger delivery failures are reported to.
func WithLogger(logger logging.Logger) func(*HTTPSinkOptions) {
	return func(o *HTTPSinkOptions) { o.Logger = logger }
}

// HTTPSink posts one ingestion batch per node span to a Langfuse-compatible
// endpoint. Failures are logged and swallowed; the sink never surfaces an
// error into the workflow run.
type HTTPSink struct {
	url       string
	publicKey string
	secretKey string
	client    *http.Client
	logger    logging.Logger
}

// NewHTTPSink creates a sink posting to host's ingestion endpoint,
// authenticating with the public/secret key pair via basic auth.
func NewHTTPSink(host, publicKey, secretKey string, optFns ...func(*HTTPSinkOptions)) *HTTPSink {
	opts := HTTPSinkOptions{
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &HTTPSink{
		url:       strings.TrimRight(host, "/") + ingestionPath,
		publicKey: publicKey,
		secretKey: secretKey,
		client:    opts.HTTPClient,
		logger:    opts.Logger,
	}
}

// NodeStart implements TraceSink. Span timing is reconstructed at NodeEnd
// from the elapsed duration, so nothing is sent here.
func (s *HTTPSink) NodeStart(context.Context, string, string) {}

// NodeEnd implements TraceSink: it posts one span-create event for the
// finished node.
func (s *HTTPSink) NodeEnd(ctx context.Context, runID, node string, err error, elapsed time.Duration) {
	now := time.Now().UTC()

	body := map[string]any{
		"id":        uuid.NewString(),
		"traceId":   runID,
		"name":      node,
		"startTime": now.Add(-elapsed).Format(time.RFC3339Nano),
		"endTime":   now.Format(time.RFC3339Nano),
	}
	if err != nil {
		body["level"] = "ERROR"
		body["statusMessage"] = err.Error()
	}

	batch := map[string]any{
		"batch": []any{
			map[string]any{
				"id":        uuid.NewString(),
				"type":      "span-create",
				"timestamp": now.Format(time.RFC3339Nano),
				"body":      body,
			},
		},
	}

	if err := s.post(ctx, batch); err != nil {
		s.logger.Warn("trace delivery failed", "run_id", runID, "node", node, "error", err)
	}
}

func (s *HTTPSink) post(ctx context.Context, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode ingestion batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build ingestion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.publicKey, s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post ingestion batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post ingestion batch: unexpected status %s", resp.Status)
	}

	return nil
}
