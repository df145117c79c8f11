// Package observe defines the tracing surface of magma. Workflow runs emit
// node spans to TraceSink implementations; the package ships a no-op sink
// and an HTTP sink configured from Langfuse-style environment credentials.
// Tracing is strictly additive: a missing or failing sink never changes
// workflow behavior.
package observe

import (
	"context"
	"os"
	"time"

	"github.com/hupe1980/magma/logging"
)

// TraceSink receives node span events from workflow runs. Implementations
// must be safe for concurrent use and must never panic; delivery failures
// are theirs to swallow.
type TraceSink interface {
	// NodeStart is called immediately before a node executes.
	NodeStart(ctx context.Context, runID, node string)

	// NodeEnd is called after the node returned, with its error and elapsed
	// wall time.
	NodeEnd(ctx context.Context, runID, node string, err error, elapsed time.Duration)
}

// NoopSink discards all span events.
type NoopSink struct{}

// NodeStart implements TraceSink.
func (NoopSink) NodeStart(context.Context, string, string) {}

// NodeEnd implements TraceSink.
func (NoopSink) NodeEnd(context.Context, string, string, error, time.Duration) {}

// Environment variables gating the env-configured sink.
const (
	EnvPublicKey = "LANGFUSE_PUBLIC_KEY"
	EnvSecretKey = "LANGFUSE_SECRET_KEY"
	EnvHost      = "LANGFUSE_HOST"
)

// DefaultHost is used when EnvHost is unset.
const DefaultHost = "https://cloud.langfuse.com"

// SinkFromEnv builds an HTTP trace sink from environment credentials.
// Both key variables must be present; otherwise (nil, false) is returned
// and tracing stays off. The sink's delivery failures are logged through
// logger and swallowed.
func SinkFromEnv(logger logging.Logger) (TraceSink, bool) {
	publicKey := os.Getenv(EnvPublicKey)
	secretKey := os.Getenv(EnvSecretKey)

	if publicKey == "" || secretKey == "" {
		return nil, false
	}

	host := os.Getenv(EnvHost)
	if host == "" {
		host = DefaultHost
	}

	return NewHTTPSink(host, publicKey, secretKey, WithLogger(logger)), true
}
