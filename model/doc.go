// Package model defines the provider-agnostic model identity used across
// magma.
//
// A Model is a configured reference to a foundation-model endpoint: a
// provider/model identifier plus an open bag of provider parameters
// (temperature, credentials, endpoint overrides). Models register into a
// registry at construction time through New, and project themselves into
// the routing configuration the prompt-execution runtime consumes.
//
// Actual network calls are out of scope here; the invoke package turns a
// projected routing configuration into vendor SDK calls so higher layers
// stay decoupled from the SDKs.
package model
