package core

import "context"

// Scope is the execution context one workflow node runs under: the active
// model and the active tool set. Prompts invoked during the node's window
// read the scope to configure themselves instead of receiving model and
// tools as parameters.
type Scope struct {
	Model Model
	Tools []Tool
}

// scopeKey is the private context key scopes travel under.
type scopeKey struct{}

// WithScope returns a child context carrying s.
//
// Scopes nest like a stack: deriving a scope shadows the outer one for the
// child context's lifetime and leaves the parent context untouched, so
// nested node invocations restore the outer scope simply by returning, and
// concurrently executing nodes each observe only their own scope. There is
// no explicit clear; a scope cannot outlive the context it was derived
// into, which is what guarantees teardown on error and panic paths alike.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFrom returns the scope carried by ctx. The boolean is false when no
// node has established a scope on this context chain.
func ScopeFrom(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(Scope)
	return s, ok
}
