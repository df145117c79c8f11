// Package core provides the foundational contracts of magma. It defines:
//
//   - The component views (Model, Tool) the execution layer depends on,
//     decoupling scope propagation from the concrete component packages
//   - Scope, the transient {active model, active tool set} pair one workflow
//     node runs under
//   - Context plumbing (WithScope / ScopeFrom) that carries a Scope through
//     a node's call graph, so prompts invoked arbitrarily deep inside the
//     node can self-configure without parameter threading
//
// The package intentionally keeps implementation concerns (registration,
// schema rendering, graph execution) out of scope, exposing only the small
// interfaces the bridge and the prompts agree on.
package core
