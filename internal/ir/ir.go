// Package ir implements an in-memory, single-threaded intermediate
// representation for a differentiable tensor program: a closed type
// system, a Module/Function/BasicBlock/Instruction/Argument/GlobalValue
// containment hierarchy in SSA form, a Builder that constructs it under
// the package's naming and containment invariants, generic graph
// traversal over its control-flow and use-def edges, a deterministic
// pretty-printer, and a verifier pass that checks the invariants the
// Builder itself does not enforce at mutation time.
//
// The data model, the Builder, and the printer form the stable core;
// Verify and the graph/traversal helpers are passes layered over it
// through the same public surface external tooling uses.
package ir

// NewModule and the Builder/Verify/Print entry points are declared
// alongside the types they operate on (container.go, builder.go,
// verify.go, printer.go); this file is the package's front door for
// godoc rather than a separate indirection layer.
