// Package api defines the public types of the stator state container:
// action tables and their function signature, the Result shapes an action
// may produce, middleware entries, observers, settlement handles and the
// error kinds surfaced to callers.
//
// Most applications import the root stator package, which re-exports
// everything here and provides the store constructor; api exists so that
// companion packages (journal, otel) can depend on the types without
// pulling in the engine.
package api
