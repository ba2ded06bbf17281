package stator

import "fmt"

// TableBuilder provides a fluent API for assembling an action table:
//
//	table := stator.NewTable[Counter]().
//	    Action("increment", increment).
//	    Action("reset", reset).
//	    Build()
//
//	store, err := stator.New(table, initial, subscriber)
type TableBuilder[S any] struct {
	table Table[S]
}

// NewTable creates a new action table builder.
func NewTable[S any]() *TableBuilder[S] {
	return &TableBuilder[S]{table: make(Table[S])}
}

// Action registers one named action.
func (b *TableBuilder[S]) Action(name string, fn ActionFunc[S]) *TableBuilder[S] {
	if name == "" {
		panic("stator: action name must not be empty")
	}
	if fn == nil {
		panic(fmt.Sprintf("stator: action %q has nil function", name))
	}
	if _, exists := b.table[name]; exists {
		panic(fmt.Sprintf("stator: action %q registered twice", name))
	}
	b.table[name] = fn
	return b
}

// Build returns the assembled table. The builder can keep registering
// actions afterwards without affecting tables already built.
func (b *TableBuilder[S]) Build() Table[S] {
	out := make(Table[S], len(b.table))
	for name, fn := range b.table {
		out[name] = fn
	}
	return out
}
