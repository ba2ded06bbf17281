package stator

import (
	"context"
	"testing"
)

func noopAction(ctx context.Context, p Params[int], _ ...any) (Result[int], error) {
	return Value(p.State()), nil
}

func TestTableBuilderRegistersActions(t *testing.T) {
	table := NewTable[int]().
		Action("a", noopAction).
		Action("b", noopAction).
		Build()

	if len(table) != 2 {
		t.Fatalf("table has %d actions, want 2", len(table))
	}
	names := table.Names()
	if names[0] != "a" || names[1] != "b" {
		t.Fatalf("Names() = %v", names)
	}
}

func TestTableBuilderBuildCopies(t *testing.T) {
	b := NewTable[int]().Action("a", noopAction)
	first := b.Build()
	b.Action("b", noopAction)

	if len(first) != 1 {
		t.Fatalf("earlier build mutated: %d actions", len(first))
	}
	if len(b.Build()) != 2 {
		t.Fatal("builder lost the later action")
	}
}

func TestTableBuilderPanics(t *testing.T) {
	cases := map[string]func(){
		"empty name": func() { NewTable[int]().Action("", noopAction) },
		"nil fn":     func() { NewTable[int]().Action("a", nil) },
		"duplicate":  func() { NewTable[int]().Action("a", noopAction).Action("a", noopAction) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			fn()
		})
	}
}
