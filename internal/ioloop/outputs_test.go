package ioloop

import (
	"os"
	"testing"
)

func newTestOutputs(t *testing.T, n int) *Outputs {
	t.Helper()
	names := make([]string, n)
	files := make([]*os.File, n)
	for i := 0; i < n; i++ {
		_, w := pipePair(t)
		names[i] = w.Name()
		files[i] = w
	}
	return NewOutputs(names, files, 64)
}

func TestOutputs_SetBusyMaintainsCount(t *testing.T) {
	outputs := newTestOutputs(t, 3)

	outputs.setBusy(outputs.items[0], true)
	outputs.setBusy(outputs.items[1], true)
	if outputs.numBusy != 2 {
		t.Fatalf("numBusy = %d, want 2", outputs.numBusy)
	}

	outputs.setBusy(outputs.items[0], false)
	if outputs.numBusy != 1 {
		t.Fatalf("numBusy after clear = %d, want 1", outputs.numBusy)
	}
}

func TestOutputs_NextIdleRoundRobins(t *testing.T) {
	outputs := newTestOutputs(t, 3)

	first := outputs.nextIdle()
	second := outputs.nextIdle()
	third := outputs.nextIdle()
	fourth := outputs.nextIdle() // wraps back to first

	if first == second || second == third || first == third {
		t.Fatalf("expected three distinct outputs in sequence")
	}
	if fourth != first {
		t.Fatalf("expected round robin to wrap back to the first output")
	}
}

func TestOutputs_NextIdleSkipsBusy(t *testing.T) {
	outputs := newTestOutputs(t, 3)
	outputs.setBusy(outputs.items[0], true)
	outputs.setBusy(outputs.items[1], true)

	idle := outputs.nextIdle()
	if idle != outputs.items[2] {
		t.Fatalf("expected the only non-busy output to be selected")
	}
}

func TestOutputs_NextIdleReturnsNilWhenAllBusy(t *testing.T) {
	outputs := newTestOutputs(t, 2)
	outputs.setBusy(outputs.items[0], true)
	outputs.setBusy(outputs.items[1], true)

	if idle := outputs.nextIdle(); idle != nil {
		t.Fatalf("expected nil when every output is busy, got %v", idle)
	}
}

func TestOutputs_CloseLeavesBusySet(t *testing.T) {
	outputs := newTestOutputs(t, 2)
	item := outputs.items[0]
	outputs.setBusy(item, true)

	outputs.close(item)

	if !item.busy {
		t.Fatalf("expected busy to remain set after close, so round robin keeps skipping it")
	}
	if !item.closed {
		t.Fatalf("expected closed to be set")
	}
}

func TestOutputs_NextIdleSkipsClosed(t *testing.T) {
	outputs := newTestOutputs(t, 2)
	outputs.close(outputs.items[0]) // closed, busy left false

	idle := outputs.nextIdle()
	if idle != outputs.items[1] {
		t.Fatalf("expected the only open output to be selected, got %v", idle)
	}
	if again := outputs.nextIdle(); again != outputs.items[1] {
		t.Fatalf("expected the closed output to never be selected, got %v", again)
	}
}

func TestOutputs_CompactMovesClosedToTail(t *testing.T) {
	outputs := newTestOutputs(t, 4)
	outputs.close(outputs.items[1])
	outputs.compact()

	for _, item := range outputs.pollable() {
		if item.closed {
			t.Fatalf("pollable() returned a closed item")
		}
	}
	if len(outputs.pollable()) != 3 {
		t.Fatalf("pollable() len = %d, want 3", len(outputs.pollable()))
	}
}
