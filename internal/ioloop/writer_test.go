package ioloop

import (
	"os"
	"testing"
)

func TestWriteToAvailable_DrainsBuffer(t *testing.T) {
	r, w := pipePair(t)
	outputs := NewOutputs([]string{"out"}, []*os.File{w}, 64)
	out := outputs.items[0]

	copy(out.buffer.appendable(), []byte("payload\n"))
	out.buffer.grow(8)
	outputs.setBusy(out, true)
	outputs.setWritable(out, true)

	writeToAvailable(outputs, testLogger())

	if out.buffer.size != 0 {
		t.Fatalf("buffer.size = %d, want 0 after a full write", out.buffer.size)
	}
	if out.busy {
		t.Fatalf("expected output idle after draining its buffer")
	}

	got := make([]byte, 8)
	n, err := r.Read(got)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got[:n]) != "payload\n" {
		t.Fatalf("wrote %q, want %q", got[:n], "payload\n")
	}
}

func TestWriteToAvailable_SkipsNonBusyOutputs(t *testing.T) {
	_, w := pipePair(t)
	outputs := NewOutputs([]string{"out"}, []*os.File{w}, 64)
	outputs.setWritable(outputs.items[0], true)
	// not busy: nothing queued

	writeToAvailable(outputs, testLogger())
	if outputs.items[0].closed {
		t.Fatalf("did not expect the output to be touched")
	}
}

func TestWriteToAvailable_ClosesOnFatalError(t *testing.T) {
	r, w := pipePair(t)
	_ = r.Close() // reader gone: writes now fail

	outputs := NewOutputs([]string{"out"}, []*os.File{w}, 64)
	out := outputs.items[0]
	copy(out.buffer.appendable(), []byte("x\n"))
	out.buffer.grow(2)
	outputs.setBusy(out, true)
	outputs.setWritable(out, true)

	writeToAvailable(outputs, testLogger())

	if !out.closed {
		t.Fatalf("expected output closed after a fatal write error")
	}
	if !out.busy {
		t.Fatalf("expected busy to remain set after a fatal write error so round robin skips it forever")
	}
}
