package ioloop

import (
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestReadFromAvailable_ReadsCompleteRecord(t *testing.T) {
	r, w := pipePair(t)
	inputs := NewInputs([]string{"in"}, []*os.File{r}, 64)
	inputs.setReadable(inputs.items[0], true)

	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = w.Close()

	buffered := readFromAvailable(inputs, testLogger())
	if buffered != 1 {
		t.Fatalf("buffered = %d, want 1", buffered)
	}
	if !inputs.items[0].buffered {
		t.Fatalf("expected input marked buffered")
	}
	if got := string(inputs.items[0].buffer.bytes()); got != "hello\n" {
		t.Fatalf("buffer bytes = %q, want %q", got, "hello\n")
	}
}

func TestReadFromAvailable_EOFClosesInput(t *testing.T) {
	r, w := pipePair(t)
	inputs := NewInputs([]string{"in"}, []*os.File{r}, 64)
	inputs.setReadable(inputs.items[0], true)
	_ = w.Close() // immediate EOF, no data

	readFromAvailable(inputs, testLogger())

	if !inputs.items[0].closed {
		t.Fatalf("expected input closed on EOF")
	}
	if inputs.NumOpen() != 0 {
		t.Fatalf("NumOpen() = %d, want 0", inputs.NumOpen())
	}
}

func TestReadFromAvailable_DoublesBufferForOversizedRecord(t *testing.T) {
	r, w := pipePair(t)
	inputs := NewInputs([]string{"in"}, []*os.File{r}, 4)
	inputs.setReadable(inputs.items[0], true)

	payload := []byte("0123456789\n")
	go func() {
		_, _ = w.Write(payload)
		_ = w.Close()
	}()

	for inputs.items[0].buffer.capacity < len(payload) && !inputs.items[0].closed {
		readFromAvailable(inputs, testLogger())
	}

	if inputs.items[0].buffer.capacity < len(payload) {
		t.Fatalf("buffer never grew to fit the record: capacity=%d", inputs.items[0].buffer.capacity)
	}
}

func TestReadFromAvailable_SkipsNonReadableInputs(t *testing.T) {
	r, w := pipePair(t)
	defer w.Close()
	inputs := NewInputs([]string{"in"}, []*os.File{r}, 64)
	// not marked readable

	buffered := readFromAvailable(inputs, testLogger())
	if buffered != 0 {
		t.Fatalf("buffered = %d, want 0 for an input never marked readable", buffered)
	}
}
