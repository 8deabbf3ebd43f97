package ioloop

import (
	"os"

	"github.com/google/uuid"
)

// Input wraps a readable descriptor with an owned Buffer and the readiness
// flags the reader stage and poller maintain on it.
type Input struct {
	Name string
	ID   uuid.UUID
	file *os.File

	buffer *Buffer

	closed   bool // descriptor has been closed locally (EOF or fatal error); terminal
	readable bool // last poll cycle indicated data may be read without blocking
	nearEOF  bool // last poll cycle reported a hangup alongside readability
	buffered bool // buffer holds at least one complete record
}

// Output wraps a writable descriptor with an owned Buffer and the readiness
// flags the writer stage and poller maintain on it.
type Output struct {
	Name string
	ID   uuid.UUID
	file *os.File

	buffer *Buffer

	closed   bool // descriptor has been closed locally (fatal write error); terminal
	writable bool // last poll cycle indicated writability, or the output is idle
	busy     bool // buffer is non-empty: bytes remain to be written
}

// newInput wraps an already-open readable descriptor. The descriptor is not
// set nonblocking here; see Inputs.setNonblocking.
func newInput(name string, file *os.File, initialCapacity int) *Input {
	return &Input{
		Name:   name,
		ID:     uuid.New(),
		file:   file,
		buffer: newBuffer(initialCapacity),
	}
}

// newOutput wraps an already-open writable descriptor.
func newOutput(name string, file *os.File, initialCapacity int) *Output {
	return &Output{
		Name:   name,
		ID:     uuid.New(),
		file:   file,
		buffer: newBuffer(initialCapacity),
	}
}

// Fd returns the OS file descriptor number, for building poll requests.
func (in *Input) Fd() int { return int(in.file.Fd()) }

// Fd returns the OS file descriptor number, for building poll requests.
func (out *Output) Fd() int { return int(out.file.Fd()) }
