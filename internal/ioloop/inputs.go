package ioloop

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Inputs is the ordered collection of Input endpoints plus the aggregate
// counters the poller, reader stage, and shutdown predicate consult in
// O(1). Closed entries are lazily compacted to the tail; after each
// compact, all indices below lastClosed are open.
type Inputs struct {
	items       []*Input
	lastClosed  int // partition index: entries at/after this index are closed
	numClosed   int
	numReadable int
	numBuffered int
}

// NewInputs wraps the given named, already-open readable files. names[i]
// must correspond to files[i].
func NewInputs(names []string, files []*os.File, initialBufferCapacity int) *Inputs {
	items := make([]*Input, len(files))
	for i, f := range files {
		items[i] = newInput(names[i], f, initialBufferCapacity)
	}
	return &Inputs{items: items, lastClosed: len(items)}
}

// Len reports the total number of inputs, closed or not.
func (in *Inputs) Len() int { return len(in.items) }

// NumOpen reports the count of inputs not yet closed.
func (in *Inputs) NumOpen() int { return len(in.items) - in.numClosed }

// setNonblocking puts every wrapped descriptor into nonblocking mode. It is
// a fatal setup error (per spec.md §7) if any descriptor refuses.
func (in *Inputs) setNonblocking() error {
	for _, item := range in.items {
		if err := unix.SetNonblock(item.Fd(), true); err != nil {
			return fmt.Errorf("set input %q nonblocking: %w", item.Name, err)
		}
	}
	return nil
}

func (in *Inputs) setReadable(item *Input, v bool) {
	if item.readable == v {
		return
	}
	item.readable = v
	if v {
		in.numReadable++
	} else {
		in.numReadable--
	}
}

func (in *Inputs) setBuffered(item *Input, v bool) {
	if item.buffered == v {
		return
	}
	item.buffered = v
	if v {
		in.numBuffered++
	} else {
		in.numBuffered--
	}
}

func (in *Inputs) setClosed(item *Input, v bool) {
	if item.closed == v {
		return
	}
	item.closed = v
	if v {
		in.numClosed++
	} else {
		in.numClosed--
	}
}

// close marks item closed and closes its descriptor. Its buffer is kept, so
// complete records it still holds remain available to the exchange stage.
func (in *Inputs) close(item *Input) {
	_ = item.file.Close()
	in.setClosed(item, true)
}

// compact moves closed inputs to the tail of items when the number of
// closed entries still sitting in the live prefix [0, lastClosed) makes it
// worth the O(lastClosed) scan. Mirrors the original's
// move_closed_inputs_outputs_to_the_end for inputs.
func (in *Inputs) compact() {
	if in.Len()-in.lastClosed >= in.numClosed {
		return
	}
	for i := 0; i < in.lastClosed; i++ {
		item := in.items[i]
		if !item.closed {
			continue
		}
		in.setReadable(item, false)
		j := in.lastClosed - 1
		for j > i && in.items[j].closed {
			j--
		}
		in.lastClosed = j
		if j <= i {
			break
		}
		in.items[i], in.items[j] = in.items[j], in.items[i]
	}
}

// pollable returns the entries still subject to polling, i.e. the live
// prefix after compaction.
func (in *Inputs) pollable() []*Input {
	return in.items[:in.Len()-in.numClosed]
}
