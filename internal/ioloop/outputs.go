package ioloop

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Outputs is the ordered collection of Output endpoints plus the aggregate
// counters the poller, writer stage, and exchange stage consult in O(1),
// and the round-robin cursor used to pick an idle output during exchange.
type Outputs struct {
	items       []*Output
	lastClosed  int
	nextOutput  int
	numClosed   int
	numWritable int
	numBusy     int
}

// NewOutputs wraps the given named, already-open writable files.
func NewOutputs(names []string, files []*os.File, initialBufferCapacity int) *Outputs {
	items := make([]*Output, len(files))
	for i, f := range files {
		items[i] = newOutput(names[i], f, initialBufferCapacity)
	}
	return &Outputs{items: items, lastClosed: len(items)}
}

// Len reports the total number of outputs, closed or not.
func (out *Outputs) Len() int { return len(out.items) }

// NumOpen reports the count of outputs not yet closed.
func (out *Outputs) NumOpen() int { return len(out.items) - out.numClosed }

func (out *Outputs) setNonblocking() error {
	for _, item := range out.items {
		if err := unix.SetNonblock(item.Fd(), true); err != nil {
			return fmt.Errorf("set output %q nonblocking: %w", item.Name, err)
		}
	}
	return nil
}

func (out *Outputs) setWritable(item *Output, v bool) {
	if item.writable == v {
		return
	}
	item.writable = v
	if v {
		out.numWritable++
	} else {
		out.numWritable--
	}
}

func (out *Outputs) setBusy(item *Output, v bool) {
	if item.busy == v {
		return
	}
	item.busy = v
	if v {
		out.numBusy++
	} else {
		out.numBusy--
	}
}

func (out *Outputs) setClosed(item *Output, v bool) {
	if item.closed == v {
		return
	}
	item.closed = v
	if v {
		out.numClosed++
	} else {
		out.numClosed--
	}
}

// close marks item closed and closes its descriptor. Its buffer — and
// whatever bytes it still held — is never touched again; nextIdle skips
// closed outputs directly, so the exchange stage never routes to it again
// regardless of its busy flag (see DESIGN.md's Open Question decision on
// dropped write-error bytes).
func (out *Outputs) close(item *Output) {
	_ = item.file.Close()
	out.setClosed(item, true)
}

// compact moves closed outputs to the tail, mirroring the inputs-side
// algorithm.
func (out *Outputs) compact() {
	if out.Len()-out.lastClosed >= out.numClosed {
		return
	}
	for i := 0; i < out.lastClosed; i++ {
		item := out.items[i]
		if !item.closed {
			continue
		}
		out.setWritable(item, false)
		j := out.lastClosed - 1
		for j > i && out.items[j].closed {
			j--
		}
		out.lastClosed = j
		if j <= i {
			break
		}
		out.items[i], out.items[j] = out.items[j], out.items[i]
	}
}

func (out *Outputs) pollable() []*Output {
	return out.items[:out.Len()-out.numClosed]
}

// nextIdle advances the persistent round-robin cursor at most Len() probes
// looking for a non-busy, non-closed output, wrapping modulo the total
// output count. Returns nil if a full cycle found none idle.
func (out *Outputs) nextIdle() *Output {
	n := out.Len()
	if n == 0 {
		return nil
	}
	for probes := 0; probes < n; probes++ {
		candidate := out.items[out.nextOutput]
		out.nextOutput = (out.nextOutput + 1) % n
		if candidate.busy || candidate.closed {
			continue
		}
		return candidate
	}
	return nil
}
