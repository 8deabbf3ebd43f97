package ioloop

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/smallnest/ringbuffer"
)

// cycleDigestSize is the fixed wire width of an encoded CycleDigest.
const cycleDigestSize = 8 + 4*4

// CycleDigest is a compact, fixed-width summary of one loop cycle's
// aggregate endpoint counts, used to give the SIGUSR1 diagnostic dump a
// short recent trend rather than only the instantaneous snapshot.
type CycleDigest struct {
	Cycle          uint64
	OpenInputs     uint32
	BufferedInputs uint32
	OpenOutputs    uint32
	BusyOutputs    uint32
}

func (d CycleDigest) encode() []byte {
	buf := make([]byte, cycleDigestSize)
	binary.BigEndian.PutUint64(buf[0:8], d.Cycle)
	binary.BigEndian.PutUint32(buf[8:12], d.OpenInputs)
	binary.BigEndian.PutUint32(buf[12:16], d.BufferedInputs)
	binary.BigEndian.PutUint32(buf[16:20], d.OpenOutputs)
	binary.BigEndian.PutUint32(buf[20:24], d.BusyOutputs)
	return buf
}

func decodeCycleDigest(buf []byte) CycleDigest {
	return CycleDigest{
		Cycle:          binary.BigEndian.Uint64(buf[0:8]),
		OpenInputs:     binary.BigEndian.Uint32(buf[8:12]),
		BufferedInputs: binary.BigEndian.Uint32(buf[12:16]),
		OpenOutputs:    binary.BigEndian.Uint32(buf[16:20]),
		BusyOutputs:    binary.BigEndian.Uint32(buf[20:24]),
	}
}

// history is a fixed-capacity ring of recent CycleDigests. When the ring is
// full, push evicts the oldest digest to make room for the new one; this is
// a best-effort diagnostic aid, never load-bearing for correctness.
type history struct {
	ring *ringbuffer.RingBuffer
}

func newHistory(depth int) *history {
	return &history{ring: ringbuffer.New(depth * cycleDigestSize)}
}

func (h *history) push(d CycleDigest) {
	if h.ring.Capacity()-h.ring.Length() < cycleDigestSize {
		stale := make([]byte, cycleDigestSize)
		_, _ = h.ring.TryRead(stale) // evict the oldest digest to keep record framing aligned
	}
	_, _ = h.ring.Write(d.encode())
}

// drain removes and returns every digest currently buffered, oldest first.
func (h *history) drain() []CycleDigest {
	var out []CycleDigest
	chunk := make([]byte, cycleDigestSize)
	for {
		n, err := h.ring.TryRead(chunk)
		if n < cycleDigestSize || err != nil {
			break
		}
		out = append(out, decodeCycleDigest(chunk))
	}
	return out
}

// EndpointSnapshot is one endpoint's observable state at the moment a
// Snapshot was taken.
type EndpointSnapshot struct {
	Name            string
	Closed          bool
	Readable        bool // inputs only
	Writable        bool // outputs only
	NearEOF         bool // inputs only
	Buffered        bool // inputs only
	Busy            bool // outputs only
	BufferSize      int
	BufferCapacity  int
	EndOfLastRecord int
}

// Snapshot is an immutable, point-in-time view of every endpoint's state,
// safe to read from a goroutine other than the loop (spec.md §5: a
// diagnostic handler "may print endpoint state but must not mutate
// counters"). The loop driver publishes a new Snapshot at the end of every
// cycle; nothing ever mutates one in place.
type Snapshot struct {
	Cycle            uint64
	Inputs           []EndpointSnapshot
	Outputs          []EndpointSnapshot
	NumOpenInputs    int
	NumBufferedInput int
	NumReadable      int
	NumOpenOutputs   int
	NumBusyOutputs   int
	NumWritable      int
}

func snapshotInputs(inputs *Inputs) []EndpointSnapshot {
	out := make([]EndpointSnapshot, len(inputs.items))
	for i, in := range inputs.items {
		out[i] = EndpointSnapshot{
			Name:            in.Name,
			Closed:          in.closed,
			Readable:        in.readable,
			NearEOF:         in.nearEOF,
			Buffered:        in.buffered,
			BufferSize:      in.buffer.size,
			BufferCapacity:  in.buffer.capacity,
			EndOfLastRecord: in.buffer.endOfLastRecord,
		}
	}
	return out
}

func snapshotOutputs(outputs *Outputs) []EndpointSnapshot {
	out := make([]EndpointSnapshot, len(outputs.items))
	for i, o := range outputs.items {
		out[i] = EndpointSnapshot{
			Name:           o.Name,
			Closed:         o.closed,
			Writable:       o.writable,
			Busy:           o.busy,
			BufferSize:     o.buffer.size,
			BufferCapacity: o.buffer.capacity,
		}
	}
	return out
}

// DumpState renders a Snapshot plus recent history in the original
// mkmimo_nonblocking.c print_state format, colorized (closed dim,
// buffered/busy highlighted) when color is enabled.
func DumpState(w io.Writer, snap Snapshot, recent []CycleDigest, colorEnabled bool) {
	dim := color.New(color.Faint)
	hot := color.New(color.FgYellow)
	if !colorEnabled {
		dim.DisableColor()
		hot.DisableColor()
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "inputs  = buffered=%d / readable=%d / open=%d / %d\n",
		snap.NumBufferedInput, snap.NumReadable, snap.NumOpenInputs, len(snap.Inputs))
	fmt.Fprintf(&b, "outputs =     busy=%d / writable=%d / open=%d / %d\n",
		snap.NumBusyOutputs, snap.NumWritable, snap.NumOpenOutputs, len(snap.Outputs))

	for _, in := range snap.Inputs {
		line := fmt.Sprintf("I %s:\tclosed=%t readable=%t buffered=%t near_eof=%t buffer=(%d/%d; end=%d)\n",
			in.Name, in.Closed, in.Readable, in.Buffered, in.NearEOF, in.BufferSize, in.BufferCapacity, in.EndOfLastRecord)
		writeHighlighted(&b, line, in.Closed, in.Buffered, dim, hot)
	}
	for _, out := range snap.Outputs {
		line := fmt.Sprintf("O %s:\tclosed=%t writable=%t busy=%t buffer=(%d/%d)\n",
			out.Name, out.Closed, out.Writable, out.Busy, out.BufferSize, out.BufferCapacity)
		writeHighlighted(&b, line, out.Closed, out.Busy, dim, hot)
	}

	if len(recent) > 0 {
		fmt.Fprintf(&b, "recent cycles:\n")
		for _, d := range recent {
			fmt.Fprintf(&b, "  #%d open_in=%d buffered_in=%d open_out=%d busy_out=%d\n",
				d.Cycle, d.OpenInputs, d.BufferedInputs, d.OpenOutputs, d.BusyOutputs)
		}
	}

	_, _ = w.Write(b.Bytes())
}

func writeHighlighted(b *bytes.Buffer, line string, closed, hot bool, dimColor, hotColor *color.Color) {
	switch {
	case closed:
		b.WriteString(dimColor.Sprint(line))
	case hot:
		b.WriteString(hotColor.Sprint(line))
	default:
		b.WriteString(line)
	}
}
