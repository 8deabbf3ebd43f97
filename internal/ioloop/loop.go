package ioloop

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// historyDepth is the number of recent CycleDigests retained for the
// SIGUSR1 diagnostic dump's trend display.
const historyDepth = 32

// Loop owns one run of the record-multiplexing event loop: the endpoint
// sets, the readiness poller, and the diagnostic surface a signal handler
// running on another goroutine may read concurrently.
type Loop struct {
	cfg     Config
	logger  *logrus.Logger
	inputs  *Inputs
	outputs *Outputs
	poller  *poller
	history *history

	cycle    uint64
	snapshot snapshotBox
}

// NewLoop builds a Loop over the given already-open endpoint sets. Run must
// be called exactly once.
func NewLoop(cfg Config, logger *logrus.Logger, inputs *Inputs, outputs *Outputs) *Loop {
	return &Loop{
		cfg:     cfg,
		logger:  logger,
		inputs:  inputs,
		outputs: outputs,
		poller:  newPoller(cfg, logger, inputs.Len(), outputs.Len()),
		history: newHistory(historyDepth),
	}
}

// Run drives the loop to completion: readiness poll, writer stage, reader
// stage, and — when the reader stage reports buffered records — repeated
// exchange/writer passes until exchange reports no more pairs (spec.md
// §4.5). It returns when the shutdown predicate holds (no input remains
// open or buffered, and no output remains busy) or when ctx is canceled.
//
// Run puts every endpoint into nonblocking mode before its first cycle;
// failure to do so is a fatal setup error (spec.md §7).
func (l *Loop) Run(ctx context.Context) error {
	if err := l.inputs.setNonblocking(); err != nil {
		return fmt.Errorf("ioloop setup: %w", err)
	}
	if err := l.outputs.setNonblocking(); err != nil {
		return fmt.Errorf("ioloop setup: %w", err)
	}
	defer l.releaseBuffers()

	l.publishSnapshot()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !l.poller.cycle(l.inputs, l.outputs) {
			l.logger.Info("no further record flow possible, shutting down")
			l.publishSnapshot()
			return nil
		}

		writeToAvailable(l.outputs, l.logger)
		if readFromAvailable(l.inputs, l.logger) > 0 {
			for exchangeBufferedRecords(l.inputs, l.outputs, l.logger) > 0 {
				writeToAvailable(l.outputs, l.logger)
			}
		}

		l.cycle++
		l.history.push(CycleDigest{
			Cycle:          l.cycle,
			OpenInputs:     uint32(l.inputs.NumOpen()),
			BufferedInputs: uint32(l.inputs.numBuffered),
			OpenOutputs:    uint32(l.outputs.NumOpen()),
			BusyOutputs:    uint32(l.outputs.numBusy),
		})
		l.publishSnapshot()
	}
}

// releaseBuffers returns every endpoint's backing storage to the shared
// pool once the loop has stopped driving them.
func (l *Loop) releaseBuffers() {
	for _, in := range l.inputs.items {
		in.buffer.release()
	}
	for _, out := range l.outputs.items {
		out.buffer.release()
	}
}

func (l *Loop) publishSnapshot() {
	l.snapshot.store(Snapshot{
		Cycle:            l.cycle,
		Inputs:           snapshotInputs(l.inputs),
		Outputs:          snapshotOutputs(l.outputs),
		NumOpenInputs:    l.inputs.NumOpen(),
		NumBufferedInput: l.inputs.numBuffered,
		NumReadable:      l.inputs.numReadable,
		NumOpenOutputs:   l.outputs.NumOpen(),
		NumBusyOutputs:   l.outputs.numBusy,
		NumWritable:      l.outputs.numWritable,
	})
}

// Snapshot returns the most recently published Snapshot. Safe to call from
// any goroutine; it never blocks on or interferes with the running loop.
func (l *Loop) Snapshot() Snapshot {
	return l.snapshot.load()
}

// RecentHistory drains and returns the CycleDigests accumulated since the
// last call, oldest first; the ring keeps only the newest historyDepth of
// them. Safe to call from any goroutine.
func (l *Loop) RecentHistory() []CycleDigest {
	return l.history.drain()
}
