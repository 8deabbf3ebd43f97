package ioloop

import (
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// poller owns the readiness-poll step of the loop driver (spec.md §4.1): it
// builds the poll request from currently-open endpoints, invokes the OS
// readiness primitive, and updates readable/writable/near-EOF flags and
// their aggregate counts.
type poller struct {
	cfg    Config
	logger *logrus.Logger
	fds    []unix.PollFd // allocated once for len(inputs)+len(outputs), reused every cycle
}

func newPoller(cfg Config, logger *logrus.Logger, numInputs, numOutputs int) *poller {
	return &poller{
		cfg:    cfg,
		logger: logger,
		fds:    make([]unix.PollFd, numInputs+numOutputs),
	}
}

// cycle runs one readiness-poll step. It returns false when the shutdown
// predicate holds, or when no input or output remains open to poll: no
// further record flow is possible. Any other outcome (including a poll()
// failure) returns true so the loop keeps making progress with whatever
// readiness information it has.
func (p *poller) cycle(inputs *Inputs, outputs *Outputs) bool {
	if inputs.NumOpen() == 0 && inputs.numBuffered == 0 && outputs.numBusy == 0 {
		p.logger.Debug("no data flow possible, shutting down")
		return false
	}

	inputs.compact()
	outputs.compact()

	openInputs := inputs.pollable()
	openOutputs := outputs.pollable()
	numToPoll := len(openInputs) + len(openOutputs)
	if numToPoll == 0 {
		return false
	}

	fds := p.fds[:numToPoll]
	for i, in := range openInputs {
		fds[i] = unix.PollFd{Fd: int32(in.Fd()), Events: unix.POLLIN}
	}
	for i, out := range openOutputs {
		var events int16
		if out.busy {
			events = unix.POLLOUT
		}
		fds[len(openInputs)+i] = unix.PollFd{Fd: int32(out.Fd()), Events: events}
	}

	// Start every endpoint from "not ready" so the setters below keep
	// numReadable/numWritable equal to the flags they count.
	for _, in := range inputs.items {
		in.readable = false
	}
	for _, out := range outputs.items {
		out.writable = false
	}
	inputs.numReadable = 0
	outputs.numWritable = 0

	n, err := unix.Poll(fds, p.cfg.PollTimeoutMsec)
	switch {
	case err != nil:
		p.logger.WithError(err).Warn("poll failed, continuing without updating readiness this cycle")
		return true

	case n > 0:
		for i, in := range openInputs {
			revents := fds[i].Revents
			readable := revents&(unix.POLLIN|unix.POLLHUP) != 0
			inputs.setReadable(in, readable)
			in.nearEOF = revents&unix.POLLHUP != 0
		}
		for i, out := range openOutputs {
			revents := fds[len(openInputs)+i].Revents
			writable := !out.busy || revents&(unix.POLLOUT|unix.POLLHUP) != 0
			outputs.setWritable(out, writable)
		}
		p.logger.WithFields(logrus.Fields{
			"readable": inputs.numReadable,
			"writable": outputs.numWritable,
		}).Debug("poll returned")

		if inputs.numReadable+outputs.numWritable == 0 || outputs.numBusy == outputs.NumOpen() {
			p.throttle()
		}
		return true

	default: // timeout: optimistically mark every polled endpoint ready
		p.logger.Debug("poll timeout, found no I/O events")
		for _, in := range openInputs {
			inputs.setReadable(in, true)
			in.nearEOF = false
		}
		for _, out := range openOutputs {
			outputs.setWritable(out, true)
		}
		return true
	}
}

func (p *poller) throttle() {
	d := p.cfg.throttleDuration()
	p.logger.WithField("sleep", d).Debug("throttling: all outputs busy or nothing ready")
	time.Sleep(d)
}
