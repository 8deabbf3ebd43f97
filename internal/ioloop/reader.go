package ioloop

import (
	"errors"
	"io"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// readFromAvailable drains every readable, non-full input into its buffer,
// detecting record boundaries as bytes arrive. It returns the number of
// inputs now holding at least one complete record (spec.md §4.2).
func readFromAvailable(inputs *Inputs, logger *logrus.Logger) int {
	if inputs.numReadable == 0 {
		return inputs.numBuffered
	}

	for _, in := range inputs.items {
		if in.closed || !in.readable {
			continue
		}
		readInput(inputs, in, logger)
	}

	logger.WithField("buffered", inputs.numBuffered).Debug("read stage complete")
	return inputs.numBuffered
}

// readInput performs up to two reads (one extra when nearEOF hints the next
// read will observe EOF) against a single input's buffer.
func readInput(inputs *Inputs, in *Input, logger *logrus.Logger) {
	buf := in.buffer
	if buf.full() {
		logger.WithField("input", in.Name).Debug("buffer is full")
		return
	}

	reads := 1
	if in.nearEOF {
		reads = 2
	}

	for ; reads > 0; reads-- {
		room := buf.appendable()
		if len(room) == 0 {
			break
		}

		n, err := in.file.Read(room)
		logger.WithFields(logrus.Fields{"input": in.Name, "bytes": n}).Debug("read")

		if n > 0 {
			if buf.grow(n) {
				inputs.setBuffered(in, true)
			}
		}

		if err != nil {
			switch {
			case errors.Is(err, syscall.EAGAIN), errors.Is(err, syscall.EWOULDBLOCK):
				return // input exhausted for this cycle
			case errors.Is(err, io.EOF):
				closeInputOnEOF(inputs, in, logger)
				return
			default:
				closeInputOnError(inputs, in, err, logger)
				return
			}
		}
		if n == 0 {
			closeInputOnEOF(inputs, in, logger)
			return
		}

		if !buf.buffered() && buf.full() {
			newCap := buf.capacity * 2
			logger.WithFields(logrus.Fields{
				"input": in.Name,
				"from":  humanize.IBytes(uint64(buf.capacity)),
				"to":    humanize.IBytes(uint64(newCap)),
			}).Debug("record exceeds buffer capacity, doubling")
			buf.enlarge(newCap)
		}
	}
}

func closeInputOnEOF(inputs *Inputs, in *Input, logger *logrus.Logger) {
	logger.WithField("input", in.Name).Debug("input reached EOF")
	inputs.close(in)
}

func closeInputOnError(inputs *Inputs, in *Input, err error, logger *logrus.Logger) {
	logger.WithError(err).WithField("input", in.Name).Warn("input closed due to read error")
	inputs.close(in)
}
