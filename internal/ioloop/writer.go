package ioloop

import (
	"errors"
	"syscall"

	"github.com/sirupsen/logrus"
)

// writeToAvailable drains every busy, writable output, handling partial
// writes and write errors (spec.md §4.4). It returns the number of outputs
// still holding unwritten bytes.
func writeToAvailable(outputs *Outputs, logger *logrus.Logger) int {
	if outputs.numWritable == 0 {
		return outputs.numBusy
	}

	for _, out := range outputs.items {
		if !out.busy || !out.writable {
			continue
		}
		writeOutput(outputs, out, logger)
	}

	logger.WithField("busy", outputs.numBusy).Debug("write stage complete")
	return outputs.numBusy
}

func writeOutput(outputs *Outputs, out *Output, logger *logrus.Logger) {
	buf := out.buffer
	if buf.size == 0 {
		outputs.setBusy(out, false)
		return
	}

	n, err := out.file.Write(buf.bytes())
	logger.WithFields(logrus.Fields{"output": out.Name, "bytes": n}).Debug("write")

	if n > 0 {
		buf.begin += n
		buf.size -= n
	}

	if err != nil {
		switch {
		case errors.Is(err, syscall.EAGAIN), errors.Is(err, syscall.EWOULDBLOCK):
			outputs.setBusy(out, true)
			logger.WithField("output", out.Name).Debug("output busy, retrying next cycle")
		default:
			logger.WithError(err).WithField("output", out.Name).Warn(
				"output closed due to write error, pending buffered bytes are dropped")
			outputs.close(out) // nextIdle skips closed outputs, so exchange never routes to it again
		}
		return
	}

	outputs.setBusy(out, buf.size != 0)
	if buf.size != 0 {
		logger.WithFields(logrus.Fields{"output": out.Name, "remaining": buf.size}).Debug("partial write")
	}
}
