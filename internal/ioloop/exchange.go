package ioloop

import "github.com/sirupsen/logrus"

// exchangeBufferedRecords pairs each buffered input with an idle output
// and swaps their Buffers in O(1), preserving any trailing in-progress
// record on the input side (spec.md §4.3). It returns the number of pairs
// exchanged this call.
func exchangeBufferedRecords(inputs *Inputs, outputs *Outputs, logger *logrus.Logger) int {
	exchanges := 0

	for _, in := range inputs.items {
		if inputs.numBuffered <= 0 {
			logger.Debug("exchanging stops: no more inputs are buffered")
			break
		}
		if outputs.numBusy == outputs.NumOpen() {
			logger.Debug("exchanging stops: all outputs are busy")
			break
		}
		if !in.buffered {
			continue
		}

		out := outputs.nextIdle()
		if out == nil {
			continue
		}

		logger.WithFields(logrus.Fields{
			"bytes":  in.buffer.endOfLastRecord + 1 - in.buffer.begin,
			"input":  in.Name,
			"output": out.Name,
		}).Debug("routing records")

		in.buffer, out.buffer = out.buffer, in.buffer
		in.buffer.reset()
		moveTrailingDataAfterLastRecord(in.buffer, out.buffer)

		inputs.setBuffered(in, false)
		outputs.setBusy(out, true)
		exchanges++
	}

	logger.WithField("exchanges", exchanges).Debug("exchange stage complete")
	return exchanges
}
