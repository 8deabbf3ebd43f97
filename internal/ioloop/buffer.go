// Package ioloop implements the nonblocking record-multiplexing event loop:
// per-descriptor readiness tracking, the buffer-ownership exchange protocol
// between inputs and outputs, record-boundary detection, and the
// throttling/shutdown predicate that drives the loop to completion.
package ioloop

import (
	pool "github.com/libp2p/go-buffer-pool"
)

// recordSeparator is the single byte that terminates a record on the wire.
// It is part of the preceding record: endOfLastRecord points at the
// separator itself, not past it.
const recordSeparator = '\n'

// noRecord is the sentinel value of endOfLastRecord when no complete record
// has been observed since the buffer was last reset.
const noRecord = -1

// Buffer is a mutable byte region used both as a read buffer (owned by an
// Input) and a write buffer (owned by an Output). Invariants, held at every
// observation point:
//
//	0 <= begin
//	0 <= size
//	begin+size <= capacity
//	endOfLastRecord == noRecord || begin <= endOfLastRecord < begin+size
//
// Capacity grows monotonically by doubling; it never shrinks.
type Buffer struct {
	data            []byte
	capacity        int
	begin           int
	size            int
	endOfLastRecord int
}

// newBuffer allocates a Buffer with the given initial capacity, acquiring
// its backing slice from the shared pool to cut allocator churn on the
// create-per-endpoint hot path.
func newBuffer(initialCapacity int) *Buffer {
	return &Buffer{
		data:            pool.Get(initialCapacity),
		capacity:        initialCapacity,
		begin:           0,
		size:            0,
		endOfLastRecord: noRecord,
	}
}

// release returns the backing slice to the shared pool. Call only once a
// Buffer is permanently retired (its owning endpoint has closed and will
// never be handed this Buffer again via exchange).
func (b *Buffer) release() {
	if b.data != nil {
		pool.Put(b.data)
		b.data = nil
	}
}

// bytes returns the current unread/unwritten region [begin, begin+size).
func (b *Buffer) bytes() []byte {
	return b.data[b.begin : b.begin+b.size]
}

// full reports whether there is no room left to append without growing.
func (b *Buffer) full() bool {
	return b.size == b.capacity
}

// buffered reports whether the buffer holds at least one complete record.
func (b *Buffer) buffered() bool {
	return b.endOfLastRecord >= b.begin
}

// appendable returns the slice to read/write into for the next append, i.e.
// data[begin+size : capacity].
func (b *Buffer) appendable() []byte {
	return b.data[b.begin+b.size : b.capacity]
}

// grow records that n freshly written bytes landed at the tail of the
// buffer and scans them, from the highest index down to just past the
// previous end-of-record, for the record separator. It returns true if a
// (new, later) record boundary was found.
func (b *Buffer) grow(n int) bool {
	scanFrom := b.begin + b.size + n - 1
	scanDownTo := b.endOfLastRecord + 1
	b.size += n

	found := false
	for j := scanFrom; j >= scanDownTo; j-- {
		if b.data[j] == recordSeparator {
			b.endOfLastRecord = j
			found = true
			break
		}
	}
	return found
}

// enlarge doubles (or otherwise grows to newCapacity) the buffer's backing
// storage, preserving data[begin:begin+size) and endOfLastRecord.
func (b *Buffer) enlarge(newCapacity int) {
	next := pool.Get(newCapacity)
	copy(next, b.data[b.begin:b.begin+b.size])
	b.release()
	b.data = next
	b.capacity = newCapacity
	b.begin = 0
}

// reset clears a buffer back to empty, e.g. after its contents have been
// handed to an output via exchange.
func (b *Buffer) reset() {
	b.begin = 0
	b.size = 0
	b.endOfLastRecord = noRecord
}

// moveTrailingDataAfterLastRecord moves the bytes strictly after
// src.endOfLastRecord (an in-progress, not-yet-terminated next record) from
// src into dst, which must start empty. src's size shrinks to cover only
// the delivered, complete records; dst gains the trailing partial record at
// its head.
func moveTrailingDataAfterLastRecord(dst, src *Buffer) {
	tailStart := src.endOfLastRecord + 1
	tailEnd := src.begin + src.size
	tailLen := tailEnd - tailStart
	if tailLen > 0 {
		if dst.begin+tailLen > dst.capacity {
			dst.enlarge(tailLen)
		}
		copy(dst.data[dst.begin:dst.begin+tailLen], src.data[tailStart:tailEnd])
	}
	dst.size = tailLen
	src.size = src.endOfLastRecord - src.begin + 1
}
