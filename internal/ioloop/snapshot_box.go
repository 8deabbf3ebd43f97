package ioloop

import "sync/atomic"

// snapshotBox publishes Snapshot values for lock-free concurrent reads from
// a diagnostic-handler goroutine while the loop driver keeps mutating its
// own state on its single goroutine.
type snapshotBox struct {
	p atomic.Pointer[Snapshot]
}

func (b *snapshotBox) store(s Snapshot) {
	b.p.Store(&s)
}

func (b *snapshotBox) load() Snapshot {
	p := b.p.Load()
	if p == nil {
		return Snapshot{}
	}
	return *p
}
