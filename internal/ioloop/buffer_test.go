package ioloop

import "testing"

func TestBuffer_GrowFindsRecordSeparator(t *testing.T) {
	b := newBuffer(16)
	defer b.release()

	copy(b.appendable(), []byte("hello\n"))
	found := b.grow(6)
	if !found {
		t.Fatalf("expected grow to find the record separator")
	}
	if !b.buffered() {
		t.Fatalf("expected buffer to report buffered after a full record")
	}
	if got := string(b.bytes()); got != "hello\n" {
		t.Fatalf("bytes() = %q, want %q", got, "hello\n")
	}
}

func TestBuffer_GrowWithoutSeparatorIsNotBuffered(t *testing.T) {
	b := newBuffer(16)
	defer b.release()

	copy(b.appendable(), []byte("partial"))
	found := b.grow(7)
	if found {
		t.Fatalf("did not expect a record separator")
	}
	if b.buffered() {
		t.Fatalf("buffer should not report buffered without a terminated record")
	}
}

func TestBuffer_GrowFindsLatestSeparatorOnly(t *testing.T) {
	b := newBuffer(32)
	defer b.release()

	copy(b.appendable(), []byte("one\ntwo\nthr"))
	b.grow(11)
	if b.endOfLastRecord != 7 {
		t.Fatalf("endOfLastRecord = %d, want 7 (second \\n)", b.endOfLastRecord)
	}

	copy(b.appendable(), []byte("ee\n"))
	b.grow(3)
	if b.endOfLastRecord != 13 {
		t.Fatalf("endOfLastRecord = %d, want 13 (third \\n)", b.endOfLastRecord)
	}
}

func TestBuffer_Full(t *testing.T) {
	b := newBuffer(4)
	defer b.release()

	if b.full() {
		t.Fatalf("freshly created buffer should not be full")
	}
	b.grow(4)
	if !b.full() {
		t.Fatalf("buffer with size == capacity should be full")
	}
}

func TestBuffer_Enlarge(t *testing.T) {
	b := newBuffer(4)
	defer b.release()

	copy(b.appendable(), []byte("data"))
	b.grow(4)
	b.enlarge(8)

	if b.capacity != 8 {
		t.Fatalf("capacity = %d, want 8", b.capacity)
	}
	if got := string(b.bytes()); got != "data" {
		t.Fatalf("bytes() after enlarge = %q, want %q", got, "data")
	}
	if len(b.appendable()) != 4 {
		t.Fatalf("appendable() len = %d, want 4", len(b.appendable()))
	}
}

func TestBuffer_Reset(t *testing.T) {
	b := newBuffer(8)
	defer b.release()

	copy(b.appendable(), []byte("rec\n"))
	b.grow(4)
	b.reset()

	if b.size != 0 || b.begin != 0 || b.endOfLastRecord != noRecord {
		t.Fatalf("reset did not clear state: %+v", b)
	}
}

func TestMoveTrailingDataAfterLastRecord(t *testing.T) {
	src := newBuffer(32)
	dst := newBuffer(32)
	defer src.release()
	defer dst.release()

	copy(src.appendable(), []byte("one\ntwo\npartia"))
	src.grow(14)

	moveTrailingDataAfterLastRecord(dst, src)

	if got := string(dst.bytes()); got != "partia" {
		t.Fatalf("dst.bytes() = %q, want %q", got, "partia")
	}
	if got := string(src.bytes()); got != "one\ntwo\n" {
		t.Fatalf("src.bytes() = %q, want %q", got, "one\ntwo\n")
	}
}

func TestMoveTrailingDataAfterLastRecord_EnlargesDstWhenTailExceedsCapacity(t *testing.T) {
	src := newBuffer(32)
	dst := newBuffer(4)
	defer src.release()
	defer dst.release()

	tail := "a long trailing partial record with no terminator yet"
	copy(src.appendable(), []byte("rec\n"+tail))
	src.grow(4 + len(tail))

	moveTrailingDataAfterLastRecord(dst, src)

	if dst.capacity < len(tail) {
		t.Fatalf("dst.capacity = %d, want at least %d", dst.capacity, len(tail))
	}
	if got := string(dst.bytes()); got != tail {
		t.Fatalf("dst.bytes() = %q, want %q", got, tail)
	}
	if got := string(src.bytes()); got != "rec\n" {
		t.Fatalf("src.bytes() = %q, want %q", got, "rec\n")
	}
}

func TestMoveTrailingDataAfterLastRecord_NoTrailingBytes(t *testing.T) {
	src := newBuffer(32)
	dst := newBuffer(32)
	defer src.release()
	defer dst.release()

	copy(src.appendable(), []byte("one\ntwo\n"))
	src.grow(8)

	moveTrailingDataAfterLastRecord(dst, src)

	if dst.size != 0 {
		t.Fatalf("dst.size = %d, want 0", dst.size)
	}
	if got := string(src.bytes()); got != "one\ntwo\n" {
		t.Fatalf("src.bytes() = %q, want %q", got, "one\ntwo\n")
	}
}
