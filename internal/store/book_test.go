package store

import "testing"

// TestBookReadAcrossPageBoundary is spec.md's S5: with two pages filled with
// distinct bytes, a read straddling the boundary returns the concatenation
// of both halves.
func TestBookReadAcrossPageBoundary(t *testing.T) {
	const pageSize = 64

	handler := startKernel(t, pageSize)

	page := NewPage(0, handler)
	book := OpenBook(page, handler)

	page0 := make([]byte, pageSize)
	for i := range page0 {
		page0[i] = 0x01
	}
	book.Write(0, page0)

	page1 := make([]byte, pageSize)
	for i := range page1 {
		page1[i] = 0x02
	}
	book.Write(pageSize, page1)

	got := book.Read(pageSize/2, pageSize)

	want := make([]byte, pageSize)
	for i := 0; i < pageSize/2; i++ {
		want[i] = 0x01
	}
	for i := pageSize / 2; i < pageSize; i++ {
		want[i] = 0x02
	}

	if string(got) != string(want) {
		t.Fatalf("Read across page boundary = %v, want %v", got, want)
	}
}

// TestBookOverwriteSpanningFivePages is spec.md's S6: a single write spanning
// five pages' worth of bytes round-trips exactly.
func TestBookOverwriteSpanningFivePages(t *testing.T) {
	const pageSize = 64

	handler := startKernel(t, pageSize)

	page := NewPage(0, handler)
	book := OpenBook(page, handler)

	payload := make([]byte, 4*pageSize+1)
	for i := range payload {
		payload[i] = 0x11
	}

	offset := uint64(pageSize/2 - 1)

	book.Write(offset, payload)
	got := book.Read(offset, uint64(len(payload)))

	if len(got) != len(payload) {
		t.Fatalf("Read length = %d, want %d", len(got), len(payload))
	}

	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("byte %d = 0x%02x, want 0x%02x", i, got[i], payload[i])
		}
	}
}

// TestBookPagesCountsChainLength exercises Book.Pages() without growing the
// chain: it should reflect exactly how many pages are currently linked.
func TestBookPagesCountsChainLength(t *testing.T) {
	const pageSize = 16

	handler := startKernel(t, pageSize)

	page := NewPage(0, handler)
	book := OpenBook(page, handler)

	if got := book.Pages(); got != 1 {
		t.Fatalf("Pages() on a fresh book = %d, want 1", got)
	}

	book.Write(0, make([]byte, 3*pageSize))

	if got := book.Pages(); got != 3 {
		t.Fatalf("Pages() after writing 3 pages = %d, want 3", got)
	}
}
