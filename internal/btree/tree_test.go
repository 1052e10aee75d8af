package btree

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/finlaydb/pagekernel/internal/catalog"
	"github.com/finlaydb/pagekernel/internal/store"
)

// newTestTree wires an in-memory container through the full store pipeline
// and returns a Tree rooted on a freshly created entry page, plus a
// function reporting how many pages the container currently holds.
func newTestTree(t *testing.T, pageSize uint64) (*Tree, func() uint64) {
	t.Helper()

	container := store.NewMemoryContainer()
	sched, handler := store.NewScheduler()

	worker, err := store.NewWorker(container, handler, store.DefaultFilesystemHeader(pageSize))
	if err != nil {
		t.Fatalf("NewWorker: %s", err)
	}

	go sched.Run()
	go worker.Run()

	reply := make(chan *store.Page, 1)
	handler.SendHigh(store.Task{Kind: store.TaskCreatePage, ReplyPage: reply})
	entryPage := (<-reply).Number()

	tree := New(entryPage, pageSize, 8, 8, handler)

	pageCount := func() uint64 {
		length, err := container.Len()
		if err != nil {
			t.Fatalf("Len: %s", err)
		}

		stride := store.PageStride(pageSize)
		return uint64(length-store.FSHeaderLen) / stride
	}

	return tree, pageCount
}

func keyBytes(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func valueFor(n uint64) []byte {
	sum := catalog.ChecksumSeahash.Sum(keyBytes(n))
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, sum)
	return b
}

func TestTreeAscendingInsertFillsPages(t *testing.T) {
	const records = 128

	tree, pageCount := newTestTree(t, 256)

	for i := uint64(0); i < records; i++ {
		tree.Insert(keyBytes(i), valueFor(i))
	}

	want := uint64(math.Ceil(float64(records) / float64(tree.MaxRecords())))
	if got := pageCount(); got != want {
		t.Fatalf("pages after ascending insert = %d, want %d (max records per page = %d)", got, want, tree.MaxRecords())
	}
}

func TestTreeDescendingInsertOnePagePerRecord(t *testing.T) {
	const records = 128

	tree, pageCount := newTestTree(t, 256)

	for i := uint64(0); i < records; i++ {
		n := records - i
		tree.Insert(keyBytes(n), valueFor(n))
	}

	if got := pageCount(); got != records {
		t.Fatalf("pages after descending insert = %d, want %d", got, records)
	}
}

func TestTreeInsertThenUpdateSameKey(t *testing.T) {
	tree, _ := newTestTree(t, 256)

	tree.Insert(keyBytes(1), valueFor(1))
	tree.Insert(keyBytes(1), valueFor(2))

	body := tree.readPage(tree.EntryPage)
	rec, _, ok := decodeRecord(body, tree.KeySize, tree.ValueSize)
	if !ok {
		t.Fatalf("decodeRecord failed")
	}

	if !bytesEqual(rec.Value, valueFor(2)) {
		t.Fatalf("value after update = %v, want %v", rec.Value, valueFor(2))
	}
}

func TestMaxRecords(t *testing.T) {
	tree := &Tree{PageSize: 256, KeySize: 8, ValueSize: 8}

	max := tree.MaxRecords()
	if max == 0 {
		t.Fatalf("MaxRecords = 0, want > 0")
	}

	shift := uint64(tree.recordShift())
	if max*shift > tree.PageSize {
		t.Fatalf("MaxRecords %d * shift %d overflows page size %d", max, shift, tree.PageSize)
	}
}
