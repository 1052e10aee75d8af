package btree

import "github.com/finlaydb/pagekernel/internal/store"

// Tree is a disk-resident B-tree rooted at EntryPage, keyed by fixed-size
// KeySize/ValueSize byte slices. It is not self-balancing: once a page
// fills up, insert appends a brand new page rather than splitting and
// rebalancing, trading search time for dead-simple, append-only writes.
type Tree struct {
	EntryPage uint32
	PageSize  uint64
	KeySize   int
	ValueSize int

	handler *store.Handler
}

// New builds a Tree over an already-created entry page.
func New(entryPage uint32, pageSize uint64, keySize, valueSize int, handler *store.Handler) *Tree {
	return &Tree{
		EntryPage: entryPage,
		PageSize:  pageSize,
		KeySize:   keySize,
		ValueSize: valueSize,
		handler:   handler,
	}
}

// recordSize returns this tree's on-disk record size.
func (t *Tree) recordSize() int { return recordSize(t.KeySize, t.ValueSize) }

// recordShift returns this tree's record shift (see recordShift doc).
func (t *Tree) recordShift() int { return recordShift(t.KeySize, t.ValueSize) }

// MaxRecords returns how many records fit on a single page: the largest n
// with n*recordShift + 4 <= PageSize. Neighboring records share their
// boundary address field, so each record costs only recordShift bytes and a
// page holds more records than a naive page_size/record_size division
// would suggest (12 instead of 10 for 8-byte keys and values on a 256-byte
// page).
func (t *Tree) MaxRecords() uint64 {
	shift := uint64(t.recordShift())
	size := uint64(t.recordSize())

	pages := t.PageSize / shift

	if pages*shift+(size-shift) <= t.PageSize {
		return pages
	}

	return pages - 1
}

func (t *Tree) readPage(pageNumber uint32) []byte {
	reply := make(chan []byte, 1)
	t.handler.SendNormal(store.Task{
		Kind:       store.TaskReadPage,
		PageNumber: pageNumber,
		Offset:     0,
		Length:     t.PageSize,
		ReplyBytes: reply,
	})
	return <-reply
}

func (t *Tree) writePage(pageNumber uint32, offset uint64, bytes []byte) {
	t.handler.SendNormal(store.Task{
		Kind:       store.TaskWritePage,
		PageNumber: pageNumber,
		Offset:     offset,
		Bytes:      bytes,
	})
}

func (t *Tree) createPage() uint32 {
	reply := make(chan *store.Page, 1)
	t.handler.SendNormal(store.Task{
		Kind:      store.TaskCreatePage,
		ReplyPage: reply,
	})
	return (<-reply).Number()
}

// Insert writes value under key, updating it in place if key already
// exists. key must be exactly KeySize bytes and value exactly ValueSize
// bytes.
func (t *Tree) Insert(key, value []byte) {
	currPage := t.EntryPage
	shift := uint64(t.recordShift())

	for {
		body := t.readPage(currPage)

		var (
			i        uint64
			havePrev bool
			prevIdx  uint64
			prevRec  Record
			jump     bool
		)

		rest := body

		for {
			rec, next, ok := decodeRecord(rest, t.KeySize, t.ValueSize)
			if !ok {
				break
			}
			rest = next

			switch {
			case rec.Key == nil:
				newRec := NewRecord(key, value)
				t.writePage(currPage, i, encodeRecord(newRec, t.KeySize, t.ValueSize))
				return

			case bytesEqual(rec.Key, key):
				rec.Value = value
				t.writePage(currPage, i, encodeRecord(rec, t.KeySize, t.ValueSize))
				return

			case bytesGreater(rec.Key, key):
				if rec.LeftAddr != nil {
					currPage = *rec.LeftAddr
					jump = true
				} else {
					newPage := t.createPage()
					addr := newPage
					rec.LeftAddr = &addr
					t.writePage(currPage, i, encodeRecord(rec, t.KeySize, t.ValueSize))
					currPage = newPage
					jump = true
				}
			}

			if jump {
				break
			}

			havePrev = true
			prevIdx = i
			prevRec = rec

			i += shift
		}

		if jump {
			continue
		}

		if havePrev {
			if prevRec.RightAddr != nil {
				currPage = *prevRec.RightAddr
				continue
			}

			if prevIdx+shift+shift <= t.PageSize {
				// Safe to write directly: this slot only overlaps
				// prevRec's unset right_addr field.
				newRec := NewRecord(key, value)
				t.writePage(currPage, prevIdx+shift, encodeRecord(newRec, t.KeySize, t.ValueSize))
				return
			}

			newPage := t.createPage()
			addr := newPage
			prevRec.RightAddr = &addr
			t.writePage(currPage, prevIdx, encodeRecord(prevRec, t.KeySize, t.ValueSize))
			currPage = newPage
			continue
		}

		newRec := NewRecord(key, value)
		t.writePage(currPage, 0, encodeRecord(newRec, t.KeySize, t.ValueSize))
		return
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// bytesGreater reports whether a sorts after b under big-endian,
// fixed-width byte comparison — the same ordering big-endian integer keys
// give a Rust > comparison. Equal inputs report false.
func bytesGreater(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}
