// Package entry implements the filesystem's directory tree: a
// sibling/child-threaded chain of fixed-size entries appended to a Book.
package entry

import (
	"encoding/binary"
	"fmt"

	"github.com/finlaydb/pagekernel/internal/catalog"
	"github.com/finlaydb/pagekernel/internal/store"
)

// Length is the on-disk size of one Entry: name, inode, sibling_addr,
// child_addr, each a big-endian u64.
const Length = 32

// DefaultReaderBufSize is a reasonable buffer size for a Reader: 32
// entries' worth of bytes, amortizing disk reads across several sibling or
// child hops.
const DefaultReaderBufSize = 32 * Length

// Entry is one node in the directory tree.
type Entry struct {
	// Name is the hash of the entry's name.
	Name uint64
	// Inode identifies the entry's metadata; zero means unreadable.
	Inode uint64
	// SiblingAddr is the book offset of this entry's next sibling, or 0.
	SiblingAddr uint64
	// ChildAddr is the book offset of this entry's first child, or 0.
	ChildAddr uint64
}

// New creates an entry with no children or siblings. An Inode of 0 makes
// the entry unreadable — a directory placeholder rather than a file.
func New(name, inode uint64) Entry {
	return Entry{Name: name, Inode: inode}
}

// IsEmpty reports whether the entry is entirely unset.
func (e Entry) IsEmpty() bool {
	return e.Name|e.SiblingAddr|e.ChildAddr == 0
}

// IsReadable reports whether the entry has a non-zero inode and so can be
// looked up in the metadata B-tree.
func (e Entry) IsReadable() bool {
	return e.Inode != 0
}

func decodeEntry(b []byte) Entry {
	return Entry{
		Name:        binary.BigEndian.Uint64(b[0:8]),
		Inode:       binary.BigEndian.Uint64(b[8:16]),
		SiblingAddr: binary.BigEndian.Uint64(b[16:24]),
		ChildAddr:   binary.BigEndian.Uint64(b[24:32]),
	}
}

func encodeEntry(e Entry) [Length]byte {
	var out [Length]byte

	binary.BigEndian.PutUint64(out[0:8], e.Name)
	binary.BigEndian.PutUint64(out[8:16], e.Inode)
	binary.BigEndian.PutUint64(out[16:24], e.SiblingAddr)
	binary.BigEndian.PutUint64(out[24:32], e.ChildAddr)

	return out
}

// ReaderMode selects what a Reader walks: a chain of siblings, or a chain
// of first-children.
type ReaderMode int

const (
	// ReaderSibling walks sibling_addr, visiting every entry at the same
	// tree depth.
	ReaderSibling ReaderMode = iota
	// ReaderChild walks child_addr, descending one level per step.
	ReaderChild
)

// Reader walks a chain of entries starting at an offset, buffering reads
// from the underlying Book so consecutive steps rarely need a fresh read.
type Reader struct {
	book      *store.Book
	offset    uint64
	bufOffset uint64
	buf       []byte
	bufSize   uint64
	mode      ReaderMode
	done      bool
}

// newReader builds a Reader over book starting at offset.
func newReader(book *store.Book, offset uint64, mode ReaderMode, bufSize uint64) *Reader {
	return &Reader{book: book, offset: offset, mode: mode, bufSize: bufSize}
}

// Next returns the entry at the reader's current offset and advances to
// its sibling or child (per Mode), or reports ok=false once the chain ends
// or an empty slot is reached.
func (r *Reader) Next() (offset uint64, entry Entry, ok bool) {
	if r.done {
		return 0, Entry{}, false
	}

	if len(r.buf) == 0 || (r.offset > r.bufOffset && r.offset-r.bufOffset > r.bufSize-Length) || r.bufOffset > r.offset {
		r.bufOffset = r.offset
		r.buf = r.book.Read(r.offset, r.bufSize)
	}

	i := r.offset - r.bufOffset
	entry = decodeEntry(r.buf[i : i+Length])

	if entry.IsEmpty() {
		r.done = true
		return 0, Entry{}, false
	}

	offset = r.offset

	switch {
	case r.mode == ReaderSibling && entry.SiblingAddr != 0:
		r.offset = entry.SiblingAddr
	case r.mode == ReaderChild && entry.ChildAddr != 0:
		r.offset = entry.ChildAddr
	default:
		r.done = true
	}

	return offset, entry, true
}

// Last drains the reader and returns its final (offset, entry) pair, or
// ok=false if the reader produced nothing.
func (r *Reader) Last() (offset uint64, entry Entry, ok bool) {
	for {
		o, e, more := r.Next()
		if !more {
			return offset, entry, ok
		}

		offset, entry, ok = o, e, true
	}
}

// Tree is the filesystem's directory tree: a book holding a chain of
// Entry records plus an 8-byte header at offset 0 recording the address of
// the most recently appended entry (after a named insert, the end of that
// entry's name blob); the next entry is appended Length bytes past it.
// checksum and compression are the
// algorithm tags recorded in the container's FilesystemHeader
// (NamesChecksum/NamesCompression/NamesCompressionLevel): every entry
// inserted through the Named* calls below has its name hashed and
// compressed under these, so a header built from operator config (see
// cmd/pagekerneld) actually governs what happens to a name on disk.
type Tree struct {
	book          *store.Book
	lastEntryAddr uint64
	checksum      catalog.Checksum
	compression   catalog.Compression
	level         catalog.CompressionLevel
}

// RootOffset is the book offset of the root entry. Insert* calls against
// offsets below RootOffset would collide with the tree's own bookkeeping
// header and must never be used.
const RootOffset = 8

// Open builds a Tree over book, reading the last-entry-address header at
// offset 0. A zero header (a brand new book) defaults to RootOffset. The
// checksum and compression tags come from the container's
// FilesystemHeader and govern every Named* insert and ReadName call made
// against the returned Tree.
func Open(book *store.Book, checksum catalog.Checksum, compression catalog.Compression, level catalog.CompressionLevel) *Tree {
	raw := book.Read(0, 8)
	last := binary.BigEndian.Uint64(raw)

	if last == 0 {
		last = RootOffset
	}

	return &Tree{
		book:          book,
		lastEntryAddr: last,
		checksum:      checksum,
		compression:   compression,
		level:         level,
	}
}

// HashName returns name's checksum under the tree's configured algorithm —
// the same value stored in an Entry's Name field by InsertNamedChild.
func (t *Tree) HashName(name string) uint64 {
	return t.checksum.Sum([]byte(name))
}

// Read returns the entry stored at offset.
func (t *Tree) Read(offset uint64) Entry {
	return decodeEntry(t.book.Read(offset, Length))
}

// Write stores entry at offset.
func (t *Tree) Write(offset uint64, entry Entry) {
	buf := encodeEntry(entry)
	t.book.Write(offset, buf[:])
}

// ReadRoot returns a Reader over the root entry's siblings.
func (t *Tree) ReadRoot(bufSize uint64) *Reader {
	return t.Reader(RootOffset, ReaderSibling, bufSize)
}

// Reader builds a Reader starting at offset. Offsets below RootOffset must
// never be used: the first 8 bytes of the book hold the tree's own
// bookkeeping header, not an entry.
func (t *Tree) Reader(offset uint64, mode ReaderMode, bufSize uint64) *Reader {
	return newReader(t.book, offset, mode, bufSize)
}

func (t *Tree) appendEntry(entry Entry) uint64 {
	i := t.lastEntryAddr + Length
	t.lastEntryAddr = i

	buf := encodeEntry(entry)
	t.book.Write(i, buf[:])

	var header [8]byte
	binary.BigEndian.PutUint64(header[:], t.lastEntryAddr)
	t.book.Write(0, header[:])

	return i
}

// nameBlobLenLen is the size in bytes of the length prefix written before
// a named entry's compressed name blob.
const nameBlobLenLen = 4

// appendNamedEntry appends entry immediately followed by a length-prefixed
// blob of name compressed under the tree's configured algorithm, advances
// the tree's bookkeeping past both, and returns entry's offset. The 32-byte
// Entry format itself never changes size — the compressed name rides
// alongside it in the book, not inside it — so on-disk entries stay
// byte-compatible with plain (unnamed) ones; only Tree, which wrote the
// blob, knows to look for it via ReadName.
func (t *Tree) appendNamedEntry(entry Entry, name string) (uint64, error) {
	compressed, err := t.compression.Compress([]byte(name), t.level)
	if err != nil {
		return 0, fmt.Errorf("entry: compress name: %w", err)
	}

	i := t.lastEntryAddr + Length

	buf := encodeEntry(entry)
	t.book.Write(i, buf[:])

	var lenBuf [nameBlobLenLen]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(compressed)))
	t.book.Write(i+Length, lenBuf[:])
	t.book.Write(i+Length+nameBlobLenLen, compressed)

	t.lastEntryAddr = i + Length + nameBlobLenLen + uint64(len(compressed))

	var header [8]byte
	binary.BigEndian.PutUint64(header[:], t.lastEntryAddr)
	t.book.Write(0, header[:])

	return i, nil
}

// ReadName decompresses and returns the literal name stored alongside the
// entry at offset by InsertNamedChild, using the tree's configured
// compression algorithm.
func (t *Tree) ReadName(offset uint64) (string, error) {
	lenBuf := t.book.Read(offset+Length, nameBlobLenLen)
	n := binary.BigEndian.Uint32(lenBuf)

	compressed := t.book.Read(offset+Length+nameBlobLenLen, uint64(n))

	raw, err := t.compression.Decompress(compressed)
	if err != nil {
		return "", fmt.Errorf("entry: decompress name: %w", err)
	}

	return string(raw), nil
}

// InsertNamedChild inserts a new child entry under offset holding name and
// inode: name is hashed into the new Entry's Name field with the tree's
// configured checksum algorithm, and a compressed copy of name is stored
// alongside the entry (recoverable with ReadName), both per the tags in
// the container's FilesystemHeader. Returns the offset the new entry was
// written to.
func (t *Tree) InsertNamedChild(offset uint64, name string, inode uint64, bufSize uint64) (uint64, error) {
	parent := t.Read(offset)

	i, err := t.appendNamedEntry(New(t.HashName(name), inode), name)
	if err != nil {
		return 0, err
	}

	if parent.ChildAddr == 0 {
		parent.ChildAddr = i
		t.Write(offset, parent)
		return i, nil
	}

	reader := t.Reader(parent.ChildAddr, ReaderSibling, bufSize)

	lastOffset, lastChild, ok := reader.Last()
	if !ok {
		parent.ChildAddr = i
		t.Write(offset, parent)
		return i, nil
	}

	lastChild.SiblingAddr = i
	t.Write(lastOffset, lastChild)

	return i, nil
}

// InsertChild inserts entry as a child of the entry stored at offset,
// appending it after whichever other children already exist, and returns
// the offset the new entry was written to.
func (t *Tree) InsertChild(offset uint64, entry Entry, bufSize uint64) uint64 {
	parent := t.Read(offset)

	i := t.appendEntry(entry)

	if parent.ChildAddr == 0 {
		parent.ChildAddr = i
		t.Write(offset, parent)
		return i
	}

	reader := t.Reader(parent.ChildAddr, ReaderSibling, bufSize)

	lastOffset, lastChild, ok := reader.Last()
	if !ok {
		// Unreachable in practice: parent.ChildAddr is non-zero, so the
		// reader must yield at least that one entry.
		parent.ChildAddr = i
		t.Write(offset, parent)
		return i
	}

	lastChild.SiblingAddr = i
	t.Write(lastOffset, lastChild)

	return i
}

// InsertSibling inserts entry as a sibling of the entry stored at offset,
// appending it after whichever other siblings already exist, and returns
// the offset the new entry was written to.
func (t *Tree) InsertSibling(offset uint64, entry Entry, bufSize uint64) uint64 {
	reader := t.Reader(offset, ReaderSibling, bufSize)

	lastOffset, lastParent, ok := reader.Last()
	if !ok {
		// Nothing at offset yet: write directly, no append needed.
		t.Write(offset, entry)
		return offset
	}

	i := t.appendEntry(entry)

	lastParent.SiblingAddr = i
	t.Write(lastOffset, lastParent)

	return i
}
