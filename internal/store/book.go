package store

// Book is a logical, contiguous byte stream laid over a chain of pages
// starting at entryPage. It grows the chain lazily: both Read and Write
// will create and link new pages as needed to reach the requested offset,
// even for reads past the current end of the chain. That's deliberate —
// see spec.md §9 — a Book never reports "out of bounds," it just zero-fills
// forward.
type Book struct {
	entryPage *Page
	pageSize  uint64
	handler   *Handler
}

// OpenBook builds a Book over entryPage, reading the container's page size
// from the current filesystem header.
func OpenBook(entryPage *Page, handler *Handler) *Book {
	reply := make(chan FilesystemHeader, 1)
	handler.SendNormal(Task{Kind: TaskReadFilesystemHeader, ReplyHeader: reply})
	header := <-reply

	return &Book{entryPage: entryPage, pageSize: header.PageSize, handler: handler}
}

// EntryPage returns the first page of the chain this Book reads.
func (b *Book) EntryPage() *Page {
	return b.entryPage
}

// PageSize returns the page size this Book was opened with.
func (b *Book) PageSize() uint64 {
	return b.pageSize
}

// locate walks forward from the entry page until offset falls within a
// single page, creating pages as it goes.
func (b *Book) locate(offset uint64) (*Page, uint64) {
	page := b.entryPage

	for offset >= b.pageSize {
		page = page.CreateNextPage()
		offset -= b.pageSize
	}

	return page, offset
}

// Read returns exactly length bytes starting at offset, marching across as
// many pages as needed and creating new ones past the current end of the
// chain.
func (b *Book) Read(offset uint64, length uint64) []byte {
	page, offset := b.locate(offset)

	out := make([]byte, 0, length)

	for uint64(len(out)) < length {
		remaining := length - uint64(len(out))
		out = append(out, page.Read(offset, remaining)...)

		if uint64(len(out)) >= length {
			break
		}

		page = page.CreateNextPage()
		offset = 0
	}

	return out
}

// Write writes bytes starting at offset, marching across (and creating, if
// necessary) as many pages as needed to place every byte.
func (b *Book) Write(offset uint64, bytes []byte) {
	page, offset := b.locate(offset)

	tail := page.Write(offset, bytes)
	for len(tail) > 0 {
		page = page.CreateNextPage()
		tail = page.Write(0, tail)
	}
}

// Pages returns the number of pages currently linked into this Book's
// chain, following NextPage without creating any. Unlike Read/Write, this
// never grows the chain.
func (b *Book) Pages() uint64 {
	count := uint64(1)

	for page := b.entryPage.NextPage(); page != nil; page = page.NextPage() {
		count++
	}

	return count
}
