package store

// Page is a handle onto one page in the chain: a page number plus a
// Handler to reach the worker that owns the backing container. Page never
// touches a Container itself.
type Page struct {
	number  uint32
	handler *Handler
}

// NewPage wraps pageNumber in a Page handle.
func NewPage(pageNumber uint32, handler *Handler) *Page {
	return &Page{number: pageNumber, handler: handler}
}

// Number returns the page's number.
func (p *Page) Number() uint32 {
	return p.number
}

// Header reads this page's header.
func (p *Page) Header() PageHeader {
	reply := make(chan PageHeader, 1)
	p.handler.SendHigh(Task{
		Kind:            TaskReadPageHeader,
		PageNumber:      p.number,
		ReplyPageHeader: reply,
	})
	return <-reply
}

// WriteHeader overwrites this page's header.
func (p *Page) WriteHeader(header PageHeader) {
	p.handler.SendHigh(Task{
		Kind:       TaskWritePageHeader,
		PageNumber: p.number,
		PageHeader: header,
	})
}

// NextPage returns the next page in the chain, or nil if this is the last
// page.
func (p *Page) NextPage() *Page {
	header := p.Header()
	if !header.HasNext {
		return nil
	}

	return NewPage(header.NextPageNumber, p.handler)
}

// PrevPage returns the previous page in the chain, or nil if this is the
// first page. CreateNextPage passes this page as the parent of the page it
// creates, so that new page records it as prev (see DESIGN.md); a page
// created without a parent has no prev.
func (p *Page) PrevPage() *Page {
	header := p.Header()
	if !header.HasPrev {
		return nil
	}

	return NewPage(header.PrevPageNumber, p.handler)
}

// CreateNextPage returns the next page in the chain, creating and linking a
// fresh one if this page is currently the tail.
func (p *Page) CreateNextPage() *Page {
	if next := p.NextPage(); next != nil {
		return next
	}

	replyPage := make(chan *Page, 1)
	parent := p.number
	p.handler.SendHigh(Task{
		Kind:             TaskCreatePage,
		ParentPageNumber: &parent,
		ReplyPage:        replyPage,
	})
	next := <-replyPage

	p.handler.SendHigh(Task{
		Kind:           TaskLinkPageForward,
		PageNumber:     p.number,
		NextPageNumber: next.number,
	})

	return next
}

// Read reads up to length bytes from this page's body starting at offset.
// A read that starts at or past the page size, or asks for zero bytes,
// returns an empty slice rather than an error — there is nothing past the
// edge of a single page to read.
func (p *Page) Read(offset uint64, length uint64) []byte {
	reply := make(chan []byte, 1)
	p.handler.SendNormal(Task{
		Kind:       TaskReadPage,
		PageNumber: p.number,
		Offset:     offset,
		Length:     length,
		ReplyBytes: reply,
	})
	return <-reply
}

// Write writes bytes into this page's body starting at offset, returning
// whatever portion did not fit (because it ran past the page boundary) so
// the caller can continue writing into the next page.
func (p *Page) Write(offset uint64, bytes []byte) []byte {
	reply := make(chan []byte, 1)
	p.handler.SendNormal(Task{
		Kind:       TaskWritePage,
		PageNumber: p.number,
		Offset:     offset,
		Bytes:      bytes,
		ReplyTail:  reply,
	})
	return <-reply
}
