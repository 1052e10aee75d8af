package store

import (
	"log"

	"github.com/google/uuid"
)

// Worker is the only thing that ever touches a Container. It polls the
// scheduler for one Task at a time and executes it against the container,
// replying on whichever of the task's channels applies. Page, Book, and
// everything built on top of them only ever see a Handler.
type Worker struct {
	id        uuid.UUID
	container Container
	handler   *Handler
	header    FilesystemHeader
}

// NewWorker opens a Worker over container. If the container is too short
// to hold a filesystem header, freshHeader is written as-is (callers
// typically build it from on-disk defaults or from loaded configuration —
// see config.Load and cmd/pagekerneld); otherwise the existing header is
// read from the container and cached, and freshHeader is ignored. Each
// Worker gets a random ID, available through ID(); the worker's own log
// lines do not include it.
func NewWorker(container Container, handler *Handler, freshHeader FilesystemHeader) (*Worker, error) {
	w := &Worker{id: uuid.New(), container: container, handler: handler}

	length, err := container.Len()
	if err != nil {
		return nil, err
	}

	if length < FSHeaderLen {
		w.header = freshHeader
		buf := MarshalFilesystemHeader(w.header)

		if err := container.Write(0, buf[:]); err != nil {
			return nil, err
		}

		return w, nil
	}

	buf, err := container.Read(0, FSHeaderLen)
	if err != nil {
		return nil, err
	}

	w.header = UnmarshalFilesystemHeader(buf)

	return w, nil
}

// Handler returns the Handler other components should use to reach this
// Worker.
func (w *Worker) Handler() *Handler {
	return w.handler
}

// ID returns this worker's randomly assigned identifier, for correlating
// log lines across daemon instances sharing a log stream.
func (w *Worker) ID() uuid.UUID {
	return w.id
}

// Run polls the scheduler and executes tasks until the scheduler shuts
// down. It is meant to run on its own goroutine for the lifetime of the
// container.
func (w *Worker) Run() {
	for {
		task, ok := w.handler.Poll()
		if !ok {
			return
		}

		w.execute(task)
	}
}

func (w *Worker) execute(task Task) {
	switch task.Kind {
	case TaskReadFilesystemHeader:
		task.ReplyHeader <- w.header

	case TaskWriteFilesystemHeader:
		w.header = task.Header
		buf := MarshalFilesystemHeader(w.header)

		if err := w.container.Write(0, buf[:]); err != nil {
			log.Printf("store: write filesystem header: %s", err)
		}

	case TaskCreatePage:
		task.ReplyPage <- w.createPage(task.ParentPageNumber)

	case TaskLinkPageForward:
		w.linkPageForward(task.PageNumber, task.NextPageNumber)

	case TaskReadPageHeader:
		task.ReplyPageHeader <- w.readPageHeader(task.PageNumber)

	case TaskWritePageHeader:
		w.writePageHeader(task.PageNumber, task.PageHeader)

	case TaskReadPage:
		task.ReplyBytes <- w.readPage(task.PageNumber, task.Offset, task.Length)

	case TaskWritePage:
		tail := w.writePage(task.PageNumber, task.Offset, task.Bytes)
		if task.ReplyTail != nil {
			task.ReplyTail <- tail
		}
	}
}

// createPage appends a fresh, blank page and returns its handle. If parent
// is non-nil, the new page's header records it as prev (but, per spec.md
// §4.D, does not itself touch the parent's next pointer — that requires a
// separate LinkPageForward). The page number of a brand new page is always
// the count of pages already on disk: pages are never deallocated, so the
// container's length alone determines the next number.
func (w *Worker) createPage(parent *uint32) *Page {
	length, err := w.container.Len()
	if err != nil {
		log.Printf("store: create page: %s", err)
		return NewPage(0, w.handler)
	}

	var pageNumber uint32

	if length >= FSHeaderLen {
		stride := PageStride(w.header.PageSize)
		used := uint64(length) - FSHeaderLen
		// Round up per spec.md §4.D: pages are always appended whole by
		// this package, so used is normally an exact multiple of stride,
		// but a container grown by some other means (e.g. truncated
		// mid-page) must still land the new page after any partial one.
		pageNumber = uint32((used + stride - 1) / stride)
	}

	header := PageHeader{}
	if parent != nil {
		header.PrevPageNumber = *parent
		header.HasPrev = true
	}

	headerBuf := MarshalPageHeader(header)
	body := make([]byte, w.header.PageSize)

	offset := PageOffset(pageNumber, w.header.PageSize)

	if err := w.container.Write(offset, headerBuf[:]); err != nil {
		log.Printf("store: create page %d: write header: %s", pageNumber, err)
	}

	if err := w.container.Write(offset+PageHeaderLen, body); err != nil {
		log.Printf("store: create page %d: write body: %s", pageNumber, err)
	}

	return NewPage(pageNumber, w.handler)
}

// linkPageForward sets pageNumber's next pointer to nextPageNumber. Only
// the forward link is set; the prev link of a new page is written by
// createPage, never here (see DESIGN.md).
func (w *Worker) linkPageForward(pageNumber, nextPageNumber uint32) {
	header := w.readPageHeader(pageNumber)
	header.NextPageNumber = nextPageNumber
	header.HasNext = true
	w.writePageHeader(pageNumber, header)
}

func (w *Worker) readPageHeader(pageNumber uint32) PageHeader {
	offset := PageOffset(pageNumber, w.header.PageSize)

	buf, err := w.container.Read(offset, PageHeaderLen)
	if err != nil {
		log.Printf("store: read page header %d: %s", pageNumber, err)
		return PageHeader{}
	}

	return UnmarshalPageHeader(buf)
}

func (w *Worker) writePageHeader(pageNumber uint32, header PageHeader) {
	offset := PageOffset(pageNumber, w.header.PageSize)
	buf := MarshalPageHeader(header)

	if err := w.container.Write(offset, buf[:]); err != nil {
		log.Printf("store: write page header %d: %s", pageNumber, err)
	}
}

// readPage reads up to length bytes from a single page's body. Offsets at
// or past the page size, or a zero length, yield an empty read rather than
// an error: a single page never looks past its own boundary.
func (w *Worker) readPage(pageNumber uint32, offset, length uint64) []byte {
	if offset >= w.header.PageSize || length == 0 {
		return nil
	}

	length = min(length, w.header.PageSize-offset)

	base := PageOffset(pageNumber, w.header.PageSize)

	buf, err := w.container.Read(base+PageHeaderLen+int64(offset), int(length))
	if err != nil {
		log.Printf("store: read page %d: %s", pageNumber, err)
		return nil
	}

	return buf
}

// writePage writes as much of bytes as fits in a single page's body
// starting at offset, and returns whatever didn't fit so the caller can
// carry it into the next page.
func (w *Worker) writePage(pageNumber uint32, offset uint64, bytes []byte) []byte {
	if offset >= w.header.PageSize {
		return bytes
	}

	split := w.header.PageSize - offset

	body := bytes
	var tail []byte

	if uint64(len(bytes)) > split {
		body = bytes[:split]
		tail = bytes[split:]
	}

	base := PageOffset(pageNumber, w.header.PageSize)

	if err := w.container.Write(base+PageHeaderLen+int64(offset), body); err != nil {
		log.Printf("store: write page %d: %s", pageNumber, err)
	}

	return tail
}
