package store

// Priority controls the order in which the scheduler hands tasks to the
// worker. Starvation of Low tasks under sustained High/Normal load is
// permitted by design — see spec.md §4.C.
type Priority int

const (
	// PriorityHigh runs before all other pending operations.
	PriorityHigh Priority = iota
	// PriorityNormal is the default priority.
	PriorityNormal
	// PriorityLow only runs once High and Normal are both empty.
	PriorityLow
)

// String renders the priority for diagnostics.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// TaskKind identifies which variant of Task is populated. Go has no tagged
// union, so Task is one flat struct holding the fields of every variant
// plus a Kind discriminant — the idiomatic equivalent of the source's task
// enum.
type TaskKind int

const (
	TaskReadFilesystemHeader TaskKind = iota
	TaskWriteFilesystemHeader
	TaskCreatePage
	TaskLinkPageForward
	TaskReadPageHeader
	TaskWritePageHeader
	TaskReadPage
	TaskWritePage
)

// Task is a single low-level filesystem operation enqueued onto the
// Scheduler. Exactly the fields relevant to Kind are populated; the rest
// are zero. Reply channels are buffered with capacity 1 so the worker never
// blocks handing back a result.
type Task struct {
	Kind TaskKind

	// WriteFilesystemHeader
	Header FilesystemHeader

	// CreatePage: the parent to link the new page under, if any.
	ParentPageNumber *uint32

	// LinkPageForward, ReadPageHeader, WritePageHeader, ReadPage, WritePage
	PageNumber uint32

	// LinkPageForward
	NextPageNumber uint32

	// WritePageHeader
	PageHeader PageHeader

	// ReadPage, WritePage
	Offset uint64
	Length uint64
	Bytes  []byte

	// Reply channels. Only the ones relevant to Kind are non-nil.
	ReplyHeader     chan FilesystemHeader
	ReplyPage       chan *Page
	ReplyPageHeader chan PageHeader
	ReplyBytes      chan []byte

	// ReplyTail is WritePage's overflow-bytes channel. It is optional: a
	// nil ReplyTail means "drop any overflow" (fire-and-forget write).
	ReplyTail chan []byte
}
