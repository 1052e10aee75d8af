package store

// Handler is the only thing Page, Book, the B-tree and the entry tree ever
// hold onto. None of them touch a Container directly; they all push Tasks
// through a Handler and let the Worker on the other end own the container
// exclusively. A Handler is cheap to copy and safe for concurrent use by
// multiple goroutines.
type Handler struct {
	input chan schedulerMsg
}

// send pushes task onto the scheduler at the given priority.
func (h *Handler) send(task Task, priority Priority) {
	h.input <- schedulerMsg{push: &pushMsg{task: task, priority: priority}}
}

// SendHigh enqueues task with PriorityHigh.
func (h *Handler) SendHigh(task Task) { h.send(task, PriorityHigh) }

// SendNormal enqueues task with PriorityNormal.
func (h *Handler) SendNormal(task Task) { h.send(task, PriorityNormal) }

// SendLow enqueues task with PriorityLow.
func (h *Handler) SendLow(task Task) { h.send(task, PriorityLow) }

// Poll asks the scheduler for the next task in priority order, blocking
// until one is available. This is how Worker consumes the scheduler; Page,
// Book, and the B-tree never call it — they push a task carrying their own
// reply channel and receive on that directly. ok is false once the
// scheduler has shut down with nothing left to hand back.
func (h *Handler) Poll() (Task, bool) {
	reply := make(chan Task, 1)
	h.input <- schedulerMsg{poll: reply}
	task, ok := <-reply
	return task, ok
}
