package store

// schedulerMsg is what a Handler sends down the shared channel: either a
// task to enqueue, or a poll request waiting for the next task.
type schedulerMsg struct {
	push *pushMsg
	poll chan Task
}

type pushMsg struct {
	task     Task
	priority Priority
}

// Scheduler holds three FIFO queues, one per Priority, plus a FIFO of
// pending pollers (reply channels awaiting the next task). It has no
// notion of which worker is consuming it; any number of Handlers may push
// and poll concurrently through the shared channel.
type Scheduler struct {
	high, normal, low []Task
	pollers           []chan Task
	input             chan schedulerMsg
}

// NewScheduler creates a Scheduler and a Handler connected to it.
func NewScheduler() (*Scheduler, *Handler) {
	input := make(chan schedulerMsg, 64)

	s := &Scheduler{input: input}
	h := &Handler{input: input}

	return s, h
}

// apply classifies a single message: either a task to enqueue, or a poller
// to add to the waiting list.
func (s *Scheduler) apply(msg schedulerMsg) {
	switch {
	case msg.push != nil:
		s.Push(msg.push.task, msg.push.priority)
	case msg.poll != nil:
		s.pollers = append(s.pollers, msg.poll)
	}
}

// Update drains pending pushes/polls from the input channel without
// blocking, then hands out as many queued tasks to waiting pollers as
// possible. It returns false once the input channel has been closed and
// fully drained, signaling the caller to stop. Update never blocks; see
// Run for the loop that parks instead of spinning when idle.
func (s *Scheduler) Update() bool {
	for {
		select {
		case msg, ok := <-s.input:
			if !ok {
				return false
			}

			s.apply(msg)

		default:
			s.dispatch()
			return true
		}
	}
}

// dispatch hands queued tasks to waiting pollers, highest priority first,
// FIFO within a priority level, until one side runs out.
func (s *Scheduler) dispatch() {
	for len(s.pollers) > 0 {
		task, ok := s.poll()
		if !ok {
			return
		}

		poller := s.pollers[0]
		s.pollers = s.pollers[1:]

		// Buffered with capacity 1 and only ever sent to once, so this
		// never blocks.
		poller <- task
	}
}

// Push enqueues task at the back of its priority's queue.
func (s *Scheduler) Push(task Task, priority Priority) {
	switch priority {
	case PriorityHigh:
		s.high = append(s.high, task)
	case PriorityNormal:
		s.normal = append(s.normal, task)
	case PriorityLow:
		s.low = append(s.low, task)
	}
}

// poll removes and returns the next task in priority order: High, then
// Normal, then Low. Low is starved for as long as High or Normal keep
// receiving work — this is intentional, see spec.md §4.C.
func (s *Scheduler) poll() (Task, bool) {
	if len(s.high) > 0 {
		t := s.high[0]
		s.high = s.high[1:]
		return t, true
	}

	if len(s.normal) > 0 {
		t := s.normal[0]
		s.normal = s.normal[1:]
		return t, true
	}

	if len(s.low) > 0 {
		t := s.low[0]
		s.low = s.low[1:]
		return t, true
	}

	return Task{}, false
}

// Run pumps the scheduler until its input channel is closed and drained.
// Intended to be run on its own goroutine. Unlike calling Update in a tight
// loop, Run blocks on the input channel whenever there is nothing queued,
// so an idle scheduler parks instead of spinning a CPU core — the Go
// equivalent of the source's blocking flume::Receiver::recv. Any pollers
// still waiting when the channel closes are unblocked with a closed reply
// channel rather than left hanging forever.
func (s *Scheduler) Run() {
	for {
		msg, ok := <-s.input
		if !ok {
			break
		}

		s.apply(msg)

		if !s.Update() {
			break
		}
	}

	for _, p := range s.pollers {
		close(p)
	}
}
