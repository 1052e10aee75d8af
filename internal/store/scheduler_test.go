package store

import (
	"runtime"
	"testing"
)

func TestSchedulerPriorityOrder(t *testing.T) {
	s := &Scheduler{}

	s.Push(Task{Kind: TaskReadFilesystemHeader, PageNumber: 1}, PriorityLow)
	s.Push(Task{Kind: TaskReadFilesystemHeader, PageNumber: 2}, PriorityNormal)
	s.Push(Task{Kind: TaskReadFilesystemHeader, PageNumber: 3}, PriorityHigh)

	got, ok := s.poll()
	if !ok || got.PageNumber != 3 {
		t.Fatalf("first poll = %+v, ok=%v, want PageNumber=3", got, ok)
	}

	got, ok = s.poll()
	if !ok || got.PageNumber != 2 {
		t.Fatalf("second poll = %+v, ok=%v, want PageNumber=2", got, ok)
	}

	got, ok = s.poll()
	if !ok || got.PageNumber != 1 {
		t.Fatalf("third poll = %+v, ok=%v, want PageNumber=1", got, ok)
	}

	if _, ok := s.poll(); ok {
		t.Fatalf("poll on empty scheduler returned a task")
	}
}

func TestSchedulerFIFOWithinPriority(t *testing.T) {
	s := &Scheduler{}

	s.Push(Task{Kind: TaskReadFilesystemHeader, PageNumber: 1}, PriorityNormal)
	s.Push(Task{Kind: TaskReadFilesystemHeader, PageNumber: 2}, PriorityNormal)

	first, _ := s.poll()
	second, _ := s.poll()

	if first.PageNumber != 1 || second.PageNumber != 2 {
		t.Fatalf("order = %d, %d, want 1, 2", first.PageNumber, second.PageNumber)
	}
}

func TestSchedulerDispatchToHandler(t *testing.T) {
	sched, handler := NewScheduler()

	handler.SendHigh(Task{Kind: TaskReadFilesystemHeader, PageNumber: 9})

	result := make(chan Task, 1)
	go func() {
		task, _ := handler.Poll()
		result <- task
	}()

	var task Task
	for i := 0; i < 1000; i++ {
		sched.Update()

		select {
		case task = <-result:
			if task.PageNumber != 9 {
				t.Fatalf("delivered task PageNumber = %d, want 9", task.PageNumber)
			}
			return
		default:
			runtime.Gosched()
		}
	}

	t.Fatalf("scheduler never dispatched task to poller")
}

func TestSchedulerShutdownUnblocksPollers(t *testing.T) {
	sched, handler := NewScheduler()

	reply := make(chan Task, 1)
	handler.input <- schedulerMsg{poll: reply}
	close(handler.input)

	sched.Run()

	if _, ok := <-reply; ok {
		t.Fatalf("poller received a task after shutdown, want closed channel")
	}
}
