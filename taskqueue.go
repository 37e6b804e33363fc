package canopy

import (
	"sync"
	"time"
)

// TaskQueue is a FIFO of functions executed on the render-loop goroutine.
// Post may be called from any goroutine.
type TaskQueue struct {
	mu     sync.Mutex
	tasks  []func()
	signal chan struct{}
}

// NewTaskQueue creates an empty queue.
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{signal: make(chan struct{}, 1)}
}

// Post appends fn and wakes a pending WaitQueue.
func (q *TaskQueue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
	q.wake()
}

func (q *TaskQueue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Execute runs every task queued before the call and returns how many ran.
// Tasks posted while executing run on the next call.
func (q *TaskQueue) Execute() int {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

// Len returns the number of pending tasks.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// WaitQueue blocks until a task is posted or timeout elapses. It reports
// whether tasks are pending.
func (q *TaskQueue) WaitQueue(timeout time.Duration) bool {
	if q.Len() > 0 {
		return true
	}
	if timeout <= 0 {
		return false
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-q.signal:
	case <-timer.C:
	}
	return q.Len() > 0
}
