package nedb

import "sync"

// Task is one unit of work pushed onto an Executor. done must be called
// exactly once, from anywhere, to signal completion and let the next
// queued task run.
type Task struct {
	run  func(done func())
}

// NewTask wraps run into a Task. run must invoke the done callback it is
// given exactly once, synchronously or asynchronously, to complete.
func NewTask(run func(done func())) *Task {
	return &Task{run: run}
}

// Executor is a single-consumer FIFO task queue with a buffered pre-ready
// phase (spec §4.4). Before ProcessBuffer is called, pushed tasks
// accumulate in arrival order without running (unless forceQueuing is set,
// letting an internal boot task — e.g. a persistence replay — jump ahead of
// user work even before the ready transition). After ProcessBuffer, the
// buffer drains into the live queue in arrival order and every subsequent
// push goes straight to the live queue. Exactly one task is ever running;
// a task completes only when it invokes the completion signal it was
// handed.
type Executor struct {
	mu       sync.Mutex
	ready    bool
	buffer   []*Task
	queue    []*Task
	running  bool
}

// NewExecutor returns an Executor in the initial buffered state.
func NewExecutor() *Executor {
	return &Executor{}
}

// Push enqueues task. If the executor is ready, or forceQueuing is true,
// the task joins the live queue; otherwise it joins the pre-ready buffer.
func (e *Executor) Push(task *Task, forceQueuing bool) {
	e.mu.Lock()
	if e.ready || forceQueuing {
		e.queue = append(e.queue, task)
	} else {
		e.buffer = append(e.buffer, task)
	}
	startNow := !e.running
	if startNow {
		e.running = true
	}
	e.mu.Unlock()

	if startNow {
		e.runNext()
	}
}

// ProcessBuffer transitions the executor to the ready state, draining the
// pre-ready buffer into the live queue in its original arrival order, behind
// any task already force-queued.
func (e *Executor) ProcessBuffer() {
	e.mu.Lock()
	if e.ready {
		e.mu.Unlock()
		return
	}
	e.ready = true
	if len(e.buffer) > 0 {
		e.queue = append(e.queue, e.buffer...)
		e.buffer = nil
	}
	startNow := !e.running && len(e.queue) > 0
	if startNow {
		e.running = true
	}
	e.mu.Unlock()

	if startNow {
		e.runNext()
	}
}

// runNext pops and runs the head of the live queue; when that task
// completes it recurses (tail-call style, via the done callback) onto the
// next queued task, or marks the executor idle.
func (e *Executor) runNext() {
	e.mu.Lock()
	if len(e.queue) == 0 {
		e.running = false
		e.mu.Unlock()
		return
	}
	task := e.queue[0]
	e.queue = e.queue[1:]
	e.mu.Unlock()

	var once sync.Once
	task.run(func() {
		once.Do(e.runNext)
	})
}

// Pending reports the number of tasks awaiting a run (buffered + queued),
// not counting one currently executing.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.buffer) + len(e.queue)
}

// IsReady reports whether ProcessBuffer has been called.
func (e *Executor) IsReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}
