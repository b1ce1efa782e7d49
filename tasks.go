package nedb

// runTask pushes fn onto e as a single task and blocks until it completes,
// returning its result. This gives the public API a synchronous call
// shape while every mutation still passes through the executor's FIFO
// queue (spec §4.4), so ordering and the one-task-at-a-time atomicity
// boundary (spec §5) hold regardless of how many goroutines call in
// concurrently.
func runTask[T any](e *Executor, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	e.Push(NewTask(func(done func()) {
		v, err := fn()
		ch <- result{v: v, err: err}
		done()
	}), false)
	r := <-ch
	return r.v, r.err
}
