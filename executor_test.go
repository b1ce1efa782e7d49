package nedb

import (
	"sync"
	"testing"
	"time"
)

func TestExecutorRunsTasksInFIFOOrder(t *testing.T) {
	e := NewExecutor()
	e.ProcessBuffer()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(5)

	for i := 0; i < 5; i++ {
		i := i
		e.Push(NewTask(func(done func()) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
			done()
		}), false)
	}
	wg.Wait()

	for i, v := range order {
		if v != i {
			t.Fatalf("expected FIFO order 0..4, got %v", order)
		}
	}
}

func TestExecutorBuffersBeforeReady(t *testing.T) {
	e := NewExecutor()

	var ran bool
	e.Push(NewTask(func(done func()) {
		ran = true
		done()
	}), false)

	if ran {
		t.Fatal("expected task to stay buffered before ProcessBuffer")
	}
	if e.IsReady() {
		t.Fatal("expected executor not ready yet")
	}

	e.ProcessBuffer()
	if !ran {
		t.Fatal("expected buffered task to run once ProcessBuffer is called")
	}
}

func TestExecutorForceQueuingBypassesBuffer(t *testing.T) {
	e := NewExecutor()

	done := make(chan struct{})
	e.Push(NewTask(func(d func()) {
		close(done)
		d()
	}), true)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected force-queued task to run before ProcessBuffer")
	}
}

func TestExecutorWaitsForDoneBeforeNext(t *testing.T) {
	e := NewExecutor()
	e.ProcessBuffer()

	release := make(chan struct{})
	started2 := make(chan struct{})

	e.Push(NewTask(func(d func()) {
		go func() {
			<-release
			d()
		}()
	}), false)
	e.Push(NewTask(func(d func()) {
		close(started2)
		d()
	}), false)

	select {
	case <-started2:
		t.Fatal("second task must not start before the first calls done")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-started2:
	case <-time.After(time.Second):
		t.Fatal("second task never started after first completed")
	}
}
