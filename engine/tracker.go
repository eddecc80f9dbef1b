package engine

import "sync"

// tracker stamps work with a monotonically increasing version and keeps
// count of the goroutines still running it.
// All fields are guarded by the engine mutex, which idle.L is.
type tracker struct {
	version uint64
	pending int
	idle    *sync.Cond
}

// next supersedes all outstanding work and returns the new version.
func (t *tracker) next() uint64 {
	t.version++
	return t.version
}

// current reports whether work stamped with v has not been superseded.
func (t *tracker) current(v uint64) bool {
	return v == t.version
}

// goTask runs fn in its own goroutine. The caller holds the engine mutex;
// fn must not return with it held.
func (t *tracker) goTask(fn func()) {
	t.pending++
	go func() {
		defer t.done()
		fn()
	}()
}

func (t *tracker) done() {
	t.idle.L.Lock()
	defer t.idle.L.Unlock()
	t.pending--
	if t.pending == 0 {
		t.idle.Broadcast()
	}
}

// wait blocks until no task is running. The caller must not hold the engine mutex.
func (t *tracker) wait() {
	t.idle.L.Lock()
	defer t.idle.L.Unlock()
	for t.pending > 0 {
		t.idle.Wait()
	}
}
