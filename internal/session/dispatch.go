package session

import "sync"

// dispatcher delivers transitions to the listener on its own goroutine, in
// the order they were pushed. Listeners may call back into the session.
type dispatcher struct {
	fn func(Transition)

	mu      sync.Mutex
	queue   []Transition
	stopped bool
	wake    chan struct{}
	stop    chan struct{}
	closer  sync.Once
}

func newDispatcher(fn func(Transition)) *dispatcher {
	d := &dispatcher{
		fn:   fn,
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *dispatcher) push(t Transition) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, t)
	d.mu.Unlock()
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) run() {
	for {
		select {
		case <-d.stop:
			return
		case <-d.wake:
		}
		for {
			d.mu.Lock()
			if d.stopped {
				d.mu.Unlock()
				return
			}
			if len(d.queue) == 0 {
				d.mu.Unlock()
				break
			}
			t := d.queue[0]
			d.queue = d.queue[1:]
			d.mu.Unlock()
			d.fn(t)
		}
	}
}

// close drops undelivered transitions and stops the goroutine. A transition
// dequeued before close is still handed to fn; nothing is dequeued after.
func (d *dispatcher) close() {
	d.closer.Do(func() {
		d.mu.Lock()
		d.stopped = true
		d.queue = nil
		d.mu.Unlock()
		close(d.stop)
	})
}
