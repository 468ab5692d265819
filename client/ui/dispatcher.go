package ui

import "sync"

// Dispatcher collects functions posted from any goroutine so the frame loop
// can run them in order.
type Dispatcher struct {
	lock  sync.Mutex
	queue []func()
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) Post(fn func()) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.queue = append(d.queue, fn)
}

// Drain runs everything posted so far and returns how many functions ran.
// Functions posted while draining run on the next call.
func (d *Dispatcher) Drain() int {
	d.lock.Lock()
	queue := d.queue
	d.queue = nil
	d.lock.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}
