package ui

import "sync"

// Container owns the client State. Updates are serialised and subscribers
// see snapshots in the same order the updates were applied.
//
// Subscribers run synchronously on the updating goroutine and must not call
// Update themselves.
type Container struct {
	mu    sync.Mutex
	state State

	// notifyMu is taken before mu is released so notification order matches
	// update order.
	notifyMu sync.Mutex
	subs     map[int]func(State)
	nextSub  int
}

// NewContainer returns a Container holding the initial state: signed out,
// all modals hidden, login tab active, world view map.
func NewContainer() *Container {
	return &Container{
		state: State{
			ActiveTab: TabLogin,
			Zoom:      DefaultZoom,
		},
		subs: make(map[int]func(State)),
	}
}

// Read returns a snapshot of the current state.
func (c *Container) Read() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Update applies fn to the state and notifies subscribers with the result.
func (c *Container) Update(fn func(*State)) {
	c.mu.Lock()
	fn(&c.state)
	snap := c.state.clone()
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, id := range c.subscriberIDs() {
		if sub, ok := c.subs[id]; ok {
			sub(snap)
		}
	}
}

// Subscribe registers fn for every future snapshot. The returned function
// removes the subscription.
func (c *Container) Subscribe(fn func(State)) (unsubscribe func()) {
	c.notifyMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.notifyMu.Unlock()

	return func() {
		c.notifyMu.Lock()
		delete(c.subs, id)
		c.notifyMu.Unlock()
	}
}

// subscriberIDs returns registration order. Callers hold notifyMu.
func (c *Container) subscriberIDs() []int {
	ids := make([]int, 0, len(c.subs))
	for id := 0; id < c.nextSub; id++ {
		if _, ok := c.subs[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
