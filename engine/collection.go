package engine

import "sync"

type node struct {
	inst *Instance
	next *node
}

// Collection is the set of live instances, kept as a singly linked list.
// New instances are pushed to the front. Lookups return the first match.
type Collection struct {
	mu   sync.RWMutex
	head *node
	n    int
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add pushes inst to the front of the collection.
func (c *Collection) Add(inst *Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head = &node{inst: inst, next: c.head}
	c.n++
}

// Remove unlinks inst. It returns false when inst is not in the collection.
func (c *Collection) Remove(inst *Instance) bool {
	return c.RemoveFunc(func(i *Instance) bool { return i == inst }) != nil
}

// RemoveFunc unlinks and returns the first instance matching pred.
func (c *Collection) RemoveFunc(pred func(*Instance) bool) *Instance {
	c.mu.Lock()
	defer c.mu.Unlock()

	for link := &c.head; *link != nil; link = &(*link).next {
		if pred((*link).inst) {
			inst := (*link).inst
			*link = (*link).next
			c.n--
			return inst
		}
	}
	return nil
}

// Find returns the first instance matching pred, or nil.
func (c *Collection) Find(pred func(*Instance) bool) *Instance {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for n := c.head; n != nil; n = n.next {
		if pred(n.inst) {
			return n.inst
		}
	}
	return nil
}

// FindByName returns the first instance of the component called name.
func (c *Collection) FindByName(name string) *Instance {
	return c.Find(func(i *Instance) bool { return i.Name() == name })
}

// FindBySID returns the first instance whose string id is sid.
func (c *Collection) FindBySID(sid string) *Instance {
	return c.Find(func(i *Instance) bool { return i.SID() == sid })
}

// FindByID returns the instance with numeric id id.
func (c *Collection) FindByID(id uint32) *Instance {
	return c.Find(func(i *Instance) bool { return i.ID() == id })
}

// Len returns the number of instances.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.n
}

// Snapshot returns the instances in list order.
func (c *Collection) Snapshot() []*Instance {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Instance, 0, c.n)
	for n := c.head; n != nil; n = n.next {
		out = append(out, n.inst)
	}
	return out
}

// Each calls fn for every instance in list order until fn returns false.
// fn runs on a snapshot, so it may modify the collection.
func (c *Collection) Each(fn func(*Instance) bool) {
	for _, inst := range c.Snapshot() {
		if !fn(inst) {
			return
		}
	}
}
