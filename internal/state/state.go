// Package state holds the in-memory client state: who is signed in, the loaded
// notes and tags, and UI preferences. Nothing here is persisted; a fresh process
// starts empty.
//
// Every setter replaces its field wholesale and then notifies subscribers
// synchronously with a snapshot taken after the change.
package state

import (
	"slices"
	"sync"

	"modernnotes/internal/model"
)

// Snapshot is a copy of the container at one point in time.
type Snapshot struct {
	User     *model.User
	Notes    []model.Note
	Tags     []model.Tag
	DarkMode bool
	Loading  bool
}

type Container struct {
	mu       sync.RWMutex
	user     *model.User
	notes    []model.Note
	tags     []model.Tag
	darkMode bool
	loading  bool

	subs    map[uint64]func(Snapshot)
	nextSub uint64
}

func New() *Container {
	return &Container{subs: map[uint64]func(Snapshot){}}
}

func (c *Container) SetUser(u *model.User) {
	c.update(func() {
		if u == nil {
			c.user = nil
			return
		}
		cp := *u
		c.user = &cp
	})
}

func (c *Container) SetNotes(notes []model.Note) {
	c.update(func() { c.notes = cloneNotes(notes) })
}

func (c *Container) SetTags(tags []model.Tag) {
	c.update(func() { c.tags = slices.Clone(tags) })
}

func (c *Container) ToggleDarkMode() {
	c.update(func() { c.darkMode = !c.darkMode })
}

func (c *Container) SetLoading(loading bool) {
	c.update(func() { c.loading = loading })
}

func (c *Container) User() *model.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	cp := *c.user
	return &cp
}

func (c *Container) Notes() []model.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneNotes(c.notes)
}

func (c *Container) Tags() []model.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tags)
}

func (c *Container) DarkMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.darkMode
}

func (c *Container) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Container) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Subscribe calls fn after every change until cancel is called.
func (c *Container) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

func (c *Container) update(apply func()) {
	c.mu.Lock()
	apply()
	snap := c.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (c *Container) snapshotLocked() Snapshot {
	s := Snapshot{
		Notes:    cloneNotes(c.notes),
		Tags:     slices.Clone(c.tags),
		DarkMode: c.darkMode,
		Loading:  c.loading,
	}
	if c.user != nil {
		cp := *c.user
		s.User = &cp
	}
	return s
}

func cloneNotes(in []model.Note) []model.Note {
	if in == nil {
		return nil
	}
	out := make([]model.Note, len(in))
	for i, n := range in {
		n.Tags = slices.Clone(n.Tags)
		out[i] = n
	}
	return out
}
