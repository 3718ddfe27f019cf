// Package pool provides pre-allocated arenas for short-lived simulation
// objects (projectiles, explosion effects). Acquiring and releasing moves
// indices in a dense active prefix, so steady-state firing causes no
// allocation and no garbage collection pressure. A monitor adapted from the
// process resource governor watches arena utilization during long runs.
package pool

// Item is implemented by anything stored in an arena. The pool owns the
// index; items must not change it themselves.
type Item interface {
	PoolIndex() int
	SetPoolIndex(int)
}

// Arena is a fixed-capacity object pool. Slots [0, ActiveCount) are live;
// Release swaps the freed slot with the last live one, so iteration over the
// active prefix stays dense.
//
// Arenas are not safe for concurrent use; the simulation is single-threaded
// per tick and pooling here is for allocation churn, not concurrency control.
type Arena[T Item] struct {
	items  []T
	active int
}

// NewArena creates an arena of capacity items produced by the factory
func NewArena[T Item](capacity int, factory func() T) *Arena[T] {
	a := &Arena[T]{items: make([]T, capacity)}
	for i := range a.items {
		a.items[i] = factory()
		a.items[i].SetPoolIndex(i)
	}
	return a
}

// Acquire claims a free slot. Returns the zero value and false when the
// arena is exhausted; callers treat that as "no projectile this tick", not
// an error.
func (a *Arena[T]) Acquire() (T, bool) {
	var zero T
	if a.active >= len(a.items) {
		return zero, false
	}
	item := a.items[a.active]
	item.SetPoolIndex(a.active)
	a.active++
	return item, true
}

// Release returns the item's slot to the free region using swap-and-pop.
// Releasing an already-free item is a no-op.
func (a *Arena[T]) Release(item T) {
	index := item.PoolIndex()
	if index < 0 || index >= a.active {
		return
	}
	last := a.active - 1
	if index != last {
		a.items[index], a.items[last] = a.items[last], a.items[index]
		a.items[index].SetPoolIndex(index)
		a.items[last].SetPoolIndex(last)
	}
	a.active--
}

// ForEach calls fn for every live item. fn may Release the item it is given;
// iteration runs backwards over the active prefix so swap-and-pop does not
// skip entries.
func (a *Arena[T]) ForEach(fn func(T)) {
	for i := a.active - 1; i >= 0; i-- {
		fn(a.items[i])
	}
}

// ActiveCount returns the number of live items
func (a *Arena[T]) ActiveCount() int {
	return a.active
}

// Capacity returns the arena size
func (a *Arena[T]) Capacity() int {
	return len(a.items)
}

// Utilization returns the live fraction in [0, 1]
func (a *Arena[T]) Utilization() float64 {
	if len(a.items) == 0 {
		return 0
	}
	return float64(a.active) / float64(len(a.items))
}
