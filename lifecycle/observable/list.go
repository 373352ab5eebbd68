package observable

import (
	"cmp"
	"iter"
	"slices"

	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/signals"
)

type ChangeType int

const (
	ItemAdded ChangeType = iota
	ItemRemoved
	ItemChanged
	ListCleared
	ListSorted
)

func (c ChangeType) String() string {
	switch c {
	case ItemAdded:
		return "ItemAdded"
	case ItemRemoved:
		return "ItemRemoved"
	case ItemChanged:
		return "ItemChanged"
	case ListCleared:
		return "ListCleared"
	case ListSorted:
		return "ListSorted"
	}
	return "Unknown"
}

// ListChange describes one mutation. Index is -1 for whole-list changes.
type ListChange[T any] struct {
	Type    ChangeType
	Index   int
	NewItem T
	OldItem T
}

// List is a slice that notifies OnListChanged on every mutation except the
// *Silent bulk operations.
type List[T comparable] struct {
	items []T

	OnListChanged signals.Signal[ListChange[T]]
}

func NewList[T comparable](items ...T) *List[T] {
	return &List[T]{
		items:         slices.Clone(items),
		OnListChanged: signals.NewSignal[ListChange[T]](),
	}
}

func (l *List[T]) Len() int {
	return len(l.items)
}

// At panics when i is out of range, like indexing a slice.
func (l *List[T]) At(i int) T {
	return l.items[i]
}

func (l *List[T]) Set(i int, item T) {
	old := l.items[i]
	l.items[i] = item
	l.notify(ListChange[T]{Type: ItemChanged, Index: i, NewItem: item, OldItem: old})
}

func (l *List[T]) Add(item T) {
	l.items = append(l.items, item)
	l.notify(ListChange[T]{Type: ItemAdded, Index: len(l.items) - 1, NewItem: item})
}

func (l *List[T]) Insert(i int, item T) {
	l.items = slices.Insert(l.items, i, item)
	l.notify(ListChange[T]{Type: ItemAdded, Index: i, NewItem: item})
}

// Remove deletes the first occurrence of item and reports whether there was one.
func (l *List[T]) Remove(item T) bool {
	i := l.IndexOf(item)
	if i < 0 {
		return false
	}
	l.RemoveAt(i)
	return true
}

func (l *List[T]) RemoveAt(i int) {
	old := l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	l.notify(ListChange[T]{Type: ItemRemoved, Index: i, OldItem: old})
}

func (l *List[T]) Clear() {
	l.items = nil
	l.notify(ListChange[T]{Type: ListCleared, Index: -1})
}

func (l *List[T]) SortFunc(cmp func(a, b T) int) {
	slices.SortStableFunc(l.items, cmp)
	l.notify(ListChange[T]{Type: ListSorted, Index: -1})
}

func (l *List[T]) IndexOf(item T) int {
	return slices.Index(l.items, item)
}

func (l *List[T]) Contains(item T) bool {
	return l.IndexOf(item) >= 0
}

// All iterates over the items with their indexes.
func (l *List[T]) All() iter.Seq2[int, T] {
	return slices.All(l.items)
}

// Items returns a copy of the items.
func (l *List[T]) Items() []T {
	return slices.Clone(l.items)
}

func (l *List[T]) AddRangeSilent(items ...T) {
	l.items = append(l.items, items...)
}

func (l *List[T]) InsertRangeSilent(i int, items ...T) {
	l.items = slices.Insert(l.items, i, items...)
}

func (l *List[T]) notify(change ListChange[T]) {
	l.OnListChanged.Notify(change)
}

// Sort orders an ordered list ascending and notifies ListSorted.
func Sort[T cmp.Ordered](l *List[T]) {
	l.SortFunc(cmp.Compare[T])
}
