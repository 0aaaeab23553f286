package store

import (
	"slices"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/model"
)

// entity is implemented by *model.Product, *model.Category and the other
// record pointers through the embedded BaseModel.
type entity[T any] interface {
	*T
	GetID() string
	Base() *model.BaseModel
	Clone() T
}

// The helpers below are pure: they never touch a record that is already part
// of a collection and always return a new slice.

func insertRecord[T any, P entity[T]](list []T, rec T, id string, now time.Time) ([]T, T) {
	created := P(&rec).Clone()
	b := P(&created).Base()
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now

	next := make([]T, 0, len(list)+1)
	next = append(next, list...)
	next = append(next, created)
	return next, created
}

// updateRecord applies mutate to a copy of the record. Identity and creation
// time cannot be changed by mutate.
func updateRecord[T any, P entity[T]](list []T, id string, now time.Time, mutate func(*T)) (next []T, old T, updated T, ok bool) {
	i := indexByID[T, P](list, id)
	if i < 0 {
		return list, old, updated, false
	}
	old = list[i]
	updated = P(&old).Clone()
	mutate(&updated)

	b := P(&updated).Base()
	ob := P(&old).Base()
	b.ID = ob.ID
	b.CreatedAt = ob.CreatedAt
	b.UpdatedAt = now

	next = slices.Clone(list)
	next[i] = updated
	return next, old, updated, true
}

func deleteRecord[T any, P entity[T]](list []T, id string) (next []T, removed T, ok bool) {
	i := indexByID[T, P](list, id)
	if i < 0 {
		return list, removed, false
	}
	removed = list[i]
	next = make([]T, 0, len(list)-1)
	next = append(next, list[:i]...)
	next = append(next, list[i+1:]...)
	return next, removed, true
}

func findByID[T any, P entity[T]](list []T, id string) (T, bool) {
	if i := indexByID[T, P](list, id); i >= 0 {
		return list[i], true
	}
	var zero T
	return zero, false
}

func indexByID[T any, P entity[T]](list []T, id string) int {
	for i := range list {
		if P(&list[i]).GetID() == id {
			return i
		}
	}
	return -1
}

// dedupe keeps the first occurrence of every id, preserving order.
func dedupe[T any, P entity[T]](list []T) []T {
	seen := make(map[string]struct{}, len(list))
	out := make([]T, 0, len(list))
	for i := range list {
		id := P(&list[i]).GetID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, list[i])
	}
	return out
}

// missingIDs returns the ids of before that are absent from after, in order.
func missingIDs[T any, P entity[T]](before, after []T) []string {
	keep := make(map[string]struct{}, len(after))
	for i := range after {
		keep[P(&after[i]).GetID()] = struct{}{}
	}
	var out []string
	for i := range before {
		id := P(&before[i]).GetID()
		if _, ok := keep[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// tail returns the last n entries.
func tail[T any](list []T, n int) []T {
	if len(list) <= n {
		return list
	}
	return list[len(list)-n:]
}
