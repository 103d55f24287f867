// Copyright 2021 Andrew Werner.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package btree provides an ordered map backed by a copy-on-write B-tree.
package btree

import (
	"iter"

	"github.com/usuihiro/btree/internal/abstract"
)

// Map is an ordered map from K to V. The zero value is not usable; create
// one with MakeMap or NewMap.
//
// Write operations are not safe for concurrent mutation by multiple
// goroutines, but Read operations are.
type Map[K, V any] struct {
	t abstract.Map[K, V]
}

// MakeMap constructs a new Map ordered by cmp, which must return a
// negative number, zero or a positive number as a sorts before, equal to
// or after b.
func MakeMap[K, V any](cmp func(K, K) int) Map[K, V] {
	return Map[K, V]{t: abstract.MakeMap[K, V](cmp)}
}

// NewMap is like MakeMap but returns a pointer.
func NewMap[K, V any](cmp func(K, K) int) *Map[K, V] {
	m := MakeMap[K, V](cmp)
	return &m
}

// Upsert inserts or replaces the entry for k. If an entry was replaced,
// its previous value is returned.
func (m *Map[K, V]) Upsert(k K, v V) (old V, replaced bool) {
	return m.t.Upsert(k, v)
}

// Get returns the value stored for k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	_, v, ok := m.t.Get(k)
	return v, ok
}

// Find returns the entry for k with the key as it is stored in the Map.
func (m *Map[K, V]) Find(k K) (K, V, bool) {
	return m.t.Get(k)
}

// Has reports whether the Map contains k.
func (m *Map[K, V]) Has(k K) bool {
	_, _, ok := m.t.Get(k)
	return ok
}

// Delete removes the entry for k, returning its value.
func (m *Map[K, V]) Delete(k K) (V, bool) {
	_, v, ok := m.t.Delete(k)
	return v, ok
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.t.Len() }

// Height returns the height of the underlying tree.
func (m *Map[K, V]) Height() int { return m.t.Height() }

// Clone returns a copy of the Map in constant time. Subsequent writes to
// either Map are not visible in the other.
func (m *Map[K, V]) Clone() *Map[K, V] {
	return &Map[K, V]{t: m.t.Clone()}
}

// Reset removes all entries and recycles the Map's nodes.
func (m *Map[K, V]) Reset() { m.t.Reset() }

func (m *Map[K, V]) String() string { return m.t.String() }

// Iterator returns an unpositioned Iterator over the Map.
func (m *Map[K, V]) Iterator() Iterator[K, V] {
	return Iterator[K, V]{it: m.t.MakeIter()}
}

// All returns the entries in ascending key order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		it := m.t.MakeIter()
		for it.First(); it.Valid(); it.Next() {
			if !yield(it.Key(), it.Value()) {
				return
			}
		}
	}
}

// Keys returns the keys in ascending order.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Iterator walks a Map in key order. It is not safe to continue using an
// Iterator after the Map is modified.
type Iterator[K, V any] struct {
	it abstract.Iterator[K, V]
}

func (it *Iterator[K, V]) First() { it.it.First() }

func (it *Iterator[K, V]) Last() { it.it.Last() }

func (it *Iterator[K, V]) Next() { it.it.Next() }

func (it *Iterator[K, V]) Prev() { it.it.Prev() }

// SeekGE positions the Iterator at the first key >= k.
func (it *Iterator[K, V]) SeekGE(k K) { it.it.SeekGE(k) }

// SeekLT positions the Iterator at the last key < k.
func (it *Iterator[K, V]) SeekLT(k K) { it.it.SeekLT(k) }

func (it *Iterator[K, V]) Valid() bool { return it.it.Valid() }

// Cur returns the current key.
func (it *Iterator[K, V]) Cur() K { return it.it.Key() }

// Value returns the current value.
func (it *Iterator[K, V]) Value() V { return it.it.Value() }
