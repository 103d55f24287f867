// Copyright 2018 The Cockroach Authors.
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

// Package abstract implements the copy-on-write B-tree behind btree.Map.
package abstract

import "strings"

// TODO: let MakeMap pick the degree so small value types can use wider
// nodes.

const (
	Degree     = 8
	MaxEntries = 2*Degree - 1
	MinEntries = Degree - 1
)

// Map is a B-Tree from K to V ordered by a comparison function.
//
// Write operations are not safe for concurrent mutation by multiple
// goroutines, but Read operations are.
type Map[K, V any] struct {
	root   *node[K, V]
	length int
	cfg    config[K, V]
}

// MakeMap constructs a new Map ordered by cmp.
func MakeMap[K, V any](cmp func(K, K) int) Map[K, V] {
	return Map[K, V]{
		cfg: makeConfig[K, V](cmp),
	}
}

// Reset removes all entries from the Map. In doing so, it allows memory
// held by the Map to be recycled. Failure to call this method before
// letting a Map be GCed is safe in that it won't cause a memory leak,
// but it will prevent Map nodes from being efficiently re-used.
func (t *Map[K, V]) Reset() {
	if t.root != nil {
		t.root.decRef(t.cfg.np, true /* recursive */)
		t.root = nil
	}
	t.length = 0
}

// Clone clones the Map, lazily. It does so in constant time.
func (t *Map[K, V]) Clone() Map[K, V] {
	c := *t
	if c.root != nil {
		// Incrementing the reference count on the root node is sufficient to
		// ensure that no node in the cloned tree can be mutated by an actor
		// holding a reference to the original tree and vice versa. This
		// property is upheld because the root node in the receiver Map and
		// the returned Map will both necessarily have a reference count of at
		// least 2 when this method returns. All tree mutations recursively
		// acquire mutable node references (see mut) as they traverse down the
		// tree. The act of acquiring a mutable node reference performs a clone
		// if a node's reference count is greater than one. Cloning a node (see
		// clone) increases the reference count on each of its children,
		// ensuring that they have a reference count of at least 2. This, in
		// turn, ensures that any of the child nodes that are modified will also
		// be copied-on-write, recursively ensuring the immutability property
		// over the entire tree.
		c.root.incRef()
	}
	return c
}

// Get returns the key as stored in the Map along with its value.
func (t *Map[K, V]) Get(k K) (storedK K, v V, found bool) {
	n := t.root
	for n != nil {
		i, ok := n.find(t.cfg.cmp, k)
		if ok {
			return n.keys[i], n.values[i], true
		}
		if n.leaf {
			break
		}
		n = n.children[i]
	}
	return storedK, v, false
}

// Delete removes the entry for k from the tree.
func (t *Map[K, V]) Delete(k K) (removedK K, v V, found bool) {
	if t.root == nil || t.root.count == 0 {
		return removedK, v, false
	}
	if removedK, v, found = mut(t.cfg.np, &t.root).remove(&t.cfg, k); found {
		t.length--
	}
	if t.root.count == 0 {
		old := t.root
		if t.root.leaf {
			t.root = nil
		} else {
			t.root = t.root.children[0]
		}
		old.decRef(t.cfg.np, false /* recursive */)
	}
	return removedK, v, found
}

// Upsert adds the given entry to the tree. If an entry in the tree already
// has an equal key, its key and value are replaced.
func (t *Map[K, V]) Upsert(k K, v V) (replacedV V, replaced bool) {
	if t.root == nil {
		t.root = t.cfg.np.getLeafNode()
	} else if t.root.count >= MaxEntries {
		splitK, splitV, splitNode := mut(t.cfg.np, &t.root).split(t.cfg.np, MaxEntries/2)
		newRoot := t.cfg.np.getInteriorNode()
		newRoot.count = 1
		newRoot.keys[0] = splitK
		newRoot.values[0] = splitV
		newRoot.children[0] = t.root
		newRoot.children[1] = splitNode
		t.root = newRoot
	}
	replacedV, replaced = mut(t.cfg.np, &t.root).insert(&t.cfg, k, v)
	if !replaced {
		t.length++
	}
	return replacedV, replaced
}

// MakeIter returns a new Iterator object. It is not safe to continue using an
// Iterator after modifications are made to the tree. If modifications are made,
// create a new Iterator.
func (t *Map[K, V]) MakeIter() Iterator[K, V] {
	it := Iterator[K, V]{r: t}
	it.Reset()
	return it
}

// Height returns the height of the tree.
func (t *Map[K, V]) Height() int {
	if t.root == nil {
		return 0
	}
	h := 1
	n := t.root
	for !n.leaf {
		n = n.children[0]
		h++
	}
	return h
}

// Len returns the number of entries currently in the tree.
func (t *Map[K, V]) Len() int {
	return t.length
}

// String returns a string description of the tree. The format is
// similar to the https://en.wikipedia.org/wiki/Newick_format.
func (t *Map[K, V]) String() string {
	if t.length == 0 {
		return ";"
	}
	var b strings.Builder
	t.root.writeString(&b)
	return b.String()
}
