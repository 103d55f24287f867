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

package abstract

import "sync"

// nodePool recycles nodes for one K, V instantiation. Leaves are allocated
// without a children array; interior nodes carry one alongside the node.
type nodePool[K, V any] struct {
	interiorNodePool, leafNodePool sync.Pool
}

// syncPoolMap is keyed by a typed nil *node so that each instantiation
// gets its own pool.
var syncPoolMap sync.Map

func getNodePool[K, V any]() *nodePool[K, V] {
	var nilNode *node[K, V]
	v, ok := syncPoolMap.Load(nilNode)
	if !ok {
		v, _ = syncPoolMap.LoadOrStore(nilNode, newNodePool[K, V]())
	}
	return v.(*nodePool[K, V])
}

func newNodePool[K, V any]() *nodePool[K, V] {
	np := nodePool[K, V]{}
	np.leafNodePool = sync.Pool{
		New: func() interface{} {
			return new(node[K, V])
		},
	}
	np.interiorNodePool = sync.Pool{
		New: func() interface{} {
			n := new(interiorNode[K, V])
			n.node.children = &n.children
			return &n.node
		},
	}
	return &np
}

func (np *nodePool[K, V]) getInteriorNode() *node[K, V] {
	n := np.interiorNodePool.Get().(*node[K, V])
	n.ref = 1
	return n
}

func (np *nodePool[K, V]) getLeafNode() *node[K, V] {
	n := np.leafNodePool.Get().(*node[K, V])
	n.ref = 1
	n.leaf = true
	return n
}

func (np *nodePool[K, V]) putInteriorNode(n *node[K, V]) {
	children := n.children
	*children = [MaxEntries + 1]*node[K, V]{}
	*n = node[K, V]{}
	n.children = children
	np.interiorNodePool.Put(n)
}

func (np *nodePool[K, V]) putLeafNode(n *node[K, V]) {
	*n = node[K, V]{}
	np.leafNodePool.Put(n)
}
