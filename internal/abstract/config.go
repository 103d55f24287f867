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

// config is shared by a Map and every clone made from it. It carries the
// key ordering and the node pool for the Map's instantiation.
type config[K, V any] struct {
	cmp func(K, K) int
	np  *nodePool[K, V]
}

func makeConfig[K, V any](cmp func(K, K) int) config[K, V] {
	return config[K, V]{
		cmp: cmp,
		np:  getNodePool[K, V](),
	}
}
