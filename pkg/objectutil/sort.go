/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package objectutil

import (
	"sort"

	"github.com/stefanprodan/ovsync/pkg/kinds"
)

// KindOrder ranks documents for apply, kinds in First are applied first,
// kinds in Last are applied last and the rest follow the kind registry order.
type KindOrder struct {
	index map[string]int
}

// NewKindOrder returns the apply order for the given first and last kinds.
func NewKindOrder(first, last []string) *KindOrder {
	index := make(map[string]int, len(first)+len(last))
	for _, k := range kinds.All() {
		index[k.Name] = k.Rank
	}
	for i, n := range first {
		index[canonicalKind(n)] = -len(first) + i - 1000
	}
	for i, n := range last {
		index[canonicalKind(n)] = 1000 + i
	}
	return &KindOrder{index: index}
}

func (o *KindOrder) rank(kind string) int {
	return o.index[canonicalKind(kind)]
}

// Sort orders the documents for apply.
// In case of tie, the name is compared so that the output
// order is consistent irrespective of input order.
func (o *KindOrder) Sort(docs []*Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		ri, rj := o.rank(docs[i].Kind), o.rank(docs[j].Kind)
		if ri != rj {
			return ri < rj
		}
		return docs[i].GetName() < docs[j].GetName()
	})
}

// SortReverse orders the documents for delete.
func (o *KindOrder) SortReverse(docs []*Document) {
	o.Sort(docs)
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
}

func canonicalKind(name string) string {
	if k, err := kinds.Lookup(name); err == nil {
		return k.Name
	}
	return name
}
