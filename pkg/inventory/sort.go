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

package inventory

import (
	"sort"

	"github.com/stefanprodan/ovsync/pkg/kinds"
)

// Sort orders the entries by kind rank and name.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := rankOfKind(entries[i].Kind), rankOfKind(entries[j].Kind)
		if ri == rj {
			return entries[i].Name < entries[j].Name
		}
		return ri < rj
	})
}

// SortReverse orders the entries for deletion, dependants first.
func SortReverse(entries []Entry) {
	Sort(entries)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}

// rankOfKind returns the position of the given kind in the
// partial ordering of OneView resources, unknown kinds go last.
func rankOfKind(kind string) int {
	k, err := kinds.Lookup(kind)
	if err != nil {
		return 1 << 10
	}
	return k.Rank
}
