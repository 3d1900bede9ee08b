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
	"time"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/stefanprodan/ovsync/pkg/objectutil"
)

// Inventory is a record of the OneView resources applied from a source.
type Inventory struct {
	// Name of the inventory.
	Name string `json:"name"`

	// Source is the URL or path of the documents.
	Source string `json:"source,omitempty"`

	// Revision identifies the apply run, a random UUID when not set.
	Revision string `json:"revision,omitempty"`

	// LastAppliedTime is set when the inventory is stored.
	LastAppliedTime time.Time `json:"lastAppliedTime,omitempty"`

	// Entries of resources managed by this inventory.
	Entries []Entry `json:"entries"`
}

// Entry records a resource by kind, name and URI.
type Entry struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	URI  string `json:"uri,omitempty"`
}

// ID returns the entry identifier in the format <kind>/<name>.
func (e Entry) ID() string {
	return objectutil.FmtRef(e.Kind, e.Name)
}

func NewInventory(name string) *Inventory {
	return &Inventory{
		Name:    name,
		Entries: []Entry{},
	}
}

// Add records the given resource, replacing the URI of an existing entry.
func (inv *Inventory) Add(kind, name, uri string) {
	for i, e := range inv.Entries {
		if e.Kind == kind && e.Name == name {
			inv.Entries[i].URI = uri
			return
		}
	}
	inv.Entries = append(inv.Entries, Entry{Kind: kind, Name: name, URI: uri})
}

// Remove drops the entry of the given resource.
func (inv *Inventory) Remove(kind, name string) {
	entries := inv.Entries[:0]
	for _, e := range inv.Entries {
		if e.Kind != kind || e.Name != name {
			entries = append(entries, e)
		}
	}
	inv.Entries = entries
}

// Diff returns the entries that do not exist in the target inventory,
// ordered for deletion. Entries whose URI is still recorded under
// another name, as happens after a rename, are not stale.
func (inv *Inventory) Diff(target *Inventory) []Entry {
	ids := sets.NewString()
	uris := sets.NewString()
	if target != nil {
		for _, e := range target.Entries {
			ids.Insert(e.ID())
			if e.URI != "" {
				uris.Insert(e.URI)
			}
		}
	}

	stale := make([]Entry, 0)
	for _, e := range inv.Entries {
		if !ids.Has(e.ID()) && !uris.Has(e.URI) {
			stale = append(stale, e)
		}
	}

	SortReverse(stale)
	return stale
}
