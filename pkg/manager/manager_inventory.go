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

package manager

import (
	"context"

	"github.com/stefanprodan/ovsync/pkg/inventory"
)

// AddToInventory records the resources of the change set that exist on the appliance
// and drops the ones that were deleted.
func AddToInventory(inv *inventory.Inventory, changeSet *ChangeSet) {
	for _, e := range changeSet.Entries {
		addEntry(inv, e)
	}
}

func addEntry(inv *inventory.Inventory, e ChangeSetEntry) {
	if len(e.Members) > 0 {
		for _, member := range e.Members {
			addEntry(inv, member)
		}
		return
	}

	switch Action(e.Action) {
	case DeletedAction, AbsentAction:
		inv.Remove(e.Kind, e.Name)
	default:
		if e.URI != "" {
			inv.Add(e.Kind, e.Name, e.URI)
		}
	}
}

// Prune deletes the resources recorded in the stored inventory that are missing from the given one.
func (m *ResourceManager) Prune(ctx context.Context, storage *inventory.Storage, inv *inventory.Inventory) (*ChangeSet, error) {
	stale, err := storage.GetInventoryStaleEntries(ctx, inv)
	if err != nil {
		return nil, err
	}
	return m.DeleteEntries(ctx, stale)
}
