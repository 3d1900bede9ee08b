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
	"fmt"

	"github.com/stefanprodan/ovsync/pkg/reconcile"
)

// Action represents the action type performed by the reconciliation process.
type Action string

const (
	CreatedAction    Action = Action(reconcile.Created)
	ConfiguredAction Action = Action(reconcile.Updated)
	UnchangedAction  Action = Action(reconcile.AlreadyCompliant)
	DeletedAction    Action = Action(reconcile.Deleted)
	AbsentAction     Action = Action(reconcile.AlreadyAbsent)
)

// ChangeSet holds the result of the reconciliation of a document collection.
type ChangeSet struct {
	Entries []ChangeSetEntry
}

func NewChangeSet() *ChangeSet {
	return &ChangeSet{Entries: []ChangeSetEntry{}}
}

func (c *ChangeSet) Add(e ChangeSetEntry) {
	c.Entries = append(c.Entries, e)
}

func (c *ChangeSet) Append(e []ChangeSetEntry) {
	c.Entries = append(c.Entries, e...)
}

// Changed reports whether any entry changed the appliance.
func (c *ChangeSet) Changed() bool {
	for _, e := range c.Entries {
		if e.Changed() {
			return true
		}
	}
	return false
}

// ChangeSetEntry defines the result of an action performed on a resource.
type ChangeSetEntry struct {
	// Subject represents the resource ID in the format 'kind/name'.
	Subject string
	// Kind is the registered kind name.
	Kind string
	// Name is the resource name after reconciliation.
	Name string
	// URI is set when the resource exists on the appliance.
	URI string
	// Action represents the action type taken by the reconciler for this resource.
	Action string
	// Message is the human-readable outcome.
	Message string
	// Diff contains the attributes diff.
	Diff string
	// Members lists the resources reconciled by a bulk document.
	Members []ChangeSetEntry
}

// Changed reports whether the action modified the appliance.
func (e ChangeSetEntry) Changed() bool {
	return e.Action == string(CreatedAction) ||
		e.Action == string(ConfiguredAction) ||
		e.Action == string(DeletedAction)
}

func (e ChangeSetEntry) String() string {
	return fmt.Sprintf("%s %s", e.Subject, e.Action)
}
