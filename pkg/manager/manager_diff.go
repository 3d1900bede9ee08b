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

	"github.com/google/go-cmp/cmp"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/stefanprodan/ovsync/pkg/kinds"
	"github.com/stefanprodan/ovsync/pkg/objectutil"
)

const secretMask = "******"

// Diff performs a dry-run reconciliation and returns the fields that would change.
// Credential values are masked in the diff.
func (m *ResourceManager) Diff(ctx context.Context, doc *objectutil.Document) (*ChangeSetEntry, error) {
	return m.reconcileDocument(ctx, doc, doc.GetState(), true)
}

// DiffAll performs a dry-run reconciliation of the given documents in apply order.
// Invalid documents do not stop the run, their errors are returned together
// with the change set of the valid ones.
func (m *ResourceManager) DiffAll(ctx context.Context, docs []*objectutil.Document) (*ChangeSet, error) {
	m.order.Sort(docs)
	changeSet := NewChangeSet()

	planned := plannedResources{}
	ctx = context.WithValue(ctx, plannedKey{}, planned)

	var errs []error
	for _, doc := range docs {
		entry, err := m.Diff(ctx, doc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		planned.add(*entry)
		changeSet.Add(*entry)
	}

	return changeSet, utilerrors.NewAggregate(errs)
}

func maskedDiff(existing, desired map[string]interface{}) string {
	return cmp.Diff(objectutil.MaskSecrets(existing, secretMask), objectutil.MaskSecrets(desired, secretMask))
}

type plannedKey struct{}

// plannedResources holds, per kind, the names a dry run reports as created.
// Later documents of the same batch can reference them before they exist.
type plannedResources map[string]map[string]bool

func (p plannedResources) add(entry ChangeSetEntry) {
	for _, member := range entry.Members {
		p.add(member)
	}
	if entry.Action != string(CreatedAction) || entry.Name == "" {
		return
	}
	if p[entry.Kind] == nil {
		p[entry.Kind] = map[string]bool{}
	}
	p[entry.Kind][entry.Name] = true
}

// plannedURI returns a placeholder URI for a resource the current dry run
// reported as created.
func plannedURI(ctx context.Context, kind kinds.Kind, name string) (string, bool) {
	planned, ok := ctx.Value(plannedKey{}).(plannedResources)
	if !ok || !planned[kind.Name][name] {
		return "", false
	}
	return kind.Path + "/" + name, true
}
