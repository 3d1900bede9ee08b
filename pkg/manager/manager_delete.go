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
	"fmt"

	"github.com/go-logr/logr"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/stefanprodan/ovsync/pkg/inventory"
	"github.com/stefanprodan/ovsync/pkg/kinds"
	"github.com/stefanprodan/ovsync/pkg/objectutil"
	"github.com/stefanprodan/ovsync/pkg/oneview"
	"github.com/stefanprodan/ovsync/pkg/reconcile"
)

// Delete removes the resource declared by the given document, irrespective of its state.
// Missing resources are reported as absent.
func (m *ResourceManager) Delete(ctx context.Context, doc *objectutil.Document) (*ChangeSetEntry, error) {
	return m.reconcileDocument(ctx, doc, reconcile.StateAbsent, false)
}

// DeleteAll removes the resources declared by the given documents in reverse apply order.
func (m *ResourceManager) DeleteAll(ctx context.Context, docs []*objectutil.Document) (*ChangeSet, error) {
	var errs []error
	for _, doc := range docs {
		if _, err := m.kindOf(doc, reconcile.StateAbsent); err != nil {
			errs = append(errs, err)
		}
	}
	if err := utilerrors.NewAggregate(errs); err != nil {
		return nil, err
	}

	m.order.SortReverse(docs)
	changeSet := NewChangeSet()
	for _, doc := range docs {
		entry, err := m.Delete(ctx, doc)
		if err != nil {
			return changeSet, err
		}
		changeSet.Add(*entry)
	}

	return changeSet, nil
}

// DeleteEntries removes the inventory entries from the appliance, the entries
// are expected to be ordered for deletion. Resources already gone are reported as absent.
func (m *ResourceManager) DeleteEntries(ctx context.Context, entries []inventory.Entry) (*ChangeSet, error) {
	changeSet := NewChangeSet()
	for _, e := range entries {
		kind, err := kinds.Lookup(e.Kind)
		if err != nil {
			return changeSet, fmt.Errorf("%s delete failed, error: %w", e.ID(), err)
		}
		rc := m.client.Resource(kind.Path)

		existing, err := m.fetchByURI(ctx, rc, e.URI)
		if err != nil {
			return changeSet, fmt.Errorf("%s query failed, error: %w", e.ID(), err)
		}

		caps := m.capabilities(rc, false)
		res, err := reconcile.ReconcileAbsent(logr.NewContext(ctx, m.log), existing, caps.Delete)
		if err != nil {
			return changeSet, fmt.Errorf("%s delete failed, error: %w", e.ID(), err)
		}
		entry := m.changeSetEntry(kind, e.Name, res)
		entry.URI = e.URI
		changeSet.Add(*entry)
	}
	return changeSet, nil
}

func (m *ResourceManager) fetchByURI(ctx context.Context, rc *oneview.ResourceClient, uri string) (*reconcile.RemoteResource, error) {
	if uri == "" {
		return nil, nil
	}
	res, err := rc.Get(ctx, uri)
	if err != nil {
		if oneview.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return reconcile.NewRemoteResource(res), nil
}

func (m *ResourceManager) absent(ctx context.Context, kind kinds.Kind, doc *objectutil.Document, dryRun bool) (*ChangeSetEntry, error) {
	desired := doc.DesiredState()
	res, err := m.reconciler(m.client.Resource(kind.Path), dryRun).Absent(ctx, desired)
	if err != nil {
		return nil, fmt.Errorf("%s delete failed, error: %w", objectutil.FmtDocument(doc), err)
	}
	return m.changeSetEntry(kind, desired.Name, res), nil
}
