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

	"github.com/stefanprodan/ovsync/pkg/kinds"
	"github.com/stefanprodan/ovsync/pkg/objectutil"
	"github.com/stefanprodan/ovsync/pkg/oneview"
	"github.com/stefanprodan/ovsync/pkg/reconcile"
)

// ResourceManager reconciles OneView resources onto the target appliance.
type ResourceManager struct {
	client *oneview.Client
	order  *objectutil.KindOrder
	log    logr.Logger
}

// NewResourceManager creates a ResourceManager for the given OneView client.
// When order is nil, documents are applied in the kind registry order.
func NewResourceManager(client *oneview.Client, order *objectutil.KindOrder, log logr.Logger) *ResourceManager {
	if order == nil {
		order = objectutil.NewKindOrder(nil, nil)
	}
	return &ResourceManager{
		client: client,
		order:  order,
		log:    log,
	}
}

// Client returns the underlying OneView client.
func (m *ResourceManager) Client() *oneview.Client {
	return m.client
}

// Validate checks the documents against their kind schema and the
// configured API version, all the invalid documents are reported together.
func (m *ResourceManager) Validate(docs []*objectutil.Document) error {
	var errs []error
	for _, doc := range docs {
		if _, err := m.kindOf(doc, doc.GetState()); err != nil {
			errs = append(errs, err)
		}
	}
	return utilerrors.NewAggregate(errs)
}

func (m *ResourceManager) kindOf(doc *objectutil.Document, state reconcile.State) (kinds.Kind, error) {
	kind, err := kinds.Lookup(doc.Kind)
	if err != nil {
		return kinds.Kind{}, fmt.Errorf("%s is invalid, error: %w", objectutil.FmtDocument(doc), err)
	}

	if err := kind.Validate(state, doc.Data); err != nil {
		return kinds.Kind{}, fmt.Errorf("%s is invalid, error: %w", objectutil.FmtDocument(doc), err)
	}

	if kind.MinAPIVersion != "" {
		ok, err := m.client.SupportsAPIVersion(kind.MinAPIVersion)
		if err != nil {
			return kinds.Kind{}, fmt.Errorf("%s is invalid, error: %w", objectutil.FmtDocument(doc), err)
		}
		if !ok {
			return kinds.Kind{}, fmt.Errorf("%s is invalid, error: API version %d does not satisfy '%s'",
				objectutil.FmtDocument(doc), m.client.Config().APIVersion, kind.MinAPIVersion)
		}
	}

	return kind, nil
}

// reconcileDocument dispatches the document to the handler of its kind and state.
// In dry-run mode no mutating call reaches the appliance.
func (m *ResourceManager) reconcileDocument(ctx context.Context, doc *objectutil.Document, state reconcile.State, dryRun bool) (*ChangeSetEntry, error) {
	kind, err := m.kindOf(doc, state)
	if err != nil {
		return nil, err
	}

	if isBulk(kind, doc) {
		switch state {
		case reconcile.StatePresent:
			return m.bulkPresent(ctx, kind, doc, dryRun)
		case reconcile.StateAbsent:
			return m.bulkAbsent(ctx, kind, doc, dryRun)
		default:
			return nil, fmt.Errorf("%s is invalid, error: state '%s' does not support vlanIdRange", objectutil.FmtDocument(doc), state)
		}
	}

	switch state {
	case reconcile.StatePresent:
		return m.present(ctx, kind, doc, dryRun)
	case reconcile.StateAbsent:
		return m.absent(ctx, kind, doc, dryRun)
	case kinds.StateDefaultBandwidthReset:
		return m.resetBandwidth(ctx, kind, doc, dryRun)
	case kinds.StateResourceAssignmentsUpdated:
		return m.updateAssignments(ctx, kind, doc, dryRun)
	default:
		return nil, fmt.Errorf("%s is invalid, error: %w: unsupported state '%s'",
			objectutil.FmtDocument(doc), reconcile.ErrInvalidDesiredState, state)
	}
}

// capabilities returns the collection operations, in dry-run mode
// create, update and delete echo their input without calling the appliance.
func (m *ResourceManager) capabilities(rc *oneview.ResourceClient, dryRun bool) reconcile.Capabilities {
	caps := rc.Capabilities()
	if !dryRun {
		return caps
	}

	return reconcile.Capabilities{
		FetchByName: caps.FetchByName,
		Create: func(_ context.Context, attrs map[string]interface{}) (*reconcile.RemoteResource, error) {
			return &reconcile.RemoteResource{Attributes: attrs}, nil
		},
		Update: func(_ context.Context, attrs map[string]interface{}) (*reconcile.RemoteResource, error) {
			return reconcile.NewRemoteResource(attrs), nil
		},
		Delete: func(context.Context, *reconcile.RemoteResource) error {
			return nil
		},
	}
}

func (m *ResourceManager) reconciler(rc *oneview.ResourceClient, dryRun bool) *reconcile.Reconciler {
	return reconcile.NewReconciler(m.capabilities(rc, dryRun), reconcile.WithLogger(m.log))
}

func (m *ResourceManager) changeSetEntry(kind kinds.Kind, name string, res *reconcile.Result) *ChangeSetEntry {
	entry := &ChangeSetEntry{
		Subject: objectutil.FmtRef(kind.Name, name),
		Kind:    kind.Name,
		Name:    name,
		Action:  string(res.Message),
		Message: res.Message.Sentence(kind.Display),
	}
	if res.Resource != nil {
		entry.URI = res.Resource.URI
	}
	return entry
}
