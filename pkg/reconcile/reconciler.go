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

package reconcile

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"
)

// FetchFunc returns the remote resource with the given name, or nil when it doesn't exist.
type FetchFunc func(ctx context.Context, name string) (*RemoteResource, error)

// CreateFunc creates a remote resource from the given attributes.
type CreateFunc func(ctx context.Context, attrs map[string]interface{}) (*RemoteResource, error)

// UpdateFunc replaces a remote resource with the given attributes.
type UpdateFunc func(ctx context.Context, attrs map[string]interface{}) (*RemoteResource, error)

// DeleteFunc removes the given remote resource.
type DeleteFunc func(ctx context.Context, resource *RemoteResource) error

// ReconcilePresent converges the remote resource towards the desired state.
// A nil existing resource, or one without an URI, is created.
// Otherwise the desired attributes are merged over the existing ones and
// update is called only when the merged result differs from the remote state.
// Errors returned by create and update are passed through unmodified.
func ReconcilePresent(ctx context.Context, desired DesiredState, existing *RemoteResource, create CreateFunc, update UpdateFunc) (*Result, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("name", desired.TargetName())

	if err := desired.Validate(); err != nil {
		return nil, err
	}

	attrs, err := DeepCopy(desired.Attributes)
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		attrs = make(map[string]interface{}, 1)
	}
	attrs[NameKey] = desired.TargetName()

	if !existing.exists() {
		if create == nil {
			return nil, fmt.Errorf("%w: create", ErrMissingCapability)
		}
		log.V(1).Info("resource not found, creating")
		created, err := create(ctx, attrs)
		if err != nil {
			return nil, err
		}
		return &Result{Changed: true, Message: Created, Resource: created}, nil
	}

	merged, err := Merge(existing.Attributes, attrs)
	if err != nil {
		return nil, err
	}

	path, equal := Difference(existing.Attributes, merged)
	if equal {
		log.V(1).Info("resource is compliant", "uri", existing.URI)
		return &Result{Changed: false, Message: AlreadyCompliant, Resource: existing}, nil
	}

	if update == nil {
		return nil, fmt.Errorf("%w: update", ErrMissingCapability)
	}
	log.V(1).Info("resource has drifted, updating", "uri", existing.URI, "field", path)
	diff := cmp.Diff(existing.Attributes, merged)
	updated, err := update(ctx, merged)
	if err != nil {
		return nil, err
	}
	return &Result{Changed: true, Message: Updated, Resource: updated, Diff: diff}, nil
}

// ReconcileAbsent removes the remote resource if it exists.
// A missing resource is reported as AlreadyAbsent without calling delete.
func ReconcileAbsent(ctx context.Context, existing *RemoteResource, del DeleteFunc) (*Result, error) {
	if !existing.exists() {
		return &Result{Changed: false, Message: AlreadyAbsent}, nil
	}

	if del == nil {
		return nil, fmt.Errorf("%w: delete", ErrMissingCapability)
	}
	logr.FromContextOrDiscard(ctx).V(1).Info("deleting resource", "uri", existing.URI)
	if err := del(ctx, existing); err != nil {
		return nil, err
	}
	return &Result{Changed: true, Message: Deleted, Resource: existing}, nil
}

// Capabilities groups the remote operations a Reconciler is allowed to perform.
type Capabilities struct {
	FetchByName FetchFunc
	Create      CreateFunc
	Update      UpdateFunc
	Delete      DeleteFunc
}

// Reconciler binds a set of capabilities to the present and absent decisions.
// It holds no state between calls and is safe for concurrent use
// as long as the capabilities are.
type Reconciler struct {
	caps Capabilities
	log  logr.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger used to trace reconciliation decisions.
func WithLogger(log logr.Logger) Option {
	return func(r *Reconciler) {
		r.log = log
	}
}

// NewReconciler returns a Reconciler for the given capabilities.
func NewReconciler(caps Capabilities, opts ...Option) *Reconciler {
	r := &Reconciler{
		caps: caps,
		log:  logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup fetches the remote resource by the desired name.
// When nothing is found and a rename is requested, the resource is looked up by its
// new name, so a rename applied by a previous run is not created twice.
func (r *Reconciler) Lookup(ctx context.Context, desired DesiredState) (*RemoteResource, error) {
	if desired.Name != "" {
		res, err := r.caps.fetch(ctx, desired.Name)
		if err != nil {
			return nil, err
		}
		if res != nil || desired.RenameTo == "" {
			return res, nil
		}
	}

	if desired.RenameTo != "" {
		return r.caps.fetch(ctx, desired.RenameTo)
	}
	return nil, nil
}

// Present looks up the remote resource and reconciles it with the desired state.
func (r *Reconciler) Present(ctx context.Context, desired DesiredState) (*Result, error) {
	if err := desired.Validate(); err != nil {
		return nil, err
	}
	existing, err := r.Lookup(ctx, desired)
	if err != nil {
		return nil, err
	}
	return ReconcilePresent(logr.NewContext(ctx, r.log), desired, existing, r.caps.Create, r.caps.Update)
}

// Absent looks up the remote resource and deletes it if found.
func (r *Reconciler) Absent(ctx context.Context, desired DesiredState) (*Result, error) {
	if desired.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDesiredState)
	}
	existing, err := r.caps.fetch(ctx, desired.Name)
	if err != nil {
		return nil, err
	}
	return ReconcileAbsent(logr.NewContext(ctx, r.log), existing, r.caps.Delete)
}

// Ensure dispatches the desired state to Present or Absent.
func (r *Reconciler) Ensure(ctx context.Context, desired DesiredState, state State) (*Result, error) {
	switch state {
	case StatePresent, "":
		return r.Present(ctx, desired)
	case StateAbsent:
		return r.Absent(ctx, desired)
	default:
		return nil, fmt.Errorf("%w: unsupported state '%s'", ErrInvalidDesiredState, state)
	}
}

func (c Capabilities) fetch(ctx context.Context, name string) (*RemoteResource, error) {
	if c.FetchByName == nil {
		return nil, fmt.Errorf("%w: fetch", ErrMissingCapability)
	}
	return c.FetchByName(ctx, name)
}
