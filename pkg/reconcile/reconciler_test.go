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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recorder is an in-memory remote endpoint that counts capability calls.
type recorder struct {
	resources map[string]map[string]interface{}
	created   []map[string]interface{}
	updated   []map[string]interface{}
	deleted   []string
	fetched   []string
	err       error
}

func newRecorder() *recorder {
	return &recorder{resources: map[string]map[string]interface{}{}}
}

func (r *recorder) fetch(_ context.Context, name string) (*RemoteResource, error) {
	r.fetched = append(r.fetched, name)
	if res, ok := r.resources[name]; ok {
		return NewRemoteResource(res), nil
	}
	return nil, nil
}

func (r *recorder) create(_ context.Context, attrs map[string]interface{}) (*RemoteResource, error) {
	r.created = append(r.created, attrs)
	if r.err != nil {
		return nil, r.err
	}
	res := map[string]interface{}{URIKey: "/x/" + attrs[NameKey].(string)}
	for k, v := range attrs {
		res[k] = v
	}
	r.resources[attrs[NameKey].(string)] = res
	return NewRemoteResource(res), nil
}

func (r *recorder) update(_ context.Context, attrs map[string]interface{}) (*RemoteResource, error) {
	r.updated = append(r.updated, attrs)
	if r.err != nil {
		return nil, r.err
	}
	for name, res := range r.resources {
		if res[URIKey] == attrs[URIKey] {
			delete(r.resources, name)
		}
	}
	r.resources[attrs[NameKey].(string)] = attrs
	return NewRemoteResource(attrs), nil
}

func (r *recorder) delete(_ context.Context, res *RemoteResource) error {
	r.deleted = append(r.deleted, res.URI)
	if r.err != nil {
		return r.err
	}
	delete(r.resources, res.Name())
	return nil
}

func (r *recorder) capabilities() Capabilities {
	return Capabilities{
		FetchByName: r.fetch,
		Create:      r.create,
		Update:      r.update,
		Delete:      r.delete,
	}
}

func TestReconcilePresent_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing resource", func(t *testing.T) {
		rec := newRecorder()
		desired := NewDesiredState(map[string]interface{}{"name": "Net-A", "vlanId": 10})

		result, err := ReconcilePresent(ctx, desired, nil, rec.create, rec.update)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(Created, result.Message); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if !result.Changed {
			t.Errorf("expected changed result")
		}
		want := []map[string]interface{}{{"name": "Net-A", "vlanId": 10}}
		if diff := cmp.Diff(want, rec.created); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if len(rec.updated) != 0 {
			t.Errorf("update must not be called, got %v", rec.updated)
		}
	})

	t.Run("reports compliant resource", func(t *testing.T) {
		rec := newRecorder()
		desired := NewDesiredState(map[string]interface{}{"name": "Net-A", "vlanId": 10})
		existing := NewRemoteResource(map[string]interface{}{"uri": "/x/1", "name": "Net-A", "vlanId": 10})

		result, err := ReconcilePresent(ctx, desired, existing, rec.create, rec.update)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(AlreadyCompliant, result.Message); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if result.Changed {
			t.Errorf("expected unchanged result")
		}
		if result.Resource != existing {
			t.Errorf("expected the existing resource to be returned")
		}
		if len(rec.created)+len(rec.updated) != 0 {
			t.Errorf("no calls expected, got created=%v updated=%v", rec.created, rec.updated)
		}
	})

	t.Run("updates drifted resource", func(t *testing.T) {
		rec := newRecorder()
		desired := NewDesiredState(map[string]interface{}{"name": "Net-A", "vlanId": 20})
		existing := NewRemoteResource(map[string]interface{}{"uri": "/x/1", "name": "Net-A", "vlanId": 10})

		result, err := ReconcilePresent(ctx, desired, existing, rec.create, rec.update)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(Updated, result.Message); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		want := []map[string]interface{}{{"uri": "/x/1", "name": "Net-A", "vlanId": 20}}
		if diff := cmp.Diff(want, rec.updated); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if len(rec.created) != 0 {
			t.Errorf("create must not be called, got %v", rec.created)
		}
		if result.Diff == "" {
			t.Errorf("expected a diff for the updated resource")
		}
		if diff := cmp.Diff(10, existing.Attributes["vlanId"]); diff != "" {
			t.Errorf("existing attributes must not be mutated (-want +got):\n%s", diff)
		}
	})
}

func TestReconcilePresent_Properties(t *testing.T) {
	ctx := context.Background()
	existingAttrs := map[string]interface{}{
		"uri":         "/rest/ethernet-networks/1",
		"name":        "prod",
		"vlanId":      10,
		"purpose":     "General",
		"smartLink":   true,
		"scopesUri":   "/rest/scopes/resources/1",
		"description": nil,
	}

	t.Run("subset of existing is compliant", func(t *testing.T) {
		rec := newRecorder()
		desired := NewDesiredState(map[string]interface{}{"name": "prod", "purpose": "General", "smartLink": true})

		result, err := ReconcilePresent(ctx, desired, NewRemoteResource(existingAttrs), rec.create, rec.update)
		if err != nil {
			t.Fatal(err)
		}
		if result.Changed || result.Message != AlreadyCompliant {
			t.Errorf("expected compliant result, got %v", result)
		}
		if len(rec.created)+len(rec.updated) != 0 {
			t.Errorf("no calls expected")
		}
	})

	t.Run("float and int values are equivalent", func(t *testing.T) {
		rec := newRecorder()
		desired := NewDesiredState(map[string]interface{}{"name": "prod", "vlanId": 10.0})

		result, err := ReconcilePresent(ctx, desired, NewRemoteResource(existingAttrs), rec.create, rec.update)
		if err != nil {
			t.Fatal(err)
		}
		if result.Changed {
			t.Errorf("expected unchanged result, got %v", result)
		}
	})

	t.Run("nil desired value clears the field", func(t *testing.T) {
		rec := newRecorder()
		desired := NewDesiredState(map[string]interface{}{"name": "prod", "scopesUri": nil})

		result, err := ReconcilePresent(ctx, desired, NewRemoteResource(existingAttrs), rec.create, rec.update)
		if err != nil {
			t.Fatal(err)
		}
		if result.Message != Updated {
			t.Fatalf("expected update, got %v", result)
		}
		got := rec.updated[0]
		v, found := got["scopesUri"]
		if !found || v != nil {
			t.Errorf("expected scopesUri to be kept as an explicit nil, got %v (found=%v)", v, found)
		}
		if diff := cmp.Diff("General", got["purpose"]); diff != "" {
			t.Errorf("existing-only keys must be preserved (-want +got):\n%s", diff)
		}
	})

	t.Run("second run is idempotent", func(t *testing.T) {
		rec := newRecorder()
		desired := NewDesiredState(map[string]interface{}{"name": "prod", "vlanId": 30, "purpose": "Management"})

		first, err := ReconcilePresent(ctx, desired, NewRemoteResource(existingAttrs), rec.create, rec.update)
		if err != nil {
			t.Fatal(err)
		}
		if !first.Changed {
			t.Fatalf("expected first run to change the resource")
		}

		second, err := ReconcilePresent(ctx, desired, first.Resource, rec.create, rec.update)
		if err != nil {
			t.Fatal(err)
		}
		if second.Changed || second.Message != AlreadyCompliant {
			t.Errorf("expected second run to be compliant, got %v", second)
		}
		if len(rec.updated) != 1 {
			t.Errorf("expected exactly one update, got %d", len(rec.updated))
		}
	})

	t.Run("resource without uri is created", func(t *testing.T) {
		rec := newRecorder()
		desired := NewDesiredState(map[string]interface{}{"name": "prod"})
		existing := NewRemoteResource(map[string]interface{}{"name": "prod"})

		result, err := ReconcilePresent(ctx, desired, existing, rec.create, rec.update)
		if err != nil {
			t.Fatal(err)
		}
		if result.Message != Created || len(rec.created) != 1 || len(rec.updated) != 0 {
			t.Errorf("expected a single create, got %v created=%d updated=%d", result, len(rec.created), len(rec.updated))
		}
	})

	t.Run("rename targets the new name", func(t *testing.T) {
		rec := newRecorder()
		desired := NewDesiredState(map[string]interface{}{"name": "prod", "newName": "production"})

		result, err := ReconcilePresent(ctx, desired, NewRemoteResource(existingAttrs), rec.create, rec.update)
		if err != nil {
			t.Fatal(err)
		}
		if result.Message != Updated {
			t.Fatalf("expected update, got %v", result)
		}
		if diff := cmp.Diff("production", rec.updated[0]["name"]); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if _, found := rec.updated[0][NewNameKey]; found {
			t.Errorf("newName must not be sent to the remote system")
		}
	})
}

func TestReconcilePresent_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty name", func(t *testing.T) {
		rec := newRecorder()
		_, err := ReconcilePresent(ctx, NewDesiredState(map[string]interface{}{"vlanId": 1}), nil, rec.create, rec.update)
		if !errors.Is(err, ErrInvalidDesiredState) {
			t.Errorf("expected ErrInvalidDesiredState, got %v", err)
		}
		if len(rec.created) != 0 {
			t.Errorf("create must not be called")
		}
	})

	t.Run("rejects declared uri", func(t *testing.T) {
		rec := newRecorder()
		_, err := ReconcilePresent(ctx, NewDesiredState(map[string]interface{}{"name": "a", "uri": "/x/1"}), nil, rec.create, rec.update)
		if !errors.Is(err, ErrInvalidDesiredState) {
			t.Errorf("expected ErrInvalidDesiredState, got %v", err)
		}
	})

	t.Run("propagates capability errors verbatim", func(t *testing.T) {
		rec := newRecorder()
		rec.err = errors.New("session expired")
		existing := NewRemoteResource(map[string]interface{}{"uri": "/x/1", "name": "a", "vlanId": 1})

		_, err := ReconcilePresent(ctx, NewDesiredState(map[string]interface{}{"name": "a", "vlanId": 2}), existing, rec.create, rec.update)
		if err != rec.err {
			t.Errorf("expected the capability error, got %v", err)
		}
		if len(rec.updated) != 1 {
			t.Errorf("expected a single update attempt, got %d", len(rec.updated))
		}
	})

	t.Run("reports unsupported values", func(t *testing.T) {
		rec := newRecorder()
		existing := NewRemoteResource(map[string]interface{}{"uri": "/x/1", "name": "a"})
		desired := NewDesiredState(map[string]interface{}{"name": "a", "hook": func() {}})

		_, err := ReconcilePresent(ctx, desired, existing, rec.create, rec.update)
		var mergeErr *AmbiguousMergeError
		if !errors.As(err, &mergeErr) {
			t.Fatalf("expected AmbiguousMergeError, got %v", err)
		}
		if diff := cmp.Diff("hook", mergeErr.Path); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
	})

	t.Run("requires the update capability", func(t *testing.T) {
		existing := NewRemoteResource(map[string]interface{}{"uri": "/x/1", "name": "a", "vlanId": 1})
		_, err := ReconcilePresent(ctx, NewDesiredState(map[string]interface{}{"name": "a", "vlanId": 2}), existing, nil, nil)
		if !errors.Is(err, ErrMissingCapability) {
			t.Errorf("expected ErrMissingCapability, got %v", err)
		}
	})
}

func TestReconcileAbsent(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes existing resource", func(t *testing.T) {
		rec := newRecorder()
		existing := NewRemoteResource(map[string]interface{}{"uri": "/x/1", "name": "Net-A"})

		result, err := ReconcileAbsent(ctx, existing, rec.delete)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Changed || result.Message != Deleted {
			t.Errorf("expected deleted result, got %v", result)
		}
		if diff := cmp.Diff([]string{"/x/1"}, rec.deleted); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
	})

	t.Run("missing resource is a no-op", func(t *testing.T) {
		rec := newRecorder()

		result, err := ReconcileAbsent(ctx, nil, rec.delete)
		if err != nil {
			t.Fatal(err)
		}
		if result.Changed || result.Message != AlreadyAbsent {
			t.Errorf("expected absent result, got %v", result)
		}
		if len(rec.deleted) != 0 {
			t.Errorf("delete must not be called")
		}
	})

	t.Run("propagates delete errors", func(t *testing.T) {
		rec := newRecorder()
		rec.err = errors.New("in use")

		_, err := ReconcileAbsent(ctx, NewRemoteResource(map[string]interface{}{"uri": "/x/1"}), rec.delete)
		if err != rec.err {
			t.Errorf("expected the capability error, got %v", err)
		}
	})
}

func TestReconciler_Ensure(t *testing.T) {
	ctx := context.Background()
	rec := newRecorder()
	reconciler := NewReconciler(rec.capabilities())

	desired := NewDesiredState(map[string]interface{}{"name": "Net-A", "vlanId": 10})

	steps := []struct {
		state   State
		desired DesiredState
		want    Message
	}{
		{StatePresent, desired, Created},
		{StatePresent, desired, AlreadyCompliant},
		{StatePresent, NewDesiredState(map[string]interface{}{"name": "Net-A", "newName": "Net-B"}), Updated},
		{StatePresent, NewDesiredState(map[string]interface{}{"name": "Net-A", "newName": "Net-B"}), AlreadyCompliant},
		{StateAbsent, NewDesiredState(map[string]interface{}{"name": "Net-B"}), Deleted},
		{StateAbsent, NewDesiredState(map[string]interface{}{"name": "Net-B"}), AlreadyAbsent},
	}

	for i, step := range steps {
		result, err := reconciler.Ensure(ctx, step.desired, step.state)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if diff := cmp.Diff(step.want, result.Message); diff != "" {
			t.Errorf("step %d: Mismatch from expected value (-want +got):\n%s", i, diff)
		}
	}

	if len(rec.created) != 1 {
		t.Errorf("expected a single create, got %d", len(rec.created))
	}

	if _, err := reconciler.Ensure(ctx, desired, State("restarted")); !errors.Is(err, ErrInvalidDesiredState) {
		t.Errorf("expected ErrInvalidDesiredState, got %v", err)
	}
}

func TestMessage_Sentence(t *testing.T) {
	tests := []struct {
		msg     Message
		display string
		want    string
	}{
		{Created, "Ethernet Network", "Ethernet Network created successfully."},
		{Updated, "Scope", "Scope updated successfully."},
		{AlreadyCompliant, "Network Set", "Network Set already exists."},
		{Deleted, "Rack", "Rack deleted successfully."},
		{AlreadyAbsent, "", "Resource is already absent."},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.msg.Sentence(tt.display)); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
	}
}
