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
	"fmt"
)

const (
	// NameKey is the attribute holding the resource name.
	NameKey = "name"
	// NewNameKey is the attribute used in declared data to rename a resource.
	NewNameKey = "newName"
	// URIKey is the attribute holding the identity assigned by the remote system.
	URIKey = "uri"
	// ETagKey is the attribute holding the remote resource version.
	ETagKey = "eTag"
)

// State is the declared state of a resource.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// Message is the outcome of a reconciliation.
type Message string

const (
	Created          Message = "created"
	Updated          Message = "updated"
	AlreadyCompliant Message = "unchanged"
	Deleted          Message = "deleted"
	AlreadyAbsent    Message = "absent"
)

// Sentence returns the human-readable form of the message for the given resource display name,
// e.g. 'Ethernet Network created successfully.'.
func (m Message) Sentence(display string) string {
	if display == "" {
		display = "Resource"
	}
	switch m {
	case Created:
		return fmt.Sprintf("%s created successfully.", display)
	case Updated:
		return fmt.Sprintf("%s updated successfully.", display)
	case AlreadyCompliant:
		return fmt.Sprintf("%s already exists.", display)
	case Deleted:
		return fmt.Sprintf("%s deleted successfully.", display)
	case AlreadyAbsent:
		return fmt.Sprintf("%s is already absent.", display)
	default:
		return fmt.Sprintf("%s %s.", display, string(m))
	}
}

// DesiredState is the caller-declared target configuration of a resource.
type DesiredState struct {
	// Name identifies the resource on the remote system.
	Name string
	// Attributes holds the declared fields, a nil value clears the field.
	Attributes map[string]interface{}
	// RenameTo, when set, is the name the resource must have after reconciliation.
	RenameTo string
}

// NewDesiredState builds a DesiredState from declared data,
// moving 'newName' out of the attributes into RenameTo.
func NewDesiredState(data map[string]interface{}) DesiredState {
	attrs := make(map[string]interface{}, len(data))
	var name, renameTo string
	for k, v := range data {
		switch k {
		case NameKey:
			if s, ok := v.(string); ok {
				name = s
			}
		case NewNameKey:
			if s, ok := v.(string); ok {
				renameTo = s
			}
			continue
		}
		attrs[k] = v
	}
	return DesiredState{Name: name, Attributes: attrs, RenameTo: renameTo}
}

// TargetName returns the name the resource must have once reconciled.
func (d DesiredState) TargetName() string {
	if d.RenameTo != "" {
		return d.RenameTo
	}
	return d.Name
}

// Validate checks that the desired state can be reconciled.
// Resources are matched by name, a declared uri is rejected instead of
// being sent to the remote system.
func (d DesiredState) Validate() error {
	if d.TargetName() == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDesiredState)
	}
	if _, ok := d.Attributes[URIKey]; ok {
		return fmt.Errorf("%w: '%s' is assigned by the remote system and can't be declared", ErrInvalidDesiredState, URIKey)
	}
	return nil
}

// RemoteResource is a snapshot of a resource owned by the remote system.
type RemoteResource struct {
	URI        string
	ETag       string
	Attributes map[string]interface{}
}

// NewRemoteResource wraps the remote representation of a resource,
// extracting its identity and version.
func NewRemoteResource(attrs map[string]interface{}) *RemoteResource {
	if attrs == nil {
		return nil
	}
	r := &RemoteResource{Attributes: attrs}
	if s, ok := attrs[URIKey].(string); ok {
		r.URI = s
	}
	if s, ok := attrs[ETagKey].(string); ok {
		r.ETag = s
	}
	return r
}

// Name returns the remote resource name.
func (r *RemoteResource) Name() string {
	if r == nil {
		return ""
	}
	s, _ := r.Attributes[NameKey].(string)
	return s
}

// exists reports whether the snapshot identifies a remote resource.
func (r *RemoteResource) exists() bool {
	return r != nil && r.URI != ""
}

// Result holds the outcome of a reconciliation.
type Result struct {
	Changed  bool
	Message  Message
	Resource *RemoteResource
	// Diff contains the attributes diff when the resource was updated.
	Diff string
}

func (r *Result) String() string {
	return string(r.Message)
}
