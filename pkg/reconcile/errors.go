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
	"errors"
	"fmt"
)

var (
	// ErrInvalidDesiredState is returned when the desired state has no name or declares remote-owned fields.
	ErrInvalidDesiredState = errors.New("invalid desired state")

	// ErrAmbiguousMerge is returned when attribute values can't be merged or compared.
	ErrAmbiguousMerge = errors.New("ambiguous merge")

	// ErrMissingCapability is returned when the capability required by the decision was not provided.
	ErrMissingCapability = errors.New("capability not provided")
)

// AmbiguousMergeError reports an attribute whose value is outside the JSON data model.
type AmbiguousMergeError struct {
	Path  string
	Value interface{}
}

func (e *AmbiguousMergeError) Error() string {
	return fmt.Sprintf("%s: attribute '%s' has unsupported type %T", ErrAmbiguousMerge, e.Path, e.Value)
}

func (e *AmbiguousMergeError) Unwrap() error {
	return ErrAmbiguousMerge
}
