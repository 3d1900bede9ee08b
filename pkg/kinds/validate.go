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

package kinds

import (
	"encoding/json"
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	kjson "sigs.k8s.io/json"

	"github.com/stefanprodan/ovsync/pkg/reconcile"
)

// Validate checks the declared data against the kind schema.
// Unknown fields and values of the wrong type are rejected.
func (k Kind) Validate(state reconcile.State, data map[string]interface{}) error {
	if state == "" {
		state = reconcile.StatePresent
	}
	if !k.SupportsState(state) {
		return fmt.Errorf("%s does not support state '%s'", k.Name, state)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%s data encoding failed, error: %w", k.Name, err)
	}

	spec := k.spec()
	strictErrs, err := kjson.UnmarshalStrict(raw, spec, kjson.DisallowDuplicateFields, kjson.DisallowUnknownFields)
	if err != nil {
		return fmt.Errorf("%s schema validation failed, error: %w", k.Name, err)
	}
	if len(strictErrs) > 0 {
		return fmt.Errorf("%s schema validation failed, error: %w", k.Name, utilerrors.NewAggregate(strictErrs))
	}

	if k.Name == EthernetNetwork {
		if s := spec.(*EthernetNetworkSpec); s.VlanIDRange != "" {
			if s.NamePrefix == "" {
				return fmt.Errorf("%s schema validation failed, error: namePrefix is required with vlanIdRange", k.Name)
			}
			if _, err := ParseVlanRange(s.VlanIDRange); err != nil {
				return fmt.Errorf("%s schema validation failed, error: %w", k.Name, err)
			}
			return nil
		}
	}

	if name, _ := data[reconcile.NameKey].(string); name == "" {
		return fmt.Errorf("%s schema validation failed, error: name is required", k.Name)
	}

	if state == StateResourceAssignmentsUpdated {
		s := spec.(*ScopeSpec)
		if len(s.AddedResourceUris) == 0 && len(s.RemovedResourceUris) == 0 {
			return fmt.Errorf("%s schema validation failed, error: addedResourceUris or removedResourceUris is required", k.Name)
		}
	}

	return nil
}
