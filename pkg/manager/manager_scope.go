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

	"github.com/google/go-cmp/cmp"

	"github.com/stefanprodan/ovsync/pkg/kinds"
	"github.com/stefanprodan/ovsync/pkg/objectutil"
)

const msgAssignmentsUpdated = "Scope Resource Assignments updated successfully."

// updateAssignments adds and removes resources from the scope.
// The appliance does not report the assignments back, so the change is always applied.
func (m *ResourceManager) updateAssignments(ctx context.Context, kind kinds.Kind, doc *objectutil.Document, dryRun bool) (*ChangeSetEntry, error) {
	subject := objectutil.FmtDocument(doc)
	rc := m.client.Resource(kind.Path)

	scope, err := rc.FetchByName(ctx, doc.GetName())
	if err != nil {
		return nil, fmt.Errorf("%s query failed, error: %w", subject, err)
	}
	if scope == nil {
		return nil, fmt.Errorf("%s apply failed, error: %s not found", subject, kind.Display)
	}

	body := map[string]interface{}{}
	for _, k := range []string{addedResourceUrisKey, removedResourceUrisKey} {
		if v, ok := doc.Data[k]; ok && v != nil {
			body[k] = v
		}
	}

	entry := &ChangeSetEntry{
		Subject: objectutil.FmtRef(kind.Name, scope.Name()),
		Kind:    kind.Name,
		Name:    scope.Name(),
		URI:     scope.URI,
		Action:  string(ConfiguredAction),
		Message: msgAssignmentsUpdated,
	}

	if dryRun {
		entry.Diff = cmp.Diff(map[string]interface{}{}, body)
		return entry, nil
	}

	if _, err := rc.Patch(ctx, scope.URI+"/resource-assignments", body); err != nil {
		return nil, fmt.Errorf("%s apply failed, error: %w", subject, err)
	}
	return entry, nil
}
