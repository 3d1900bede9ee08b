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
	"strings"

	"github.com/go-logr/logr"

	"github.com/stefanprodan/ovsync/pkg/kinds"
	"github.com/stefanprodan/ovsync/pkg/objectutil"
	"github.com/stefanprodan/ovsync/pkg/oneview"
	"github.com/stefanprodan/ovsync/pkg/reconcile"
)

const (
	bandwidthKey           = "bandwidth"
	contentsKey            = "contents"
	configurationScriptKey = "configurationScript"
	addedResourceUrisKey   = "addedResourceUris"
	removedResourceUrisKey = "removedResourceUris"
)

// Apply reconciles the given document with the remote resource.
// The resource is created when missing and updated only if it has drifted.
func (m *ResourceManager) Apply(ctx context.Context, doc *objectutil.Document) (*ChangeSetEntry, error) {
	return m.reconcileDocument(ctx, doc, doc.GetState(), false)
}

// ApplyAll validates the given documents, orders them by kind and applies them one by one.
// If a document fails, the change set of the documents applied so far is returned with the error.
func (m *ResourceManager) ApplyAll(ctx context.Context, docs []*objectutil.Document) (*ChangeSet, error) {
	if err := m.Validate(docs); err != nil {
		return nil, err
	}

	m.order.Sort(docs)
	changeSet := NewChangeSet()
	for _, doc := range docs {
		entry, err := m.Apply(ctx, doc)
		if err != nil {
			return changeSet, err
		}
		changeSet.Add(*entry)
	}

	return changeSet, nil
}

func (m *ResourceManager) present(ctx context.Context, kind kinds.Kind, doc *objectutil.Document, dryRun bool) (*ChangeSetEntry, error) {
	subject := objectutil.FmtDocument(doc)
	rc := m.client.Resource(kind.Path)

	desired := doc.DesiredState()
	bandwidth, hasBandwidth := desired.Attributes[bandwidthKey]
	delete(desired.Attributes, bandwidthKey)
	delete(desired.Attributes, addedResourceUrisKey)
	delete(desired.Attributes, removedResourceUrisKey)

	if err := m.resolveReferences(ctx, kind, desired.Attributes); err != nil {
		return nil, fmt.Errorf("%s apply failed, error: %w", subject, err)
	}

	existing, err := m.reconciler(rc, dryRun).Lookup(ctx, desired)
	if err != nil {
		return nil, fmt.Errorf("%s query failed, error: %w", subject, err)
	}
	if existing != nil && existing.URI != "" {
		if err := m.prepareUpdate(ctx, kind, desired, existing); err != nil {
			return nil, fmt.Errorf("%s apply failed, error: %w", subject, err)
		}
	}

	caps := m.capabilities(rc, dryRun)
	log := m.log.WithValues("subject", subject)
	res, err := reconcile.ReconcilePresent(logr.NewContext(ctx, log), desired, existing, caps.Create, caps.Update)
	if err != nil {
		return nil, fmt.Errorf("%s apply failed, error: %w", subject, err)
	}

	var diff string
	if dryRun && res.Message == reconcile.Updated {
		diff = maskedDiff(existing.Attributes, res.Resource.Attributes)
	}

	if hasBandwidth && bandwidth != nil && res.Resource != nil {
		changed, templateDiff, err := m.updateConnectionTemplate(ctx, res.Resource, bandwidth, dryRun)
		if err != nil {
			return nil, fmt.Errorf("%s connection template update failed, error: %w", subject, err)
		}
		if changed {
			if !res.Changed {
				res.Changed = true
				res.Message = reconcile.Updated
			}
			if dryRun {
				diff += templateDiff
			}
		}
	}

	entry := m.changeSetEntry(kind, desired.TargetName(), res)
	entry.Diff = diff
	return entry, nil
}

// resolveReferences replaces the resource names found in reference fields with URIs.
func (m *ResourceManager) resolveReferences(ctx context.Context, kind kinds.Kind, attrs map[string]interface{}) error {
	for _, ref := range kind.References {
		v, ok := attrs[ref.Field]
		if !ok || v == nil {
			continue
		}
		list, ok := v.([]interface{})
		if !ok {
			return fmt.Errorf("%s must be a list", ref.Field)
		}

		target, err := kinds.Lookup(ref.Kind)
		if err != nil {
			return err
		}
		rc := m.client.Resource(target.Path)

		resolved := make([]interface{}, 0, len(list))
		for _, item := range list {
			if ref.NameField == "" {
				s, _ := item.(string)
				uri, err := m.resolveURI(ctx, target, rc, s)
				if err != nil {
					return err
				}
				resolved = append(resolved, uri)
				continue
			}

			obj, ok := item.(map[string]interface{})
			if !ok {
				resolved = append(resolved, item)
				continue
			}
			out := make(map[string]interface{}, len(obj))
			for k, v := range obj {
				out[k] = v
			}
			if name, _ := out[ref.NameField].(string); name != "" {
				res, err := rc.GetByName(ctx, name)
				if err != nil {
					return err
				}
				if res != nil {
					out[ref.URIField] = res["uri"]
				} else if uri, ok := plannedURI(ctx, target, name); ok {
					out[ref.URIField] = uri
				} else {
					return fmt.Errorf("%s not found: %s", target.Display, name)
				}
			}
			delete(out, ref.NameField)
			resolved = append(resolved, out)
		}
		attrs[ref.Field] = resolved
	}
	return nil
}

func (m *ResourceManager) resolveURI(ctx context.Context, target kinds.Kind, rc *oneview.ResourceClient, nameOrURI string) (string, error) {
	if strings.HasPrefix(nameOrURI, "/rest/") {
		return nameOrURI, nil
	}
	res, err := rc.GetByName(ctx, nameOrURI)
	if err != nil {
		return "", err
	}
	if res == nil {
		if uri, ok := plannedURI(ctx, target, nameOrURI); ok {
			return uri, nil
		}
		return "", fmt.Errorf("%s not found: %s", target.Display, nameOrURI)
	}
	uri, _ := res["uri"].(string)
	return uri, nil
}

// prepareUpdate adjusts the desired attributes of an existing resource
// for the fields the appliance does not return as declared.
func (m *ResourceManager) prepareUpdate(ctx context.Context, kind kinds.Kind, desired reconcile.DesiredState, existing *reconcile.RemoteResource) error {
	switch kind.Name {
	case kinds.Datacenter:
		current, _ := existing.Attributes[contentsKey].([]interface{})
		declared, ok := desired.Attributes[contentsKey].([]interface{})
		if ok && len(current) > 0 {
			desired.Attributes[contentsKey] = reconcile.MergeListByKey(current, declared, "resourceUri")
		}
	case kinds.EnclosureGroup:
		script, ok := desired.Attributes[configurationScriptKey]
		if !ok {
			return nil
		}
		var current string
		if err := m.client.GET(ctx, existing.URI+"/script").Execute(&current); err != nil {
			return fmt.Errorf("reading configuration script failed, error: %w", err)
		}
		if s, _ := script.(string); s == current {
			m.log.V(1).Info("configuration script is unchanged", "uri", existing.URI)
			delete(desired.Attributes, configurationScriptKey)
		}
	}
	return nil
}
