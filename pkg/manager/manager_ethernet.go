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
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/stefanprodan/ovsync/pkg/kinds"
	"github.com/stefanprodan/ovsync/pkg/objectutil"
	"github.com/stefanprodan/ovsync/pkg/oneview"
	"github.com/stefanprodan/ovsync/pkg/reconcile"
)

const (
	connectionTemplatesPath      = "/rest/connection-templates"
	defaultConnectionTemplateURI = connectionTemplatesPath + "/defaultConnectionTemplate"
	connectionTemplateURIKey     = "connectionTemplateUri"

	vlanIDRangeKey = "vlanIdRange"
	namePrefixKey  = "namePrefix"
)

const (
	msgBulkCreated        = "Ethernet Networks created successfully."
	msgMissingBulkCreated = "Some missing Ethernet Networks were created successfully."
	msgBulkAlreadyExist   = "The specified Ethernet Networks already exist."
	msgBulkDeleted        = "Ethernet Networks deleted successfully."
	msgBulkAlreadyAbsent  = "The specified Ethernet Networks are already absent."
	msgTemplateReset      = "Ethernet Network connection template was reset to the default."
)

// isBulk reports whether the document declares a range of ethernet networks.
func isBulk(kind kinds.Kind, doc *objectutil.Document) bool {
	if kind.Name != kinds.EthernetNetwork {
		return false
	}
	r, _ := doc.Data[vlanIDRangeKey].(string)
	return r != ""
}

// bulkPresent creates the networks named '<prefix>_<vlan>' that are missing from the range.
// Networks that already exist are left untouched.
func (m *ResourceManager) bulkPresent(ctx context.Context, kind kinds.Kind, doc *objectutil.Document, dryRun bool) (*ChangeSetEntry, error) {
	subject := objectutil.FmtDocument(doc)
	rc := m.client.Resource(kind.Path)
	prefix, _ := doc.Data[namePrefixKey].(string)

	want, err := kinds.VlanSet(doc.Data[vlanIDRangeKey].(string))
	if err != nil {
		return nil, fmt.Errorf("%s is invalid, error: %w", subject, err)
	}

	existing, err := m.getRange(ctx, rc, prefix, want)
	if err != nil {
		return nil, fmt.Errorf("%s query failed, error: %w", subject, err)
	}

	have := sets.NewInt()
	for id := range existing {
		have.Insert(id)
	}
	missing := want.Difference(have)

	entry := &ChangeSetEntry{
		Subject: subject,
		Kind:    kind.Name,
		Name:    prefix,
	}

	if missing.Len() == 0 {
		entry.Action = string(UnchangedAction)
		entry.Message = msgBulkAlreadyExist
		entry.Members = m.bulkMembers(kind, existing, missing)
		return entry, nil
	}

	body, err := reconcile.DeepCopy(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("%s is invalid, error: %w", subject, err)
	}
	body[vlanIDRangeKey] = kinds.FormatVlanRange(missing.List())

	if !dryRun {
		m.log.V(1).Info("creating networks in bulk", "prefix", prefix, "range", body[vlanIDRangeKey])
		if _, err := rc.CreateAt(ctx, rc.Path()+"/bulk", body); err != nil {
			return nil, fmt.Errorf("%s apply failed, error: %w", subject, err)
		}
		if existing, err = m.getRange(ctx, rc, prefix, want); err != nil {
			return nil, fmt.Errorf("%s query failed, error: %w", subject, err)
		}
		entry.Members = m.bulkMembers(kind, existing, missing)
	}

	entry.Action = string(CreatedAction)
	entry.Message = msgBulkCreated
	if have.Len() > 0 {
		entry.Message = msgMissingBulkCreated
	}
	if dryRun {
		entry.Diff = fmt.Sprintf("missing VLANs: %s\n", body[vlanIDRangeKey])
	}
	return entry, nil
}

// bulkAbsent deletes the networks of the range that exist.
func (m *ResourceManager) bulkAbsent(ctx context.Context, kind kinds.Kind, doc *objectutil.Document, dryRun bool) (*ChangeSetEntry, error) {
	subject := objectutil.FmtDocument(doc)
	rc := m.client.Resource(kind.Path)
	prefix, _ := doc.Data[namePrefixKey].(string)

	want, err := kinds.VlanSet(doc.Data[vlanIDRangeKey].(string))
	if err != nil {
		return nil, fmt.Errorf("%s is invalid, error: %w", subject, err)
	}

	existing, err := m.getRange(ctx, rc, prefix, want)
	if err != nil {
		return nil, fmt.Errorf("%s query failed, error: %w", subject, err)
	}

	entry := &ChangeSetEntry{
		Subject: subject,
		Kind:    kind.Name,
		Name:    prefix,
		Action:  string(AbsentAction),
		Message: msgBulkAlreadyAbsent,
	}
	if len(existing) == 0 {
		return entry, nil
	}

	caps := m.capabilities(rc, dryRun)
	for _, id := range sets.IntKeySet(existing).List() {
		res, err := reconcile.ReconcileAbsent(ctx, existing[id], caps.Delete)
		if err != nil {
			return nil, fmt.Errorf("%s delete failed, error: %w", subject, err)
		}
		entry.Members = append(entry.Members, *m.changeSetEntry(kind, existing[id].Name(), res))
	}

	entry.Action = string(DeletedAction)
	entry.Message = msgBulkDeleted
	return entry, nil
}

func (m *ResourceManager) bulkMembers(kind kinds.Kind, networks map[int]*reconcile.RemoteResource, created sets.Int) []ChangeSetEntry {
	members := make([]ChangeSetEntry, 0, len(networks))
	for _, id := range sets.IntKeySet(networks).List() {
		net := networks[id]
		action := UnchangedAction
		if created.Has(id) {
			action = CreatedAction
		}
		members = append(members, ChangeSetEntry{
			Subject: objectutil.FmtRef(kind.Name, net.Name()),
			Kind:    kind.Name,
			Name:    net.Name(),
			URI:     net.URI,
			Action:  string(action),
			Message: reconcile.Message(action).Sentence(kind.Display),
		})
	}
	return members
}

// getRange returns the networks named '<prefix>_<vlan>' for the VLANs in the set, indexed by VLAN ID.
func (m *ResourceManager) getRange(ctx context.Context, rc *oneview.ResourceClient, prefix string, vlans sets.Int) (map[int]*reconcile.RemoteResource, error) {
	escaped := strings.NewReplacer("'", "''", "_", "\\_", "%", "\\%").Replace(prefix)
	members, err := rc.GetAll(ctx, fmt.Sprintf("name matches '%s\\_%%'", escaped))
	if err != nil {
		return nil, err
	}

	networks := make(map[int]*reconcile.RemoteResource)
	for _, net := range members {
		name, _ := net[reconcile.NameKey].(string)
		if !strings.HasPrefix(name, prefix+"_") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimPrefix(name, prefix+"_"))
		if err != nil || !vlans.Has(id) {
			continue
		}
		networks[id] = reconcile.NewRemoteResource(net)
	}
	return networks, nil
}

// updateConnectionTemplate merges the bandwidth into the connection template of the network.
// It reports whether the template had drifted along with the bandwidth diff.
func (m *ResourceManager) updateConnectionTemplate(ctx context.Context, network *reconcile.RemoteResource, bandwidth interface{}, dryRun bool) (bool, string, error) {
	uri, _ := network.Attributes[connectionTemplateURIKey].(string)
	if uri == "" {
		return false, "", nil
	}

	desired, ok := bandwidth.(map[string]interface{})
	if !ok {
		return false, "", fmt.Errorf("bandwidth must be an object")
	}

	templates := m.client.Resource(connectionTemplatesPath)
	template, err := templates.Get(ctx, uri)
	if err != nil {
		return false, "", err
	}

	// The declared bandwidth replaces the template one as a whole.
	updated := make(map[string]interface{}, len(template))
	for k, v := range template {
		updated[k] = v
	}
	updated[bandwidthKey] = desired

	if reconcile.Equivalent(template, updated) {
		return false, "", nil
	}

	diff := cmp.Diff(template[bandwidthKey], desired)
	if !dryRun {
		m.log.V(1).Info("updating connection template", "uri", uri)
		if _, err := templates.Update(ctx, updated); err != nil {
			return false, "", err
		}
	}
	return true, diff, nil
}

// resetBandwidth copies the default connection template bandwidth onto the network template.
func (m *ResourceManager) resetBandwidth(ctx context.Context, kind kinds.Kind, doc *objectutil.Document, dryRun bool) (*ChangeSetEntry, error) {
	subject := objectutil.FmtDocument(doc)
	rc := m.client.Resource(kind.Path)

	network, err := rc.FetchByName(ctx, doc.GetName())
	if err != nil {
		return nil, fmt.Errorf("%s query failed, error: %w", subject, err)
	}
	if network == nil {
		return nil, fmt.Errorf("%s apply failed, error: %s was not found", subject, kind.Display)
	}

	defaults, err := m.client.Resource(connectionTemplatesPath).Get(ctx, defaultConnectionTemplateURI)
	if err != nil {
		return nil, fmt.Errorf("%s query failed, error: %w", subject, err)
	}

	changed, diff, err := m.updateConnectionTemplate(ctx, network, defaults[bandwidthKey], dryRun)
	if err != nil {
		return nil, fmt.Errorf("%s connection template update failed, error: %w", subject, err)
	}

	entry := &ChangeSetEntry{
		Subject: objectutil.FmtRef(kind.Name, network.Name()),
		Kind:    kind.Name,
		Name:    network.Name(),
		URI:     network.URI,
		Action:  string(UnchangedAction),
		Message: msgTemplateReset,
	}
	if changed {
		entry.Action = string(ConfiguredAction)
	}
	if dryRun {
		entry.Diff = diff
	}
	return entry, nil
}
