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
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"

	"github.com/stefanprodan/ovsync/pkg/objectutil"
)

const networkManifest = `
apiVersion: ovsync.dev/v1
kind: EthernetNetwork
data:
  name: %s
  vlanId: 10
  purpose: %s
  smartLink: false
`

func TestApply(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id := generateName("net")

	t.Run("creates network", func(t *testing.T) {
		doc := readDocuments(t, networkManifest, id, "General")[0]
		entry, err := manager.Apply(ctx, doc)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff("EthernetNetwork/"+id, entry.Subject); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(string(CreatedAction), entry.Action); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff("Ethernet Network created successfully.", entry.Message); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if appliance.Get(entry.URI) == nil {
			t.Errorf("expected %s to exist on the appliance", entry.URI)
		}
	})

	t.Run("skips unchanged network", func(t *testing.T) {
		appliance.ResetRequests()
		doc := readDocuments(t, networkManifest, id, "General")[0]
		entry, err := manager.Apply(ctx, doc)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(string(UnchangedAction), entry.Action); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff("Ethernet Network already exists.", entry.Message); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if len(appliance.Requests()) != 0 {
			t.Errorf("expected no mutating requests, got %v", appliance.Requests())
		}
	})

	t.Run("updates drifted network", func(t *testing.T) {
		doc := readDocuments(t, networkManifest, id, "Management")[0]
		entry, err := manager.Apply(ctx, doc)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(string(ConfiguredAction), entry.Action); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff("Management", appliance.Get(entry.URI)["purpose"]); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
	})

	t.Run("renames network", func(t *testing.T) {
		docs := readDocuments(t, `
kind: EthernetNetwork
data:
  name: %s
  newName: %s-renamed
`, id, id)

		entry, err := manager.Apply(ctx, docs[0])
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff("EthernetNetwork/"+id+"-renamed", entry.Subject); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(string(ConfiguredAction), entry.Action); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}

		// the old name is gone, the rename is found by the new name
		entry, err = manager.Apply(ctx, docs[0])
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(string(UnchangedAction), entry.Action); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
	})
}

func TestApply_Bandwidth(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id := generateName("bw")
	manifest := `
kind: EthernetNetwork
data:
  name: %s
  vlanId: 20
  bandwidth:
    typicalBandwidth: %d
`
	bandwidthOf := func(uri string) map[string]interface{} {
		network := appliance.Get(uri)
		template := appliance.Get(network["connectionTemplateUri"].(string))
		return template["bandwidth"].(map[string]interface{})
	}

	var uri string

	t.Run("creates network with bandwidth", func(t *testing.T) {
		entry, err := manager.Apply(ctx, readDocuments(t, manifest, id, 2000)[0])
		if err != nil {
			t.Fatal(err)
		}
		uri = entry.URI

		if diff := cmp.Diff(string(CreatedAction), entry.Action); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		want := map[string]interface{}{"typicalBandwidth": 2000.0}
		if diff := cmp.Diff(want, bandwidthOf(uri)); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if _, ok := appliance.Get(uri)["bandwidth"]; ok {
			t.Errorf("bandwidth should not be stored on the network")
		}
	})

	t.Run("skips unchanged bandwidth", func(t *testing.T) {
		entry, err := manager.Apply(ctx, readDocuments(t, manifest, id, 2000)[0])
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(string(UnchangedAction), entry.Action); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
	})

	t.Run("reports bandwidth drift as update", func(t *testing.T) {
		entry, err := manager.Apply(ctx, readDocuments(t, manifest, id, 3000)[0])
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(string(ConfiguredAction), entry.Action); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(3000.0, bandwidthOf(uri)["typicalBandwidth"]); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
	})

	t.Run("resets bandwidth to default", func(t *testing.T) {
		docs := readDocuments(t, `
kind: EthernetNetwork
state: default_bandwidth_reset
data:
  name: %s
`, id)

		entry, err := manager.Apply(ctx, docs[0])
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(string(ConfiguredAction), entry.Action); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(msgTemplateReset, entry.Message); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(2500.0, bandwidthOf(uri)["typicalBandwidth"]); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}

		entry, err = manager.Apply(ctx, docs[0])
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(string(UnchangedAction), entry.Action); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
	})

	t.Run("fails to reset missing network", func(t *testing.T) {
		docs := readDocuments(t, `
kind: EthernetNetwork
state: default_bandwidth_reset
data:
  name: %s
`, generateName("missing"))

		_, err := manager.Apply(ctx, docs[0])
		if err == nil || !strings.Contains(err.Error(), "Ethernet Network was not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})
}

func TestApplyAll_Kinds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id := generateName("kinds")
	docs := readDocuments(t, `
kind: Volume
data:
  name: %[1]s-vol
  provisioningParameters:
    provisionType: Full
    shareable: true
    requestedCapacity: 1073741824
    storagePoolUri: /rest/storage-pools/1
---
kind: LogicalSwitchGroup
data:
  name: %[1]s-lsg
  switchMapTemplate:
    switchMapEntryTemplates:
    - logicalLocation:
        locationEntries:
        - relativeValue: 1
          type: StackingMemberId
      permittedSwitchTypeUri: /rest/switch-types/1
---
kind: SasLogicalInterconnectGroup
data:
  name: %[1]s-sas
  enclosureType: SY12000
  enclosureIndexes: [1]
  interconnectBaySet: 1
---
kind: UplinkSet
data:
  name: %[1]s-up
  logicalInterconnectUri: /rest/logical-interconnects/1
  networkUris: [%[1]s-net]
  connectionMode: Auto
  networkType: Ethernet
---
kind: EthernetNetwork
data:
  name: %[1]s-net
  vlanId: 61
---
kind: PowerDevice
data:
  name: %[1]s-pdu
  ratedCapacity: 40
---
kind: UnmanagedDevice
data:
  name: %[1]s-dev
  model: Procurve 4200VL
  deviceType: Server
`, id)

	t.Run("creates resources of every kind", func(t *testing.T) {
		changeSet, err := manager.ApplyAll(ctx, docs)
		if err != nil {
			t.Fatal(err)
		}

		var got []string
		for _, e := range changeSet.Entries {
			got = append(got, e.Subject+" "+e.Message)
		}
		want := []string{
			"EthernetNetwork/" + id + "-net Ethernet Network created successfully.",
			"UplinkSet/" + id + "-up Uplink Set created successfully.",
			"PowerDevice/" + id + "-pdu Power Device created successfully.",
			"UnmanagedDevice/" + id + "-dev Unmanaged Device created successfully.",
			"LogicalSwitchGroup/" + id + "-lsg Logical Switch Group created successfully.",
			"SasLogicalInterconnectGroup/" + id + "-sas SAS Logical Interconnect Group created successfully.",
			"Volume/" + id + "-vol Volume created successfully.",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}

		uplinkSet := appliance.Get(changeSet.Entries[1].URI)
		if diff := cmp.Diff([]interface{}{changeSet.Entries[0].URI}, uplinkSet["networkUris"]); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if !strings.HasPrefix(changeSet.Entries[6].URI, "/rest/storage-volumes/") {
			t.Errorf("unexpected volume uri %s", changeSet.Entries[6].URI)
		}
	})

	t.Run("skips unchanged resources", func(t *testing.T) {
		appliance.ResetRequests()
		changeSet, err := manager.ApplyAll(ctx, docs)
		if err != nil {
			t.Fatal(err)
		}
		if changeSet.Changed() {
			t.Errorf("expected no changes on second apply, got %v", changeSet.Entries)
		}
		if len(appliance.Requests()) != 0 {
			t.Errorf("expected no mutating requests, got %v", appliance.Requests())
		}
	})
}

func TestApplyAll_References(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id := generateName("ref")

	t.Run("resolves network names", func(t *testing.T) {
		docs := readDocuments(t, `
kind: NetworkSet
data:
  name: %[1]s-set
  networkUris: [%[1]s-a, %[1]s-b]
---
kind: EthernetNetwork
data:
  name: %[1]s-a
  vlanId: 31
---
kind: EthernetNetwork
data:
  name: %[1]s-b
  vlanId: 32
`, id)

		changeSet, err := manager.ApplyAll(ctx, docs)
		if err != nil {
			t.Fatal(err)
		}

		var subjects []string
		for _, e := range changeSet.Entries {
			subjects = append(subjects, e.Subject)
		}
		want := []string{"EthernetNetwork/" + id + "-a", "EthernetNetwork/" + id + "-b", "NetworkSet/" + id + "-set"}
		if diff := cmp.Diff(want, subjects); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}

		set := appliance.Get(changeSet.Entries[2].URI)
		uris := []interface{}{changeSet.Entries[0].URI, changeSet.Entries[1].URI}
		if diff := cmp.Diff(uris, set["networkUris"]); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}

		changeSet, err = manager.ApplyAll(ctx, docs)
		if err != nil {
			t.Fatal(err)
		}
		if changeSet.Changed() {
			t.Errorf("expected no changes on second apply, got %v", changeSet.Entries)
		}
	})

	t.Run("fails on missing network", func(t *testing.T) {
		docs := readDocuments(t, `
kind: NetworkSet
data:
  name: %[1]s-broken
  networkUris: [%[1]s-missing]
`, id)

		_, err := manager.ApplyAll(ctx, docs)
		if err == nil || !strings.Contains(err.Error(), "Ethernet Network not found: "+id+"-missing") {
			t.Errorf("expected missing network error, got %v", err)
		}
	})

	t.Run("resolves rack names in data center contents", func(t *testing.T) {
		docs := readDocuments(t, `
kind: Rack
data:
  name: %[1]s-rack
---
kind: Datacenter
data:
  name: %[1]s-dc
  width: 5000
  contents:
  - resourceName: %[1]s-rack
    x: 10
    y: 20
`, id)

		changeSet, err := manager.ApplyAll(ctx, docs)
		if err != nil {
			t.Fatal(err)
		}

		rack := getEntryFrom(changeSet, "Rack/"+id+"-rack")
		dc := getEntryFrom(changeSet, "Datacenter/"+id+"-dc")
		if rack == nil || dc == nil {
			t.Fatalf("missing entries in %v", changeSet.Entries)
		}

		contents := appliance.Get(dc.URI)["contents"].([]interface{})
		content := contents[0].(map[string]interface{})
		if diff := cmp.Diff(rack.URI, content["resourceUri"]); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if _, ok := content["resourceName"]; ok {
			t.Errorf("resourceName should be replaced by resourceUri")
		}

		changeSet, err = manager.ApplyAll(ctx, docs)
		if err != nil {
			t.Fatal(err)
		}
		if changeSet.Changed() {
			t.Errorf("expected no changes on second apply, got %v", changeSet.Entries)
		}
	})
}

func TestApply_EnclosureGroupScript(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id := generateName("eg")
	manifest := `
kind: EnclosureGroup
data:
  name: %s
  stackingMode: Enclosure
  configurationScript: %s
`

	entry, err := manager.Apply(ctx, readDocuments(t, manifest, id, "echo one")[0])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("echo one", appliance.Script(entry.URI)); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}

	entry, err = manager.Apply(ctx, readDocuments(t, manifest, id, "echo one")[0])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(UnchangedAction), entry.Action); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}

	entry, err = manager.Apply(ctx, readDocuments(t, manifest, id, "echo two")[0])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(ConfiguredAction), entry.Action); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("echo two", appliance.Script(entry.URI)); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}

func TestApplyAll_Validation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	docs := readDocuments(t, `
kind: EthernetNetwork
data:
  name: %s
  vlan: 10
---
kind: Rack
data:
  model: 42U
---
kind: ServerProfile
data:
  name: web
`, generateName("invalid"))

	appliance.ResetRequests()
	_, err := manager.ApplyAll(ctx, docs)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"unknown field", "name is required", "unknown kind 'ServerProfile'"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to contain %q, got %v", want, err)
		}
	}
	if len(appliance.Requests()) != 0 {
		t.Errorf("expected no mutating requests, got %v", appliance.Requests())
	}

	t.Run("rejects kinds above the API version", func(t *testing.T) {
		client, err := newClient(200)
		if err != nil {
			t.Fatal(err)
		}
		old := NewResourceManager(client, nil, logr.Discard())

		docs := readDocuments(t, `
kind: Scope
data:
  name: %s
`, generateName("scope"))

		_, err = old.ApplyAll(ctx, docs)
		if err == nil || !strings.Contains(err.Error(), "API version 200") {
			t.Errorf("expected API version error, got %v", err)
		}
	})
}

func TestChangeSet_Changed(t *testing.T) {
	cs := NewChangeSet()
	cs.Add(ChangeSetEntry{Subject: objectutil.FmtRef("Rack", "a"), Action: string(UnchangedAction)})
	cs.Add(ChangeSetEntry{Subject: objectutil.FmtRef("Rack", "b"), Action: string(AbsentAction)})
	if cs.Changed() {
		t.Errorf("expected no change")
	}
	cs.Add(ChangeSetEntry{Subject: objectutil.FmtRef("Rack", "c"), Action: string(DeletedAction)})
	if !cs.Changed() {
		t.Errorf("expected change")
	}
	if diff := cmp.Diff("Rack/c deleted", cs.Entries[2].String()); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}
