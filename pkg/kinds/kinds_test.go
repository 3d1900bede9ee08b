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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stefanprodan/ovsync/pkg/reconcile"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"EthernetNetwork", "ethernet network", "ethernet-networks", "ethernet-network", "ETHERNET_NETWORK"} {
		k, err := Lookup(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if diff := cmp.Diff("/rest/ethernet-networks", k.Path); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
	}

	if _, err := Lookup("server-profiles"); err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Errorf("expected unknown kind error, got %v", err)
	}
}

func TestLookup_Kinds(t *testing.T) {
	tests := []struct {
		name string
		kind string
		path string
	}{
		{name: "Volume", kind: Volume, path: "/rest/storage-volumes"},
		{name: "storage-volume", kind: Volume, path: "/rest/storage-volumes"},
		{name: "storage volume template", kind: StorageVolumeTemplate, path: "/rest/storage-volume-templates"},
		{name: "logical-switch-groups", kind: LogicalSwitchGroup, path: "/rest/logical-switch-groups"},
		{name: "SAS Logical Interconnect Group", kind: SasLogicalInterconnectGroup, path: "/rest/sas-logical-interconnect-groups"},
		{name: "uplink_set", kind: UplinkSet, path: "/rest/uplink-sets"},
		{name: "power-devices", kind: PowerDevice, path: "/rest/power-devices"},
		{name: "UnmanagedDevice", kind: UnmanagedDevice, path: "/rest/unmanaged-devices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := Lookup(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.kind, k.Name); diff != "" {
				t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.path, k.Path); diff != "" {
				t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAll_Order(t *testing.T) {
	names := Names()
	if diff := cmp.Diff(EthernetNetwork, names[0]); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Scope, names[len(names)-1]); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	ethernet, _ := Lookup(EthernetNetwork)
	scope, _ := Lookup(Scope)
	datacenter, _ := Lookup(Datacenter)
	volume, _ := Lookup(Volume)
	uplinkSet, _ := Lookup(UplinkSet)
	powerDevice, _ := Lookup(PowerDevice)

	tests := []struct {
		name    string
		kind    Kind
		state   reconcile.State
		data    map[string]interface{}
		wantErr string
	}{
		{
			name:  "valid network",
			kind:  ethernet,
			state: reconcile.StatePresent,
			data:  map[string]interface{}{"name": "prod", "vlanId": 10, "smartLink": true, "bandwidth": map[string]interface{}{"maximumBandwidth": 10000}},
		},
		{
			name:    "unknown field",
			kind:    ethernet,
			state:   reconcile.StatePresent,
			data:    map[string]interface{}{"name": "prod", "vlanID": 10},
			wantErr: "unknown field",
		},
		{
			name:    "field name with different case",
			kind:    ethernet,
			state:   reconcile.StatePresent,
			data:    map[string]interface{}{"name": "prod", "SmartLink": true},
			wantErr: `unknown field "SmartLink"`,
		},
		{
			name:  "volume with provisioning",
			kind:  volume,
			state: reconcile.StatePresent,
			data: map[string]interface{}{"name": "vol", "provisioningParameters": map[string]interface{}{
				"provisionType": "Full", "shareable": true, "requestedCapacity": 1073741824, "storagePoolUri": "/rest/storage-pools/1",
			}},
		},
		{
			name:    "volume with unknown provisioning field",
			kind:    volume,
			state:   reconcile.StatePresent,
			data:    map[string]interface{}{"name": "vol", "provisioningParameters": map[string]interface{}{"capacity": 1}},
			wantErr: "unknown field",
		},
		{
			name:  "uplink set with network names",
			kind:  uplinkSet,
			state: reconcile.StatePresent,
			data:  map[string]interface{}{"name": "up", "networkUris": []interface{}{"prod"}, "connectionMode": "Auto"},
		},
		{
			name:    "power device state not supported",
			kind:    powerDevice,
			state:   StateDefaultBandwidthReset,
			data:    map[string]interface{}{"name": "pdu"},
			wantErr: "does not support state",
		},
		{
			name:    "wrong type",
			kind:    ethernet,
			state:   reconcile.StatePresent,
			data:    map[string]interface{}{"name": "prod", "smartLink": "yes"},
			wantErr: "schema validation failed",
		},
		{
			name:    "missing name",
			kind:    ethernet,
			state:   reconcile.StateAbsent,
			data:    map[string]interface{}{"vlanId": 10},
			wantErr: "name is required",
		},
		{
			name:    "declared uri",
			kind:    ethernet,
			state:   reconcile.StatePresent,
			data:    map[string]interface{}{"name": "prod", "uri": "/rest/ethernet-networks/1"},
			wantErr: "unknown field",
		},
		{
			name:  "bulk without name",
			kind:  ethernet,
			state: reconcile.StatePresent,
			data:  map[string]interface{}{"vlanIdRange": "1-3,5", "namePrefix": "prod", "purpose": "General"},
		},
		{
			name:    "bulk without prefix",
			kind:    ethernet,
			state:   reconcile.StatePresent,
			data:    map[string]interface{}{"vlanIdRange": "1-3"},
			wantErr: "namePrefix is required",
		},
		{
			name:    "unsupported state",
			kind:    datacenter,
			state:   StateDefaultBandwidthReset,
			data:    map[string]interface{}{"name": "dc"},
			wantErr: "does not support state",
		},
		{
			name:    "assignments without uris",
			kind:    scope,
			state:   StateResourceAssignmentsUpdated,
			data:    map[string]interface{}{"name": "s"},
			wantErr: "addedResourceUris or removedResourceUris",
		},
		{
			name:  "datacenter contents",
			kind:  datacenter,
			state: reconcile.StatePresent,
			data: map[string]interface{}{"name": "dc", "contents": []interface{}{
				map[string]interface{}{"resourceName": "rack-1", "x": 10.5, "y": 0, "rotation": 90},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.kind.Validate(tt.state, tt.data)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseVlanRange(t *testing.T) {
	got, err := ParseVlanRange("5, 1-3,2")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 5}, got); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}

	for _, invalid := range []string{"", "a-3", "3-1", "0", "4095", "1-"} {
		if _, err := ParseVlanRange(invalid); err == nil {
			t.Errorf("expected error for %q", invalid)
		}
	}
}

func TestFormatVlanRange(t *testing.T) {
	if diff := cmp.Diff("1-3,5,7-8", FormatVlanRange([]int{1, 2, 3, 5, 7, 8})); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}
