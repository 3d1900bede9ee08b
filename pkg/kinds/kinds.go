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
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/stefanprodan/ovsync/pkg/reconcile"
)

const (
	EthernetNetwork             = "EthernetNetwork"
	FcNetwork                   = "FcNetwork"
	FcoeNetwork                 = "FcoeNetwork"
	NetworkSet                  = "NetworkSet"
	Scope                       = "Scope"
	Rack                        = "Rack"
	Datacenter                  = "Datacenter"
	EnclosureGroup              = "EnclosureGroup"
	StorageVolumeTemplate       = "StorageVolumeTemplate"
	Volume                      = "Volume"
	LogicalSwitchGroup          = "LogicalSwitchGroup"
	SasLogicalInterconnectGroup = "SasLogicalInterconnectGroup"
	UplinkSet                   = "UplinkSet"
	PowerDevice                 = "PowerDevice"
	UnmanagedDevice             = "UnmanagedDevice"
)

// Kind specific states.
const (
	StateDefaultBandwidthReset      reconcile.State = "default_bandwidth_reset"
	StateResourceAssignmentsUpdated reconcile.State = "resource_assignments_updated"
)

// Reference describes an attribute that may name another resource instead of holding its URI.
type Reference struct {
	// Field is the attribute holding a list of names or URIs, or a list of objects.
	Field string
	// NameField and URIField are set when Field is a list of objects.
	NameField string
	URIField  string
	// Kind is the kind of the referenced resource.
	Kind string
}

// Kind describes a OneView resource type.
type Kind struct {
	Name    string
	Display string
	Path    string
	// MinAPIVersion is a semver constraint on the X-API-Version, e.g. '>= 300'.
	MinAPIVersion string
	// Rank orders kinds when applying, lower ranks are applied first.
	Rank       int
	States     []reconcile.State
	References []Reference

	spec func() interface{}
}

// SupportsState reports whether the kind accepts the given state.
func (k Kind) SupportsState(state reconcile.State) bool {
	for _, s := range k.States {
		if s == state {
			return true
		}
	}
	return false
}

var defaultStates = []reconcile.State{reconcile.StatePresent, reconcile.StateAbsent}

var registry = []Kind{
	{
		Name:    EthernetNetwork,
		Display: "Ethernet Network",
		Path:    "/rest/ethernet-networks",
		Rank:    10,
		States:  append(defaultStates[:2:2], StateDefaultBandwidthReset),
		spec:    func() interface{} { return &EthernetNetworkSpec{} },
	},
	{
		Name:    FcNetwork,
		Display: "FC Network",
		Path:    "/rest/fc-networks",
		Rank:    11,
		States:  defaultStates,
		spec:    func() interface{} { return &FcNetworkSpec{} },
	},
	{
		Name:          FcoeNetwork,
		Display:       "FCoE Network",
		Path:          "/rest/fcoe-networks",
		MinAPIVersion: ">= 200",
		Rank:          12,
		States:        defaultStates,
		spec:          func() interface{} { return &FcoeNetworkSpec{} },
	},
	{
		Name:    NetworkSet,
		Display: "Network Set",
		Path:    "/rest/network-sets",
		Rank:    20,
		States:  defaultStates,
		References: []Reference{
			{Field: "networkUris", Kind: EthernetNetwork},
		},
		spec: func() interface{} { return &NetworkSetSpec{} },
	},
	{
		Name:    UplinkSet,
		Display: "Uplink Set",
		Path:    "/rest/uplink-sets",
		Rank:    25,
		States:  defaultStates,
		References: []Reference{
			{Field: "networkUris", Kind: EthernetNetwork},
			{Field: "fcNetworkUris", Kind: FcNetwork},
			{Field: "fcoeNetworkUris", Kind: FcoeNetwork},
		},
		spec: func() interface{} { return &UplinkSetSpec{} },
	},
	{
		Name:    Rack,
		Display: "Rack",
		Path:    "/rest/racks",
		Rank:    30,
		States:  defaultStates,
		spec:    func() interface{} { return &RackSpec{} },
	},
	{
		Name:    PowerDevice,
		Display: "Power Device",
		Path:    "/rest/power-devices",
		Rank:    32,
		States:  defaultStates,
		spec:    func() interface{} { return &PowerDeviceSpec{} },
	},
	{
		Name:    UnmanagedDevice,
		Display: "Unmanaged Device",
		Path:    "/rest/unmanaged-devices",
		Rank:    34,
		States:  defaultStates,
		spec:    func() interface{} { return &UnmanagedDeviceSpec{} },
	},
	{
		Name:    Datacenter,
		Display: "Data Center",
		Path:    "/rest/datacenters",
		Rank:    40,
		States:  defaultStates,
		References: []Reference{
			{Field: "contents", NameField: "resourceName", URIField: "resourceUri", Kind: Rack},
		},
		spec: func() interface{} { return &DatacenterSpec{} },
	},
	{
		Name:    EnclosureGroup,
		Display: "Enclosure Group",
		Path:    "/rest/enclosure-groups",
		Rank:    50,
		States:  defaultStates,
		spec:    func() interface{} { return &EnclosureGroupSpec{} },
	},
	{
		Name:    LogicalSwitchGroup,
		Display: "Logical Switch Group",
		Path:    "/rest/logical-switch-groups",
		Rank:    52,
		States:  defaultStates,
		spec:    func() interface{} { return &LogicalSwitchGroupSpec{} },
	},
	{
		Name:          SasLogicalInterconnectGroup,
		Display:       "SAS Logical Interconnect Group",
		Path:          "/rest/sas-logical-interconnect-groups",
		MinAPIVersion: ">= 300",
		Rank:          54,
		States:        defaultStates,
		spec:          func() interface{} { return &SasLogicalInterconnectGroupSpec{} },
	},
	{
		Name:          StorageVolumeTemplate,
		Display:       "Storage Volume Template",
		Path:          "/rest/storage-volume-templates",
		MinAPIVersion: ">= 300",
		Rank:          60,
		States:        defaultStates,
		spec:          func() interface{} { return &StorageVolumeTemplateSpec{} },
	},
	{
		Name:    Volume,
		Display: "Volume",
		Path:    "/rest/storage-volumes",
		Rank:    65,
		States:  defaultStates,
		spec:    func() interface{} { return &VolumeSpec{} },
	},
	{
		Name:          Scope,
		Display:       "Scope",
		Path:          "/rest/scopes",
		MinAPIVersion: ">= 300",
		Rank:          70,
		States:        append(defaultStates[:2:2], StateResourceAssignmentsUpdated),
		spec:          func() interface{} { return &ScopeSpec{} },
	},
}

// Lookup returns the kind matching the given name, display name or collection,
// ignoring case, e.g. 'EthernetNetwork', 'ethernet network' or 'ethernet-networks'.
func Lookup(name string) (Kind, error) {
	needle := normalize(name)
	for _, k := range registry {
		if normalize(k.Name) == needle ||
			normalize(k.Display) == needle ||
			normalize(path.Base(k.Path)) == needle ||
			normalize(strings.TrimSuffix(path.Base(k.Path), "s")) == needle {
			return k, nil
		}
	}
	return Kind{}, fmt.Errorf("unknown kind '%s', supported kinds are: %s", name, strings.Join(Names(), ", "))
}

// All returns the registered kinds in apply order.
func All() []Kind {
	out := make([]Kind, len(registry))
	copy(out, registry)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// Names returns the registered kind names in apply order.
func Names() []string {
	var names []string
	for _, k := range All() {
		names = append(names, k.Name)
	}
	return names
}

func normalize(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
