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

// Common holds the attributes shared by all kinds.
type Common struct {
	Name        string  `json:"name,omitempty"`
	NewName     string  `json:"newName,omitempty"`
	Type        string  `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
	ScopesURI   *string `json:"scopesUri,omitempty"`
}

// Bandwidth is stored on the connection template of a network.
type Bandwidth struct {
	TypicalBandwidth *int `json:"typicalBandwidth,omitempty"`
	MaximumBandwidth *int `json:"maximumBandwidth,omitempty"`
}

type EthernetNetworkSpec struct {
	Common                `json:",inline"`
	VlanID                *int       `json:"vlanId,omitempty"`
	Purpose               *string    `json:"purpose,omitempty"`
	SmartLink             *bool      `json:"smartLink,omitempty"`
	PrivateNetwork        *bool      `json:"privateNetwork,omitempty"`
	EthernetNetworkType   *string    `json:"ethernetNetworkType,omitempty"`
	ConnectionTemplateURI *string    `json:"connectionTemplateUri,omitempty"`
	SubnetURI             *string    `json:"subnetUri,omitempty"`
	Bandwidth             *Bandwidth `json:"bandwidth,omitempty"`

	// bulk creation
	VlanIDRange string `json:"vlanIdRange,omitempty"`
	NamePrefix  string `json:"namePrefix,omitempty"`
}

type FcNetworkSpec struct {
	Common                  `json:",inline"`
	FabricType              *string    `json:"fabricType,omitempty"`
	AutoLoginRedistribution *bool      `json:"autoLoginRedistribution,omitempty"`
	LinkStabilityTime       *int       `json:"linkStabilityTime,omitempty"`
	ManagedSanURI           *string    `json:"managedSanUri,omitempty"`
	ConnectionTemplateURI   *string    `json:"connectionTemplateUri,omitempty"`
	Bandwidth               *Bandwidth `json:"bandwidth,omitempty"`
}

type FcoeNetworkSpec struct {
	Common                `json:",inline"`
	VlanID                *int       `json:"vlanId,omitempty"`
	ManagedSanURI         *string    `json:"managedSanUri,omitempty"`
	ConnectionTemplateURI *string    `json:"connectionTemplateUri,omitempty"`
	Bandwidth             *Bandwidth `json:"bandwidth,omitempty"`
}

type NetworkSetSpec struct {
	Common                `json:",inline"`
	NetworkUris           []string   `json:"networkUris,omitempty"`
	NativeNetworkURI      *string    `json:"nativeNetworkUri,omitempty"`
	ConnectionTemplateURI *string    `json:"connectionTemplateUri,omitempty"`
	Bandwidth             *Bandwidth `json:"bandwidth,omitempty"`
}

type ScopeSpec struct {
	Common `json:",inline"`

	// resource_assignments_updated
	AddedResourceUris   []string `json:"addedResourceUris,omitempty"`
	RemovedResourceUris []string `json:"removedResourceUris,omitempty"`
}

type RackMount struct {
	MountURI       string  `json:"mountUri,omitempty"`
	TopUSlot       *int    `json:"topUSlot,omitempty"`
	USlot          *int    `json:"uSlot,omitempty"`
	UHeight        *int    `json:"uHeight,omitempty"`
	Location       *string `json:"location,omitempty"`
	RelativeOrder  *int    `json:"relativeOrder,omitempty"`
	PhysicalDevice *string `json:"physicalDeviceUri,omitempty"`
}

type RackSpec struct {
	Common       `json:",inline"`
	Model        *string     `json:"model,omitempty"`
	SerialNumber *string     `json:"serialNumber,omitempty"`
	PartNumber   *string     `json:"partNumber,omitempty"`
	Depth        *int        `json:"depth,omitempty"`
	Height       *int        `json:"height,omitempty"`
	Width        *int        `json:"width,omitempty"`
	UHeight      *int        `json:"uHeight,omitempty"`
	ThermalLimit *int        `json:"thermalLimit,omitempty"`
	Rackmounts   []RackMount `json:"rackMounts,omitempty"`
}

type DatacenterContent struct {
	ResourceURI  string   `json:"resourceUri,omitempty"`
	ResourceName string   `json:"resourceName,omitempty"`
	X            *float64 `json:"x,omitempty"`
	Y            *float64 `json:"y,omitempty"`
	Rotation     *int     `json:"rotation,omitempty"`
}

type DatacenterSpec struct {
	Common                  `json:",inline"`
	Width                   *int                `json:"width,omitempty"`
	Depth                   *int                `json:"depth,omitempty"`
	CoolingCapacity         *int                `json:"coolingCapacity,omitempty"`
	CoolingMultiplier       *float64            `json:"coolingMultiplier,omitempty"`
	CostPerKilowattHour     *float64            `json:"costPerKilowattHour,omitempty"`
	Currency                *string             `json:"currency,omitempty"`
	DefaultPowerLineVoltage *int                `json:"defaultPowerLineVoltage,omitempty"`
	DeratingType            *string             `json:"deratingType,omitempty"`
	DeratingPercentage      *float64            `json:"deratingPercentage,omitempty"`
	Contents                []DatacenterContent `json:"contents,omitempty"`
}

type InterconnectBayMapping struct {
	InterconnectBay             int     `json:"interconnectBay"`
	LogicalInterconnectGroupURI *string `json:"logicalInterconnectGroupUri,omitempty"`
	EnclosureIndex              *int    `json:"enclosureIndex,omitempty"`
}

type EnclosureGroupSpec struct {
	Common                      `json:",inline"`
	StackingMode                *string                  `json:"stackingMode,omitempty"`
	EnclosureCount              *int                     `json:"enclosureCount,omitempty"`
	EnclosureTypeURI            *string                  `json:"enclosureTypeUri,omitempty"`
	IPAddressingMode            *string                  `json:"ipAddressingMode,omitempty"`
	PowerMode                   *string                  `json:"powerMode,omitempty"`
	InterconnectBayMappingCount *int                     `json:"interconnectBayMappingCount,omitempty"`
	InterconnectBayMappings     []InterconnectBayMapping `json:"interconnectBayMappings,omitempty"`
	ConfigurationScript         *string                  `json:"configurationScript,omitempty"`
}

type StorageVolumeTemplateSpec struct {
	Common          `json:",inline"`
	RootTemplateURI *string                `json:"rootTemplateUri,omitempty"`
	StoragePoolURI  *string                `json:"storagePoolUri,omitempty"`
	Provisioning    map[string]interface{} `json:"provisioning,omitempty"`
	Properties      map[string]interface{} `json:"properties,omitempty"`
	IsShareable     *bool                  `json:"isShareable,omitempty"`
}

type VolumeProvisioning struct {
	ProvisionType     *string `json:"provisionType,omitempty"`
	Shareable         *bool   `json:"shareable,omitempty"`
	RequestedCapacity *int64  `json:"requestedCapacity,omitempty"`
	StoragePoolURI    *string `json:"storagePoolUri,omitempty"`
}

type VolumeSpec struct {
	Common                 `json:",inline"`
	ProvisioningParameters *VolumeProvisioning `json:"provisioningParameters,omitempty"`
	StorageSystemURI       *string             `json:"storageSystemUri,omitempty"`
	SnapshotPoolURI        *string             `json:"snapshotPoolUri,omitempty"`
	TemplateURI            *string             `json:"templateUri,omitempty"`
	WWN                    *string             `json:"wwn,omitempty"`
	Shareable              *bool               `json:"shareable,omitempty"`
	IsPermanent            *bool               `json:"isPermanent,omitempty"`
}

type LogicalSwitchGroupSpec struct {
	Common            `json:",inline"`
	Category          *string                `json:"category,omitempty"`
	State             *string                `json:"state,omitempty"`
	SwitchMapTemplate map[string]interface{} `json:"switchMapTemplate,omitempty"`
}

type SasLogicalInterconnectGroupSpec struct {
	Common                  `json:",inline"`
	State                   *string                `json:"state,omitempty"`
	EnclosureType           *string                `json:"enclosureType,omitempty"`
	EnclosureIndexes        []int                  `json:"enclosureIndexes,omitempty"`
	InterconnectBaySet      interface{}            `json:"interconnectBaySet,omitempty"`
	InterconnectMapTemplate map[string]interface{} `json:"interconnectMapTemplate,omitempty"`
}

type UplinkSetSpec struct {
	Common                         `json:",inline"`
	Status                         *string                  `json:"status,omitempty"`
	LogicalInterconnectURI         *string                  `json:"logicalInterconnectUri,omitempty"`
	NetworkURIs                    []string                 `json:"networkUris,omitempty"`
	FcNetworkURIs                  []string                 `json:"fcNetworkUris,omitempty"`
	FcoeNetworkURIs                []string                 `json:"fcoeNetworkUris,omitempty"`
	PortConfigInfos                []map[string]interface{} `json:"portConfigInfos,omitempty"`
	ConnectionMode                 *string                  `json:"connectionMode,omitempty"`
	NetworkType                    *string                  `json:"networkType,omitempty"`
	EthernetNetworkType            *string                  `json:"ethernetNetworkType,omitempty"`
	LacpTimer                      *string                  `json:"lacpTimer,omitempty"`
	NativeNetworkURI               *string                  `json:"nativeNetworkUri,omitempty"`
	ManualLoginRedistributionState *string                  `json:"manualLoginRedistributionState,omitempty"`
}

type PowerDeviceSpec struct {
	Common           `json:",inline"`
	RatedCapacity    *int                     `json:"ratedCapacity,omitempty"`
	DeviceType       *string                  `json:"deviceType,omitempty"`
	Model            *string                  `json:"model,omitempty"`
	PartNumber       *string                  `json:"partNumber,omitempty"`
	SerialNumber     *string                  `json:"serialNumber,omitempty"`
	FeedIdentifier   *string                  `json:"feedIdentifier,omitempty"`
	PhaseType        *string                  `json:"phaseType,omitempty"`
	PowerConnections []map[string]interface{} `json:"powerConnections,omitempty"`
}

type UnmanagedDeviceSpec struct {
	Common         `json:",inline"`
	Model          *string `json:"model,omitempty"`
	DeviceType     *string `json:"deviceType,omitempty"`
	Height         *int    `json:"height,omitempty"`
	MaxPwrConsumed *int    `json:"maxPwrConsumed,omitempty"`
	PartNumber     *string `json:"partNumber,omitempty"`
	SerialNumber   *string `json:"serialNumber,omitempty"`
	Mac            *string `json:"mac,omitempty"`
}
