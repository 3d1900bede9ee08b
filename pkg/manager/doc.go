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

// Package manager contains utilities for managing HPE OneView resources.
//
// The ResourceManager can be used to write a declarative reconciler that:
// - validates the documents against the kind schemas before touching the appliance
// - orders the documents for apply (networks first, scopes last)
// - resolves resource names to URIs in references
// - determines if the remote resources are in drift by merging and comparing attributes
// - creates or updates only the resources that have drifted
// - deletes resources that are subject to garbage collection
package manager
