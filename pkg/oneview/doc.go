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

// Package oneview is a client for the HPE OneView REST API.
//
// Requests carry the session token in the Auth header and the API version in X-API-Version.
// Mutating calls answered with 202 Accepted are followed until the task finishes.
// The client is rate limited with a token bucket.
package oneview
