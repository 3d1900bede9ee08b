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

// Package reconcile decides how a declared resource converges with its remote copy.
//
// The Reconciler performs the following actions:
// - creates the remote resource when it doesn't exist
// - merges the desired attributes over the remote attributes, desired values win
// - compares the remote attributes with the merged result, ignoring key and list order
// - updates the remote resource only when the comparison finds a difference
// - deletes the remote resource on absent, treating a missing resource as a no-op
//
// The remote API is reached only through the capabilities given by the caller,
// the package itself performs no network I/O and holds no state between calls.
package reconcile
