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

package reconcile

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Equivalent reports whether two attribute maps describe the same resource state.
//
// The comparison is structural and tolerant:
// - a missing key is equal to a nil value
// - nil, false, empty strings, empty maps and empty lists are equal
// - lists must have the same length and are compared after a canonical sort
// - scalars are compared by their string form, integral floats are normalised to integers
func Equivalent(a, b map[string]interface{}) bool {
	_, ok := Difference(a, b)
	return ok
}

// Difference compares two attribute maps with the Equivalent rules and
// returns the path of the first difference found.
func Difference(a, b map[string]interface{}) (string, bool) {
	return compareMaps(a, b, "")
}

func compareMaps(a, b map[string]interface{}, path string) (string, bool) {
	if len(a) > 0 && len(b) == 0 {
		return rootPath(path), false
	}

	for _, key := range sortedKeys(a) {
		va := a[key]
		vb, found := b[key]
		if !found {
			if va != nil {
				return joinPath(path, key), false
			}
			continue
		}
		if p, ok := compareValues(va, vb, joinPath(path, key)); !ok {
			return p, false
		}
	}

	for _, key := range sortedKeys(b) {
		if _, found := a[key]; !found && b[key] != nil {
			return joinPath(path, key), false
		}
	}

	return "", true
}

func compareValues(a, b interface{}, path string) (string, bool) {
	if isEmpty(a) && isEmpty(b) {
		return "", true
	}

	switch ta := a.(type) {
	case map[string]interface{}:
		tb, ok := b.(map[string]interface{})
		if !ok {
			return path, false
		}
		return compareMaps(ta, tb, path)
	case []interface{}:
		tb, ok := b.([]interface{})
		if !ok {
			return path, false
		}
		return compareLists(ta, tb, path)
	}

	if standardize(a) != standardize(b) {
		return path, false
	}
	return "", true
}

func compareLists(a, b []interface{}, path string) (string, bool) {
	if len(a) != len(b) {
		return path, false
	}

	sa := sortedCopy(a)
	sb := sortedCopy(b)
	for i := range sa {
		if _, ok := compareValues(sa[i], sb[i], fmt.Sprintf("%s[%d]", path, i)); !ok {
			return path, false
		}
	}
	return "", true
}

func sortedCopy(list []interface{}) []interface{} {
	out := make([]interface{}, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i]) < sortKey(out[j])
	})
	return out
}

func sortKey(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		// encoding/json sorts map keys
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return standardize(v)
	}
}

// standardize returns the canonical string form of a scalar.
func standardize(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return formatFloat(f)
		}
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e18 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	}
	return false
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func rootPath(path string) string {
	if path == "" {
		return "."
	}
	return path
}
