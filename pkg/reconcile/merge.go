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
	"reflect"
)

// Merge returns a copy of existing overlaid with desired.
// Keys present only in existing are preserved, desired values win on collision
// and nil desired values are kept as explicit clears.
func Merge(existing, desired map[string]interface{}) (map[string]interface{}, error) {
	merged, err := DeepCopy(existing)
	if err != nil {
		return nil, err
	}
	if merged == nil {
		merged = make(map[string]interface{}, len(desired))
	}

	for k, v := range desired {
		c, err := copyValue(v, k)
		if err != nil {
			return nil, err
		}
		merged[k] = c
	}
	return merged, nil
}

// DeepCopy copies the given attributes, converting nested maps and slices
// to map[string]interface{} and []interface{}.
func DeepCopy(attrs map[string]interface{}) (map[string]interface{}, error) {
	if attrs == nil {
		return nil, nil
	}
	out := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		c, err := copyValue(v, k)
		if err != nil {
			return nil, err
		}
		out[k] = c
	}
	return out, nil
}

func copyValue(v interface{}, path string) (interface{}, error) {
	switch t := v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			c, err := copyValue(item, path+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			c, err := copyValue(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []interface{}(nil), nil
		}
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			c, err := copyValue(rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, &AmbiguousMergeError{Path: path, Value: v}
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			c, err := copyValue(iter.Value().Interface(), path+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Ptr:
		if rv.IsNil() {
			return nil, nil
		}
		return copyValue(rv.Elem().Interface(), path)
	}

	return nil, &AmbiguousMergeError{Path: path, Value: v}
}

// MergeListByKey merges two lists of objects identified by key:
// items only in updated are added, items missing from updated are dropped
// and items found in both get the original values overwritten by the updated ones.
// Keys listed in ignoreWhenNull are not applied from updated items when their value is nil.
func MergeListByKey(original, updated []interface{}, key string, ignoreWhenNull ...string) []interface{} {
	if len(original) == 0 {
		return updated
	}

	items := make(map[string]map[string]interface{}, len(original))
	for _, o := range original {
		m, ok := o.(map[string]interface{})
		if !ok {
			continue
		}
		items[fmt.Sprint(m[key])] = m
	}

	merged := make([]interface{}, 0, len(updated))
	for _, u := range updated {
		m, ok := u.(map[string]interface{})
		if !ok {
			merged = append(merged, u)
			continue
		}

		existing, found := items[fmt.Sprint(m[key])]
		if !found {
			merged = append(merged, copyMap(m))
			continue
		}

		item := copyMap(existing)
		for k, v := range m {
			if v == nil && contains(ignoreWhenNull, k) {
				continue
			}
			item[k] = v
		}
		merged = append(merged, item)
	}

	return merged
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
