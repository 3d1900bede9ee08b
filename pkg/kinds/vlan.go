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
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

const (
	minVlanID = 1
	maxVlanID = 4094
)

// ParseVlanRange parses a list of VLAN IDs and ranges such as '1-10,15,20-22'
// and returns the sorted unique IDs.
func ParseVlanRange(s string) ([]int, error) {
	set, err := VlanSet(s)
	if err != nil {
		return nil, err
	}
	return set.List(), nil
}

// VlanSet parses a VLAN range expression into a set.
func VlanSet(s string) (sets.Int, error) {
	set := sets.NewInt()
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty VLAN range")
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		bounds := strings.SplitN(part, "-", 2)

		start, err := parseVlanID(bounds[0])
		if err != nil {
			return nil, err
		}
		end := start
		if len(bounds) == 2 {
			if end, err = parseVlanID(bounds[1]); err != nil {
				return nil, err
			}
		}
		if end < start {
			return nil, fmt.Errorf("invalid VLAN range '%s'", part)
		}
		for id := start; id <= end; id++ {
			set.Insert(id)
		}
	}
	return set, nil
}

// FormatVlanRange renders sorted VLAN IDs as a compact range expression, e.g. '1-3,5'.
func FormatVlanRange(ids []int) string {
	var parts []string
	for i := 0; i < len(ids); {
		j := i
		for j+1 < len(ids) && ids[j+1] == ids[j]+1 {
			j++
		}
		if i == j {
			parts = append(parts, strconv.Itoa(ids[i]))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", ids[i], ids[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}

func parseVlanID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid VLAN ID '%s'", s)
	}
	if id < minVlanID || id > maxVlanID {
		return 0, fmt.Errorf("VLAN ID %d out of range %d-%d", id, minVlanID, maxVlanID)
	}
	return id, nil
}
