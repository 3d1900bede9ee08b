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

package oneviewtest

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var filterExp = regexp.MustCompile(`^'?(\w+)'?\s*(=|matches)\s*'(.*)'$`)

// matchFilter supports the "name='x'" and "name matches 'x\_%'" forms.
func matchFilter(res map[string]interface{}, filter string) bool {
	filter = strings.TrimSpace(strings.Trim(filter, `"`))
	if filter == "" {
		return true
	}

	m := filterExp.FindStringSubmatch(filter)
	if m == nil {
		return false
	}
	field, op, value := m[1], m[2], strings.ReplaceAll(m[3], "''", "'")
	actual := fmt.Sprint(res[field])

	if op == "=" {
		return actual == value
	}
	return likeToRegexp(value).MatchString(actual)
}

func likeToRegexp(pattern string) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString("^")
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			sb.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			sb.WriteString(".*")
		case r == '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.MustCompile(sb.String())
}

func urlEscape(s string) string {
	return url.QueryEscape(s)
}
