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

package objectutil

import (
	"strings"
)

const fmtSeparator = "/"

// FmtRef returns the resource ID in the format <kind>/<name>.
func FmtRef(kind, name string) string {
	var builder strings.Builder
	builder.WriteString(kind + fmtSeparator)
	builder.WriteString(name)
	return builder.String()
}

// FmtDocument returns the document ID in the format <kind>/<name>.
// Bulk VLAN documents are formatted as <kind>/<prefix>_[<range>].
func FmtDocument(d *Document) string {
	if r, ok := d.Data["vlanIdRange"].(string); ok && r != "" {
		return FmtRef(d.Kind, d.GetName()+"_["+r+"]")
	}
	return FmtRef(d.Kind, d.GetName())
}

// MaskSecrets replaces the credential values of the given attributes with the mask.
func MaskSecrets(attrs map[string]interface{}, mask string) map[string]interface{} {
	out := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		switch strings.ToLower(k) {
		case "password", "chapsecret", "mutualchapsecret", "snmpv3authpassword", "privacypassword":
			out[k] = mask
		default:
			out[k] = v
		}
	}
	return out
}
