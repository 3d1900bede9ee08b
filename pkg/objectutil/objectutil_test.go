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
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stefanprodan/ovsync/pkg/reconcile"
)

const testDocuments = `
apiVersion: ovsync.dev/v1
kind: Scope
data:
  name: prod
---
apiVersion: ovsync.dev/v1
kind: EthernetNetwork
state: absent
data:
  name: legacy
---
---
{"apiVersion": "ovsync.dev/v1", "kind": "List", "items": [
  {"kind": "EthernetNetwork", "data": {"vlanIdRange": "10-12", "namePrefix": "prod"}},
  {"kind": "NetworkSet", "data": {"name": "prod-set", "networkUris": ["prod_10"]}}
]}
`

func TestReadDocuments(t *testing.T) {
	docs, err := ReadDocuments(strings.NewReader(testDocuments))
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, d := range docs {
		ids = append(ids, FmtDocument(d))
	}
	want := []string{"Scope/prod", "EthernetNetwork/legacy", "EthernetNetwork/prod_[10-12]", "NetworkSet/prod-set"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(reconcile.StatePresent, docs[0].GetState()); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(reconcile.StateAbsent, docs[1].GetState()); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}

func TestReadDocuments_Keys(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name: "yaml",
			input: `
kind: Datacenter
data:
  name: dc
  contents:
  - resourceName: rack-1
    x: 10
    y: 20
    on: 1
`,
		},
		{
			name:  "json",
			input: "\t{\"kind\": \"Datacenter\", \"data\": {\"name\": \"dc\", \"contents\": [{\"resourceName\": \"rack-1\", \"x\": 10, \"y\": 20, \"on\": 1}]}}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := ReadDocuments(strings.NewReader(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(1, len(docs)); diff != "" {
				t.Fatalf("Mismatch from expected value (-want +got):\n%s", diff)
			}

			contents, _ := docs[0].Data["contents"].([]interface{})
			if diff := cmp.Diff(1, len(contents)); diff != "" {
				t.Fatalf("Mismatch from expected value (-want +got):\n%s", diff)
			}
			want := map[string]interface{}{"resourceName": "rack-1", "x": float64(10), "y": float64(20), "on": float64(1)}
			if diff := cmp.Diff(want, contents[0]); diff != "" {
				t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadDocuments_Invalid(t *testing.T) {
	_, err := ReadDocuments(strings.NewReader("kind: Rack\nstate: present\n"))
	if err == nil || !strings.Contains(err.Error(), "kind and data are required") {
		t.Errorf("expected invalid document error, got %v", err)
	}
}

func TestKindOrder_Sort(t *testing.T) {
	docs, err := ReadDocuments(strings.NewReader(testDocuments))
	if err != nil {
		t.Fatal(err)
	}

	order := NewKindOrder([]string{"Scope"}, []string{"network-sets"})
	order.Sort(docs)

	var ids []string
	for _, d := range docs {
		ids = append(ids, FmtDocument(d))
	}
	want := []string{"Scope/prod", "EthernetNetwork/legacy", "EthernetNetwork/prod_[10-12]", "NetworkSet/prod-set"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}

	order.SortReverse(docs)
	if diff := cmp.Diff("Scope/prod", FmtDocument(docs[len(docs)-1])); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}

func TestMaskSecrets(t *testing.T) {
	got := MaskSecrets(map[string]interface{}{"name": "a", "password": "x"}, "***")
	if diff := cmp.Diff(map[string]interface{}{"name": "a", "password": "***"}, got); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}
