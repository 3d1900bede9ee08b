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
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	yamlv3 "gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/stefanprodan/ovsync/pkg/reconcile"
)

const (
	DocumentAPIVersion = "ovsync.dev/v1"
	ListKind           = "List"
)

// Document declares the desired state of a OneView resource.
type Document struct {
	metav1.TypeMeta `json:",inline"`

	// State is present, absent or a kind specific state, defaults to present.
	State reconcile.State `json:"state,omitempty"`

	// Data holds the resource attributes.
	Data map[string]interface{} `json:"data"`
}

// rawDocument accepts both single documents and lists.
type rawDocument struct {
	metav1.TypeMeta `json:",inline"`
	State           reconcile.State        `json:"state,omitempty"`
	Data            map[string]interface{} `json:"data,omitempty"`
	Items           []*Document            `json:"items,omitempty"`
}

// GetState returns the declared state, defaulting to present.
func (d *Document) GetState() reconcile.State {
	if d.State == "" {
		return reconcile.StatePresent
	}
	return d.State
}

// GetName returns the resource name, or the bulk name prefix for VLAN ranges.
func (d *Document) GetName() string {
	if name, ok := d.Data[reconcile.NameKey].(string); ok && name != "" {
		return name
	}
	if prefix, ok := d.Data["namePrefix"].(string); ok {
		return prefix
	}
	return ""
}

// DesiredState returns the reconciler input for the document.
func (d *Document) DesiredState() reconcile.DesiredState {
	return reconcile.NewDesiredState(d.Data)
}

// ReadDocuments decodes the YAML or JSON documents from the given reader.
// YAML follows the 1.2 core schema, keys such as 'y' or 'on' stay strings.
// Documents of kind List are flattened.
func ReadDocuments(r io.Reader) ([]*Document, error) {
	next := newDocumentDecoder(r)
	docs := make([]*Document, 0)

	for {
		raw := &rawDocument{}
		err := next(raw)
		if err != nil {
			if err == io.EOF {
				break
			}
			return docs, err
		}

		if raw.Kind == "" && raw.Data == nil && len(raw.Items) == 0 {
			continue
		}

		if raw.Kind == ListKind {
			for _, item := range raw.Items {
				if !IsDocument(item) {
					return docs, fmt.Errorf("invalid list item, kind and data are required")
				}
				docs = append(docs, item)
			}
			continue
		}

		doc := &Document{TypeMeta: raw.TypeMeta, State: raw.State, Data: raw.Data}
		if !IsDocument(doc) {
			return docs, fmt.Errorf("invalid document '%s', kind and data are required", FmtDocument(doc))
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// newDocumentDecoder returns a JSON stream decoder when the input starts
// with a JSON object or array, and a YAML multi-doc decoder otherwise.
func newDocumentDecoder(r io.Reader) func(*rawDocument) error {
	br := bufio.NewReader(r)
	if isJSON(br) {
		dec := json.NewDecoder(br)
		return func(raw *rawDocument) error {
			return dec.Decode(raw)
		}
	}

	dec := yamlv3.NewDecoder(br)
	return func(raw *rawDocument) error {
		for {
			var obj interface{}
			if err := dec.Decode(&obj); err != nil {
				return err
			}
			if obj == nil {
				continue
			}
			data, err := json.Marshal(obj)
			if err != nil {
				return fmt.Errorf("converting YAML to JSON failed, error: %w", err)
			}
			return json.Unmarshal(data, raw)
		}
	}
}

func isJSON(br *bufio.Reader) bool {
	for n := 1; ; n++ {
		peek, err := br.Peek(n)
		if len(peek) < n {
			return false
		}
		b := peek[n-1]
		if !bytes.ContainsRune([]byte(" \t\r\n"), rune(b)) {
			return b == '{' || b == '['
		}
		if err != nil {
			return false
		}
	}
}

func IsDocument(d *Document) bool {
	return d != nil && d.Kind != "" && d.Data != nil
}

// DocumentsToYAML encodes the given documents to a YAML multi-doc.
func DocumentsToYAML(docs []*Document) (string, error) {
	var builder strings.Builder
	for _, doc := range docs {
		data, err := yaml.Marshal(doc)
		if err != nil {
			return "", err
		}
		builder.Write(data)
		builder.WriteString("---\n")
	}
	return builder.String(), nil
}
