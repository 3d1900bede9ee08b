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

package main

import (
	"fmt"
	"testing"

	. "github.com/onsi/gomega"
)

func TestGet(t *testing.T) {
	g := NewWithT(t)
	id := "get-" + randStringRunes(5)
	inventory := fmt.Sprintf("inv-%s", id)

	dir, err := makeTestDir(id, testDocuments(id, 400, "General"))
	g.Expect(err).NotTo(HaveOccurred())

	_, err = executeCommand(fmt.Sprintf("apply -i %s -f %s --revision %s", inventory, dir, "abc123"))
	g.Expect(err).NotTo(HaveOccurred())

	t.Run("lists inventories", func(t *testing.T) {
		output, err := executeCommand("get inventories")

		g.Expect(err).NotTo(HaveOccurred())
		t.Logf("\n%s", output)
		g.Expect(output).To(MatchRegexp(fmt.Sprintf(`%s\s+2\s+abc123`, inventory)))
	})

	t.Run("lists resources by name", func(t *testing.T) {
		output, err := executeCommand(fmt.Sprintf("get resources EthernetNetwork --name %s-net", id))

		g.Expect(err).NotTo(HaveOccurred())
		t.Logf("\n%s", output)
		g.Expect(output).To(MatchRegexp(fmt.Sprintf("%s-net", id)))
		g.Expect(output).To(MatchRegexp("/rest/ethernet-networks/"))
		g.Expect(output).NotTo(MatchRegexp(fmt.Sprintf("%s-set", id)))
	})

	t.Run("fails for unknown kind", func(t *testing.T) {
		_, err := executeCommand("get resources ServerProfile")
		g.Expect(err).To(HaveOccurred())
	})
}
