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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stefanprodan/ovsync/pkg/kinds"
	"github.com/stefanprodan/ovsync/pkg/oneview"
)

var getResourcesCmd = &cobra.Command{
	Use:   "resources [kind]",
	Short: "Get resources prints the appliance resources of the given kind.",
	RunE:  runGetResourcesCmd,
}

type getResourcesFlags struct {
	name   string
	filter string
}

var getResourcesArgs getResourcesFlags

func init() {
	getResourcesCmd.Flags().StringVar(&getResourcesArgs.name, "name", "", "Print only the resource with the given name.")
	getResourcesCmd.Flags().StringVar(&getResourcesArgs.filter, "filter", "", "A OneView filter expression, e.g. \"purpose='General'\".")

	getCmd.AddCommand(getResourcesCmd)
}

func runGetResourcesCmd(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("you must specify a kind")
	}
	kind, err := kinds.Lookup(args[0])
	if err != nil {
		return err
	}

	filter := getResourcesArgs.filter
	if getResourcesArgs.name != "" {
		filter = oneview.NameFilter(getResourcesArgs.name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	resMgr, cleanup, err := newResourceManager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	members, err := resMgr.Client().Resource(kind.Path).GetAll(ctx, filter)
	if err != nil {
		return fmt.Errorf("%s query failed, error: %w", kind.Name, err)
	}

	var rows [][]string
	for _, m := range members {
		rows = append(rows, []string{field(m, "name"), field(m, "uri"), field(m, "state"), field(m, "status")})
	}

	printTable(rootCmd.OutOrStdout(), []string{"name", "uri", "state", "status"}, rows)
	return nil
}

func field(res map[string]interface{}, key string) string {
	if v, ok := res[key]; ok && v != nil {
		return fmt.Sprintf("%v", v)
	}
	return ""
}
