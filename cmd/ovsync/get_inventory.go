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

	"github.com/stefanprodan/ovsync/pkg/inventory"
)

var getInventoryCmd = &cobra.Command{
	Use:   "inventory [name]",
	Short: "Get inventory prints the content of the given inventory.",
	RunE:  runGetInventoryCmd,
}

func init() {
	getCmd.AddCommand(getInventoryCmd)
}

func runGetInventoryCmd(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("you must specify an inventory name")
	}

	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	storage, err := openInventoryStorage()
	if err != nil {
		return fmt.Errorf("inventory init failed, error: %w", err)
	}
	defer storage.Close()

	i := inventory.NewInventory(args[0])
	if err := storage.GetInventory(ctx, i); err != nil {
		return err
	}

	rootCmd.Println(fmt.Sprintf("Inventory: %s", i.Name))
	rootCmd.Println(fmt.Sprintf("Source: %s", i.Source))
	rootCmd.Println(fmt.Sprintf("Revision: %s", i.Revision))
	rootCmd.Println("Entries:")
	for _, entry := range i.Entries {
		rootCmd.Println("-", entry.ID(), entry.URI)
	}
	return nil
}
