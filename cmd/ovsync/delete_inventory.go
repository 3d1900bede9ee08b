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

var deleteInventoryCmd = &cobra.Command{
	Use:   "inventory [name]",
	Short: "Delete inventory removes the recorded resources from the appliance and then deletes the inventory.",
	RunE:  runDeleteInventoryCmd,
}

func init() {
	deleteCmd.AddCommand(deleteInventoryCmd)
}

func runDeleteInventoryCmd(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("you must specify an inventory name")
	}
	name := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	storage, err := openInventoryStorage()
	if err != nil {
		return fmt.Errorf("inventory init failed, error: %w", err)
	}
	defer storage.Close()

	inv := inventory.NewInventory(name)
	if err := storage.GetInventory(ctx, inv); err != nil {
		return err
	}

	resMgr, cleanup, err := newResourceManager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	entries := append([]inventory.Entry{}, inv.Entries...)
	inventory.SortReverse(entries)

	logger.Println(fmt.Sprintf("deleting %v resource(s)...", len(entries)))
	changeSet, err := resMgr.DeleteEntries(ctx, entries)
	printChangeSet(changeSet)
	if err != nil {
		return fmt.Errorf("delete failed, error: %w", err)
	}

	if err := storage.DeleteInventory(ctx, name); err != nil {
		return fmt.Errorf("inventory delete failed, error: %w", err)
	}
	logger.Println(`►`, "inventory", name, "deleted")
	return nil
}
