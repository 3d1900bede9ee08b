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
	"strings"

	"github.com/spf13/cobra"

	"github.com/stefanprodan/ovsync/pkg/inventory"
	"github.com/stefanprodan/ovsync/pkg/manager"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Diff compares the given documents with the appliance resources and prints the changes an apply would make.",
	RunE:  runDiffCmd,
}

type diffFlags struct {
	filename      []string
	inventoryName string
}

var diffArgs diffFlags

func init() {
	diffCmd.Flags().StringSliceVarP(&diffArgs.filename, "filename", "f", nil,
		"Path to YAML document(s). If a directory is specified, then all documents in the directory tree will be processed recursively.")
	diffCmd.Flags().StringVarP(&diffArgs.inventoryName, "inventory-name", "i", "",
		"The name of the inventory, when set the stale resources are listed as deleted.")

	rootCmd.AddCommand(diffCmd)
}

func runDiffCmd(cmd *cobra.Command, args []string) error {
	docs, err := readDocuments(diffArgs.filename, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	resMgr, cleanup, err := newResourceManager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	changeSet, diffErr := resMgr.DiffAll(ctx, docs)
	for _, change := range changeSet.Entries {
		switch manager.Action(change.Action) {
		case manager.CreatedAction:
			rootCmd.Println(`►`, change.Subject, "created")
		case manager.ConfiguredAction:
			rootCmd.Println(`►`, change.Subject, "drifted")
		case manager.DeletedAction:
			rootCmd.Println(`►`, change.Subject, "deleted")
		default:
			continue
		}
		for _, line := range strings.Split(change.Diff, "\n") {
			if len(line) > 0 {
				rootCmd.Println(line)
			}
		}
	}

	if diffArgs.inventoryName != "" {
		storage, err := openInventoryStorage()
		if err != nil {
			return fmt.Errorf("inventory init failed, error: %w", err)
		}
		defer storage.Close()

		newInventory := inventory.NewInventory(diffArgs.inventoryName)
		manager.AddToInventory(newInventory, changeSet)
		staleEntries, err := storage.GetInventoryStaleEntries(ctx, newInventory)
		if err != nil {
			return fmt.Errorf("inventory query failed, error: %w", err)
		}
		for _, e := range staleEntries {
			rootCmd.Println(`►`, e.ID(), "deleted")
		}
	}

	return diffErr
}
