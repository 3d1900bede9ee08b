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
	"github.com/stefanprodan/ovsync/pkg/manager"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply validates the given documents and reconciles the appliance resources with their declared state.",
	RunE:  runApplyCmd,
}

type applyFlags struct {
	filename      []string
	inventoryName string
	prune         bool
	source        string
	revision      string
}

var applyArgs applyFlags

func init() {
	applyCmd.Flags().StringSliceVarP(&applyArgs.filename, "filename", "f", nil,
		"Path to YAML document(s). If a directory is specified, then all documents in the directory tree will be processed recursively.")
	applyCmd.Flags().StringVarP(&applyArgs.inventoryName, "inventory-name", "i", "",
		"The name of the inventory where the applied resources are recorded.")
	applyCmd.Flags().BoolVar(&applyArgs.prune, "prune", false,
		"Delete the resources recorded in the inventory that are no longer declared.")
	applyCmd.Flags().StringVar(&applyArgs.source, "source", "", "The URL to the source code.")
	applyCmd.Flags().StringVar(&applyArgs.revision, "revision", "", "The revision identifier.")

	rootCmd.AddCommand(applyCmd)
}

func runApplyCmd(cmd *cobra.Command, args []string) error {
	if applyArgs.prune && applyArgs.inventoryName == "" {
		return fmt.Errorf("--inventory-name is required for pruning")
	}

	docs, err := readDocuments(applyArgs.filename, cmd.InOrStdin())
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

	logger.Println(fmt.Sprintf("applying %v document(s)...", len(docs)))
	changeSet, err := resMgr.ApplyAll(ctx, docs)
	if changeSet != nil {
		printChangeSet(changeSet)
	}
	if err != nil {
		return err
	}

	if applyArgs.inventoryName == "" {
		return nil
	}

	storage, err := openInventoryStorage()
	if err != nil {
		return fmt.Errorf("inventory init failed, error: %w", err)
	}
	defer storage.Close()

	newInventory := inventory.NewInventory(applyArgs.inventoryName)
	newInventory.Source = applyArgs.source
	newInventory.Revision = applyArgs.revision
	manager.AddToInventory(newInventory, changeSet)

	staleEntries, err := storage.GetInventoryStaleEntries(ctx, newInventory)
	if err != nil {
		return fmt.Errorf("inventory query failed, error: %w", err)
	}

	if applyArgs.prune && len(staleEntries) > 0 {
		changeSet, err := resMgr.DeleteEntries(ctx, staleEntries)
		printChangeSet(changeSet)
		if err != nil {
			return fmt.Errorf("prune failed, error: %w", err)
		}
	} else {
		// keep the stale resources tracked until they are pruned
		for _, e := range staleEntries {
			newInventory.Add(e.Kind, e.Name, e.URI)
		}
	}

	if err := storage.ApplyInventory(ctx, newInventory); err != nil {
		return fmt.Errorf("inventory apply failed, error: %w", err)
	}
	return nil
}

func printChangeSet(changeSet *manager.ChangeSet) {
	for _, change := range changeSet.Entries {
		logger.Println(`►`, change.String())
		for _, member := range change.Members {
			if member.Changed() {
				logger.Println("  ", member.String())
			}
		}
	}
}
