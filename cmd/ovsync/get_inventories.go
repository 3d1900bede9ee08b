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
	"time"

	"github.com/spf13/cobra"
)

var getInventoriesCmd = &cobra.Command{
	Use:   "inventories",
	Short: "Get inventories prints a summary of all the recorded inventories.",
	RunE:  runGetInventoriesCmd,
}

func init() {
	getCmd.AddCommand(getInventoriesCmd)
}

func runGetInventoriesCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	storage, err := openInventoryStorage()
	if err != nil {
		return fmt.Errorf("inventory init failed, error: %w", err)
	}
	defer storage.Close()

	list, err := storage.ListInventories(ctx)
	if err != nil {
		return err
	}

	var rows [][]string
	for _, i := range list {
		row := []string{i.Name, fmt.Sprintf("%v", len(i.Entries)), i.Source, i.Revision, i.LastAppliedTime.Format(time.RFC3339)}
		rows = append(rows, row)
	}

	printTable(rootCmd.OutOrStdout(), []string{"name", "entries", "source", "revision", "last applied"}, rows)
	return nil
}
