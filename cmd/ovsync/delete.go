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
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete removes the resources declared by the given documents from the appliance.",
	RunE:  runDeleteCmd,
}

type deleteFlags struct {
	filename []string
}

var deleteArgs deleteFlags

func init() {
	deleteCmd.Flags().StringSliceVarP(&deleteArgs.filename, "filename", "f", nil,
		"Path to YAML document(s). If a directory is specified, then all documents in the directory tree will be processed recursively.")

	rootCmd.AddCommand(deleteCmd)
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
	docs, err := readDocuments(deleteArgs.filename, cmd.InOrStdin())
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

	logger.Println(fmt.Sprintf("deleting %v document(s)...", len(docs)))
	changeSet, err := resMgr.DeleteAll(ctx, docs)
	if changeSet != nil {
		printChangeSet(changeSet)
	}
	return err
}
