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

	"github.com/spf13/cobra"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/stefanprodan/ovsync/pkg/kinds"
	"github.com/stefanprodan/ovsync/pkg/objectutil"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build validates the documents found at the given paths and prints them to stdout in apply order.",
	RunE:  runBuildCmd,
}

type buildFlags struct {
	filename []string
}

var buildArgs buildFlags

func init() {
	buildCmd.Flags().StringSliceVarP(&buildArgs.filename, "filename", "f", nil,
		"Path to YAML document(s). If a directory is specified, then all documents in the directory tree will be processed recursively.")

	rootCmd.AddCommand(buildCmd)
}

func runBuildCmd(cmd *cobra.Command, args []string) error {
	docs, err := readDocuments(buildArgs.filename, cmd.InOrStdin())
	if err != nil {
		return err
	}

	var errs []error
	for _, doc := range docs {
		kind, err := kinds.Lookup(doc.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s is invalid, error: %w", objectutil.FmtDocument(doc), err))
			continue
		}
		if err := kind.Validate(doc.GetState(), doc.Data); err != nil {
			errs = append(errs, fmt.Errorf("%s is invalid, error: %w", objectutil.FmtDocument(doc), err))
		}
	}
	if err := utilerrors.NewAggregate(errs); err != nil {
		return err
	}

	objectutil.NewKindOrder(cfg.ApplyOrder.First, cfg.ApplyOrder.Last).Sort(docs)

	yml, err := objectutil.DocumentsToYAML(docs)
	if err != nil {
		return err
	}
	rootCmd.Print(yml)
	return nil
}
