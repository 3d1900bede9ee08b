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
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stefanprodan/ovsync/pkg/config"
)

var VERSION = "1.0.0-dev.0"

const PROJECT = "ovsync"

var rootCmd = &cobra.Command{
	Use:           PROJECT,
	Version:       VERSION,
	SilenceUsage:  true,
	SilenceErrors: true,
	Short:         "A command line utility to reconcile HPE OneView resources with their declared state.",
	Long: `Ovsync is an OSS tool for managing HPE OneView appliances with declarative YAML documents.

Validate and print the documents in apply order:

- ovsync build -f <dir path>

Reconcile the appliance resources with the documents:

- ovsync apply -f <dir path> [-i <inventory>] --prune
- ovsync diff -f <dir path> [-i <inventory>]
- ovsync delete -f <dir path>

Manage the applied resources:

- ovsync get resources <kind> [--name <name>]
- ovsync get inventories
- ovsync get inventory <name>
- ovsync delete inventory <name>
`,
}

type rootFlags struct {
	timeout       time.Duration
	configPath    string
	ageIdentities string
	logLevel      string
	logFile       string
	validateETag  bool
}

var (
	rootArgs = rootFlags{}
	logger   = stderrLogger{stderr: os.Stderr}
	cfg      = config.NewConfig()
)

func init() {
	rootCmd.PersistentFlags().DurationVar(&rootArgs.timeout, "timeout", 5*time.Minute,
		"The length of time to wait before giving up on the current operation.")
	rootCmd.PersistentFlags().StringVar(&rootArgs.configPath, "config", "",
		"Path to the config file, defaults to '$HOME/.ovsync/config'.")
	rootCmd.PersistentFlags().StringVar(&rootArgs.ageIdentities, "age-identities", "",
		"Path to a file containing the age identities used to decrypt the appliance password.")
	rootCmd.PersistentFlags().StringVar(&rootArgs.logLevel, "log-level", "",
		"The log verbosity, can be info, debug or trace.")
	rootCmd.PersistentFlags().BoolVar(&rootArgs.validateETag, "validate-etag", true,
		"Send the resource eTag in If-Match so that concurrent changes are rejected by the appliance.")
	rootCmd.PersistentFlags().StringVar(&rootArgs.logFile, "log-file", "",
		"Path to a file where the JSON logs are appended, overrides the LOGFILE env var.")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	}
	rootCmd.DisableAutoGenTag = true
	rootCmd.SetOut(os.Stdout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Println(`✗`, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	c, err := config.Read(rootArgs.configPath)
	if err != nil {
		return fmt.Errorf("loading the config failed, error: %w", err)
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return fmt.Errorf("loading the config failed, error: %w", err)
	}
	if rootArgs.logLevel != "" {
		c.Log.Level = rootArgs.logLevel
	}
	if rootArgs.logFile != "" {
		c.Log.File = rootArgs.logFile
	}
	if cmd.Flags().Changed("validate-etag") {
		validate := rootArgs.validateETag
		c.Connection.ValidateETag = &validate
	}
	cfg = c
	return nil
}
