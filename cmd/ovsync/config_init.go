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

	"github.com/spf13/cobra"

	"github.com/stefanprodan/ovsync/pkg/config"
)

var configInit = &cobra.Command{
	Use:   "init",
	Short: "Init writes a config file with default values at '$HOME/.ovsync/config'.",
	RunE:  runConfigInitCmd,
}

type configInitFlags struct {
	ip            string
	userName      string
	passwordFile  string
	ageRecipients string
}

var configInitArgs configInitFlags

func init() {
	configInit.Flags().StringVar(&configInitArgs.ip, "ip", "", "The appliance address.")
	configInit.Flags().StringVar(&configInitArgs.userName, "username", "", "The appliance user name.")
	configInit.Flags().StringVar(&configInitArgs.passwordFile, "password-file", "",
		"Path where the age encrypted password is written, the password is read from $"+config.EnvPassword+".")
	configInit.Flags().StringVar(&configInitArgs.ageRecipients, "age-recipients", "",
		"Path to a file containing the age recipients used to encrypt the password.")

	configCmd.AddCommand(configInit)
}

func runConfigInitCmd(cmd *cobra.Command, args []string) error {
	cfgPath := rootArgs.configPath
	if cfgPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		cfgPath = p
	}

	c := config.NewConfig()
	c.Connection.IP = configInitArgs.ip
	c.Connection.Credentials.UserName = configInitArgs.userName

	if configInitArgs.passwordFile != "" {
		password, ok := os.LookupEnv(config.EnvPassword)
		if !ok || password == "" {
			return fmt.Errorf("%s is required to encrypt the password", config.EnvPassword)
		}
		recipients, err := config.ParseAgeRecipients(configInitArgs.ageRecipients)
		if err != nil {
			return fmt.Errorf("parsing age recipients failed, error: %w", err)
		}
		if err := config.EncryptPassword(configInitArgs.passwordFile, password, recipients); err != nil {
			return fmt.Errorf("encrypting password failed, error: %w", err)
		}
		c.Connection.Credentials.PasswordFile = configInitArgs.passwordFile
		logger.Println("password encrypted to", configInitArgs.passwordFile)
	}

	if err := c.Write(cfgPath); err != nil {
		return err
	}

	logger.Println("config written to", cfgPath)
	return nil
}
