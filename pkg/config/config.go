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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/stefanprodan/ovsync/pkg/kinds"
)

const (
	ConfigKind       = "Config"
	ConfigAPIVersion = "ovsync.dev/v1"
)

// Environment variables recognised by the HPE OneView SDKs.
const (
	EnvIP              = "ONEVIEWSDK_IP"
	EnvUserName        = "ONEVIEWSDK_USERNAME"
	EnvPassword        = "ONEVIEWSDK_PASSWORD"
	EnvAuthLoginDomain = "ONEVIEWSDK_AUTH_LOGIN_DOMAIN"
	EnvAPIVersion      = "ONEVIEWSDK_API_VERSION"
	EnvSSLCertificate  = "ONEVIEWSDK_SSL_CERTIFICATE"
	EnvSessionID       = "ONEVIEWSDK_SESSIONID"
	EnvLogFile         = "LOGFILE"
)

type Config struct {
	metav1.TypeMeta `json:",inline"`

	// Connection holds the appliance address and credentials.
	Connection *Connection `json:"connection,omitempty"`

	// ApplyOrder holds the list of resource kinds that
	// describes in which order they are reconciled.
	ApplyOrder *KindOrder `json:"applyOrder,omitempty"`

	// Inventory sets where the applied resources are recorded.
	Inventory *Inventory `json:"inventory,omitempty"`

	Log *Log `json:"log,omitempty"`
}

type Connection struct {
	IP                 string          `json:"ip"`
	APIVersion         int             `json:"apiVersion"`
	Credentials        Credentials     `json:"credentials"`
	SessionID          string          `json:"sessionID,omitempty"`
	SSLCertificate     string          `json:"sslCertificate,omitempty"`
	InsecureSkipVerify bool            `json:"insecureSkipVerify,omitempty"`
	ValidateETag       *bool           `json:"validateETag,omitempty"`
	QPS                float32         `json:"qps,omitempty"`
	Burst              int             `json:"burst,omitempty"`
	TaskPollInterval   metav1.Duration `json:"taskPollInterval,omitempty"`
	TaskTimeout        metav1.Duration `json:"taskTimeout,omitempty"`
}

type Credentials struct {
	UserName string `json:"userName,omitempty"`
	Password string `json:"password,omitempty"`
	// PasswordFile is an age encrypted file holding the password.
	PasswordFile    string `json:"passwordFile,omitempty"`
	AuthLoginDomain string `json:"authLoginDomain,omitempty"`
}

// KindOrder holds the list of resource kinds that
// describes in which order they are reconciled.
type KindOrder struct {
	// First contains the kinds that are applied first and deleted last.
	First []string `json:"first"`

	// Last contains the kinds that are applied last and deleted first.
	Last []string `json:"last"`
}

type Inventory struct {
	// Path is the SQLite database file.
	Path string `json:"path"`
}

type Log struct {
	Level string `json:"level,omitempty"`
	File  string `json:"file,omitempty"`
}

// NewConfig returns a config with the default connection settings and apply order.
func NewConfig() *Config {
	return &Config{
		TypeMeta: metav1.TypeMeta{
			Kind:       ConfigKind,
			APIVersion: ConfigAPIVersion,
		},
		Connection: defaultConnection(),
		ApplyOrder: defaultKindOrder(),
		Inventory:  &Inventory{},
		Log:        &Log{Level: "info"},
	}
}

func defaultConnection() *Connection {
	validate := true
	return &Connection{
		APIVersion:       800,
		ValidateETag:     &validate,
		QPS:              50,
		Burst:            100,
		TaskPollInterval: metav1.Duration{Duration: 2 * time.Second},
		TaskTimeout:      metav1.Duration{Duration: 30 * time.Minute},
	}
}

func defaultKindOrder() *KindOrder {
	return &KindOrder{
		First: []string{kinds.EthernetNetwork, kinds.FcNetwork, kinds.FcoeNetwork},
		Last:  []string{kinds.Scope},
	}
}

// DefaultConfigPath returns '$HOME/.ovsync/config'
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".ovsync/config"), nil
}

// DefaultInventoryPath returns '$HOME/.ovsync/inventory.db'
func DefaultInventoryPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".ovsync/inventory.db"), nil
}

// Read loads the config from the specified path,
// if the config file is not found, a default is returned.
func Read(configPath string) (*Config, error) {
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("$HOME dir can't be determined, error: %w", err)
		}
		configPath = p
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return NewConfig(), nil
	}

	cfgData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.UnmarshalStrict(cfgData, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s failed, error: %w", configPath, err)
	}

	cfg.setDefaults()

	for _, k := range append(cfg.ApplyOrder.First, cfg.ApplyOrder.Last...) {
		if _, err := kinds.Lookup(k); err != nil {
			return nil, fmt.Errorf("invalid apply order, error: %w", err)
		}
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	def := defaultConnection()
	if c.Connection == nil {
		c.Connection = def
	}
	if c.Connection.APIVersion == 0 {
		c.Connection.APIVersion = def.APIVersion
	}
	if c.Connection.ValidateETag == nil {
		c.Connection.ValidateETag = def.ValidateETag
	}
	if c.Connection.QPS == 0 {
		c.Connection.QPS = def.QPS
	}
	if c.Connection.Burst == 0 {
		c.Connection.Burst = def.Burst
	}
	if c.Connection.TaskPollInterval.Duration == 0 {
		c.Connection.TaskPollInterval = def.TaskPollInterval
	}
	if c.Connection.TaskTimeout.Duration == 0 {
		c.Connection.TaskTimeout = def.TaskTimeout
	}
	if c.ApplyOrder == nil {
		c.ApplyOrder = defaultKindOrder()
	}
	if c.Inventory == nil {
		c.Inventory = &Inventory{}
	}
	if c.Log == nil {
		c.Log = &Log{Level: "info"}
	}
}

// ApplyEnv overrides the connection settings with the OneView SDK environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	c.setDefaults()
	conn := c.Connection

	set := func(key string, target *string) {
		if v, ok := lookup(key); ok && v != "" {
			*target = v
		}
	}
	set(EnvIP, &conn.IP)
	set(EnvUserName, &conn.Credentials.UserName)
	set(EnvPassword, &conn.Credentials.Password)
	set(EnvAuthLoginDomain, &conn.Credentials.AuthLoginDomain)
	set(EnvSSLCertificate, &conn.SSLCertificate)
	set(EnvSessionID, &conn.SessionID)
	set(EnvLogFile, &c.Log.File)

	if v, ok := lookup(EnvAPIVersion); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value '%s', error: %w", EnvAPIVersion, v, err)
		}
		conn.APIVersion = n
	}
	return nil
}

// Validate checks that the connection settings are usable.
func (c *Config) Validate() error {
	if c.Connection == nil || c.Connection.IP == "" {
		return fmt.Errorf("the appliance address is not set, use the config file or %s", EnvIP)
	}
	if c.Connection.APIVersion <= 0 {
		return fmt.Errorf("invalid API version %d", c.Connection.APIVersion)
	}
	creds := c.Connection.Credentials
	if c.Connection.SessionID == "" && creds.UserName == "" {
		return fmt.Errorf("either a session ID or a user name is required")
	}
	if creds.Password != "" && creds.PasswordFile != "" {
		return fmt.Errorf("password and passwordFile are mutually exclusive")
	}
	return nil
}

// Write saves the config at the given path, if no path is specified
// it will create or override '$HOME/.ovsync/config'.
func (c *Config) Write(configPath string) error {
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	if err := os.MkdirAll(filepath.Dir(configPath), os.FileMode(0755)); err != nil {
		return err
	}

	cfgData, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// the file may hold credentials
	return os.WriteFile(configPath, cfgData, os.FileMode(0600))
}
