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
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"
	"github.com/go-logr/logr"

	"github.com/stefanprodan/ovsync/pkg/oneview"
)

func ParseAgeRecipients(filePath string) ([]age.Recipient, error) {
	if filePath == "" {
		return nil, nil
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return age.ParseRecipients(f)
}

func ParseAgeIdentities(filePath string) ([]age.Identity, error) {
	if filePath == "" {
		return nil, nil
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return age.ParseIdentities(f)
}

// EncryptPassword writes the password to path as an armored age file.
func EncryptPassword(path, password string, recipients []age.Recipient) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one age recipient is required")
	}

	buffer := &bytes.Buffer{}
	aw := armor.NewWriter(buffer)
	w, err := age.Encrypt(aw, recipients...)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, password); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if err := aw.Close(); err != nil {
		return err
	}

	return os.WriteFile(path, buffer.Bytes(), os.FileMode(0600))
}

// Password returns the plain text password, decrypting the password file if set.
func (c *Config) Password(identities []age.Identity) (string, error) {
	creds := c.Connection.Credentials
	if creds.PasswordFile == "" {
		return creds.Password, nil
	}
	if len(identities) == 0 {
		return "", fmt.Errorf("the password file %s is encrypted, age identities are required", creds.PasswordFile)
	}

	data, err := os.ReadFile(creds.PasswordFile)
	if err != nil {
		return "", fmt.Errorf("reading password file failed, error: %w", err)
	}

	r, err := age.Decrypt(armor.NewReader(bytes.NewReader(data)), identities...)
	if err != nil {
		return "", fmt.Errorf("decrypting password file failed, error: %w", err)
	}
	var b bytes.Buffer
	if _, err := io.Copy(&b, r); err != nil {
		return "", fmt.Errorf("decrypting password file failed, error: %w", err)
	}

	return strings.TrimRight(b.String(), "\r\n"), nil
}

// OneView returns the client settings for the configured appliance.
func (c *Config) OneView(identities []age.Identity, log logr.Logger) (oneview.Config, error) {
	if err := c.Validate(); err != nil {
		return oneview.Config{}, err
	}

	password, err := c.Password(identities)
	if err != nil {
		return oneview.Config{}, err
	}

	conn := c.Connection
	return oneview.Config{
		Host:               conn.IP,
		APIVersion:         conn.APIVersion,
		UserName:           conn.Credentials.UserName,
		Password:           password,
		AuthLoginDomain:    conn.Credentials.AuthLoginDomain,
		SessionID:          conn.SessionID,
		SSLCertificate:     conn.SSLCertificate,
		InsecureSkipVerify: conn.InsecureSkipVerify,
		ValidateETag:       conn.ValidateETag == nil || *conn.ValidateETag,
		QPS:                conn.QPS,
		Burst:              conn.Burst,
		TaskPollInterval:   conn.TaskPollInterval.Duration,
		TaskTimeout:        conn.TaskTimeout.Duration,
		Logger:             log,
	}, nil
}
