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

package oneview

import (
	"net/http"
	"time"

	"github.com/go-logr/logr"
)

const (
	DefaultAPIVersion       = 800
	DefaultQPS              = 50
	DefaultBurst            = 100
	DefaultTaskPollInterval = 2 * time.Second
	DefaultTaskTimeout      = 30 * time.Minute
)

// Config holds the appliance connection settings.
type Config struct {
	// Host is the appliance address, with or without the https:// scheme.
	Host string

	// APIVersion is sent as the X-API-Version header.
	APIVersion int

	UserName        string
	Password        string
	AuthLoginDomain string

	// SessionID reuses an existing session instead of logging in.
	SessionID string

	// SSLCertificate is the path to a PEM bundle used to verify the appliance.
	SSLCertificate     string
	InsecureSkipVerify bool

	// ValidateETag sends the resource eTag in If-Match, when false If-Match is '*'.
	ValidateETag bool

	// QPS and Burst configure the client side rate limiter.
	QPS   float32
	Burst int

	TaskPollInterval time.Duration
	TaskTimeout      time.Duration

	// HTTPClient overrides the client built from the TLS settings.
	HTTPClient *http.Client

	Logger logr.Logger
}

func (c Config) withDefaults() Config {
	if c.APIVersion <= 0 {
		c.APIVersion = DefaultAPIVersion
	}
	if c.QPS <= 0 {
		c.QPS = DefaultQPS
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	if c.TaskPollInterval <= 0 {
		c.TaskPollInterval = DefaultTaskPollInterval
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = DefaultTaskTimeout
	}
	if c.Logger.GetSink() == nil {
		c.Logger = logr.Discard()
	}
	return c
}
