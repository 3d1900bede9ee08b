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
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-logr/logr"
	"k8s.io/client-go/util/flowcontrol"
)

const (
	loginSessionsPath = "/rest/login-sessions"
	versionPath       = "/rest/version"

	authHeader       = "Auth"
	apiVersionHeader = "X-API-Version"
	ifMatchHeader    = "If-Match"
)

// Client is a OneView REST API client.
// It is safe for concurrent use once logged in.
type Client struct {
	cfg        Config
	baseURL    *url.URL
	httpClient *http.Client
	limiter    flowcontrol.RateLimiter
	log        logr.Logger

	mu          sync.RWMutex
	sessionID   string
	ownsSession bool
}

// NewClient returns a client for the appliance described by cfg.
// No request is made until Login is called.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	if cfg.Host == "" {
		return nil, errors.New("appliance address is required")
	}

	host := cfg.Host
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	baseURL, err := url.Parse(strings.TrimSuffix(host, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing appliance address '%s' failed, error: %w", cfg.Host, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient, err = newHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    flowcontrol.NewTokenBucketRateLimiter(cfg.QPS, cfg.Burst),
		log:        cfg.Logger.WithName("oneview"),
		sessionID:  cfg.SessionID,
	}, nil
}

func newHTTPClient(cfg Config) (*http.Client, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	if cfg.SSLCertificate != "" {
		pem, err := os.ReadFile(cfg.SSLCertificate)
		if err != nil {
			return nil, fmt.Errorf("reading certificate '%s' failed, error: %w", cfg.SSLCertificate, err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in '%s'", cfg.SSLCertificate)
		}
		tlsConfig.RootCAs = pool
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}, nil
}

// Config returns the connection settings with defaults applied.
func (c *Client) Config() Config {
	return c.cfg
}

// SessionID returns the current session token.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

type loginRequest struct {
	UserName        string `json:"userName"`
	Password        string `json:"password"`
	AuthLoginDomain string `json:"authLoginDomain,omitempty"`
}

type loginResponse struct {
	SessionID string `json:"sessionID"`
}

// Login opens a session with the configured credentials.
// When a session ID was provided it is kept and no login request is made.
func (c *Client) Login(ctx context.Context) error {
	if c.SessionID() != "" {
		return nil
	}

	if c.cfg.UserName == "" {
		return errors.New("user name is required when no session ID is provided")
	}

	var resp loginResponse
	err := c.POST(ctx, loginSessionsPath).
		withoutAuth().
		WithJSONBody(loginRequest{
			UserName:        c.cfg.UserName,
			Password:        c.cfg.Password,
			AuthLoginDomain: c.cfg.AuthLoginDomain,
		}).
		Execute(&resp)
	if err != nil {
		return fmt.Errorf("login failed, error: %w", err)
	}
	if resp.SessionID == "" {
		return errors.New("login failed, error: empty session ID")
	}

	c.mu.Lock()
	c.sessionID = resp.SessionID
	c.ownsSession = true
	c.mu.Unlock()

	c.log.V(1).Info("session opened", "user", c.cfg.UserName)
	return nil
}

// Logout closes the session opened by Login.
// Sessions provided by the caller are left open.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.RLock()
	owns := c.ownsSession
	c.mu.RUnlock()
	if !owns {
		return nil
	}

	if err := c.DELETE(ctx, loginSessionsPath).Execute(nil); err != nil {
		return fmt.Errorf("logout failed, error: %w", err)
	}

	c.mu.Lock()
	c.sessionID = ""
	c.ownsSession = false
	c.mu.Unlock()
	return nil
}

// Version holds the API versions supported by the appliance.
type Version struct {
	CurrentVersion int `json:"currentVersion"`
	MinimumVersion int `json:"minimumVersion"`
}

// Version returns the API version range of the appliance.
func (c *Client) Version(ctx context.Context) (*Version, error) {
	var v Version
	if err := c.GET(ctx, versionPath).withoutAuth().Execute(&v); err != nil {
		return nil, fmt.Errorf("version request failed, error: %w", err)
	}
	return &v, nil
}

// CheckAPIVersion verifies that the configured API version is supported by the appliance.
func (c *Client) CheckAPIVersion(ctx context.Context) error {
	v, err := c.Version(ctx)
	if err != nil {
		return err
	}

	constraint, err := semver.NewConstraint(fmt.Sprintf(">= %d, <= %d", v.MinimumVersion, v.CurrentVersion))
	if err != nil {
		return fmt.Errorf("invalid appliance version range, error: %w", err)
	}

	if !constraint.Check(apiVersion(c.cfg.APIVersion)) {
		return fmt.Errorf("API version %d is not supported by the appliance, supported range is %d-%d",
			c.cfg.APIVersion, v.MinimumVersion, v.CurrentVersion)
	}
	return nil
}

// SupportsAPIVersion checks the configured API version against a constraint such as '>= 300'.
func (c *Client) SupportsAPIVersion(constraint string) (bool, error) {
	if constraint == "" {
		return true, nil
	}
	cs, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid API version constraint '%s', error: %w", constraint, err)
	}
	return cs.Check(apiVersion(c.cfg.APIVersion)), nil
}

func apiVersion(v int) *semver.Version {
	return semver.MustParse(strconv.Itoa(v))
}
