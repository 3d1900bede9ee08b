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
	"os"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/stefanprodan/ovsync/pkg/config"
	"github.com/stefanprodan/ovsync/pkg/inventory"
	logutil "github.com/stefanprodan/ovsync/pkg/logger"
	"github.com/stefanprodan/ovsync/pkg/manager"
	"github.com/stefanprodan/ovsync/pkg/objectutil"
	"github.com/stefanprodan/ovsync/pkg/oneview"
)

// newResourceManager connects to the appliance and returns a manager
// along with a func that closes the session and the log file.
func newResourceManager(ctx context.Context) (*manager.ResourceManager, func(), error) {
	log, closer, err := newLogger()
	if err != nil {
		return nil, nil, err
	}

	client, err := newOneViewClient(ctx, log)
	if err != nil {
		closer()
		return nil, nil, err
	}

	order := objectutil.NewKindOrder(cfg.ApplyOrder.First, cfg.ApplyOrder.Last)
	resMgr := manager.NewResourceManager(client, order, log)

	cleanup := func() {
		if err := client.Logout(context.Background()); err != nil {
			log.Error(err, "closing the session failed")
		}
		closer()
	}
	return resMgr, cleanup, nil
}

func newOneViewClient(ctx context.Context, log logr.Logger) (*oneview.Client, error) {
	identities, err := config.ParseAgeIdentities(rootArgs.ageIdentities)
	if err != nil {
		return nil, fmt.Errorf("parsing age identities failed, error: %w", err)
	}

	ovCfg, err := cfg.OneView(identities, log)
	if err != nil {
		return nil, fmt.Errorf("client init failed: %w", err)
	}

	client, err := oneview.NewClient(ovCfg)
	if err != nil {
		return nil, fmt.Errorf("client init failed: %w", err)
	}

	if err := client.CheckAPIVersion(ctx); err != nil {
		return nil, err
	}
	if err := client.Login(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func newLogger() (logr.Logger, func(), error) {
	level, err := logutil.ParseLevel(cfg.Log.Level)
	if err != nil {
		return logr.Discard(), nil, err
	}
	log, closer, err := logutil.NewFile(cfg.Log.File, level)
	if err != nil {
		return logr.Discard(), nil, err
	}
	return log, func() { _ = closer.Close() }, nil
}

func openInventoryStorage() (*inventory.Storage, error) {
	path := cfg.Inventory.Path
	if path == "" {
		p, err := config.DefaultInventoryPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0755)); err != nil {
		return nil, err
	}
	return inventory.Open(path)
}
