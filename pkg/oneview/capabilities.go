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

	"github.com/stefanprodan/ovsync/pkg/reconcile"
)

// Capabilities exposes the collection as reconciler capabilities.
func (rc *ResourceClient) Capabilities() reconcile.Capabilities {
	return reconcile.Capabilities{
		FetchByName: rc.FetchByName,
		Create: func(ctx context.Context, attrs map[string]interface{}) (*reconcile.RemoteResource, error) {
			res, err := rc.Create(ctx, attrs)
			if err != nil {
				return nil, err
			}
			return reconcile.NewRemoteResource(res), nil
		},
		Update: func(ctx context.Context, attrs map[string]interface{}) (*reconcile.RemoteResource, error) {
			res, err := rc.Update(ctx, attrs)
			if err != nil {
				return nil, err
			}
			return reconcile.NewRemoteResource(res), nil
		},
		Delete: func(ctx context.Context, res *reconcile.RemoteResource) error {
			err := rc.Delete(ctx, res.URI, res.ETag)
			if IsNotFound(err) {
				return nil
			}
			return err
		},
	}
}

// FetchByName returns the named resource as a remote snapshot, nil when not found.
func (rc *ResourceClient) FetchByName(ctx context.Context, name string) (*reconcile.RemoteResource, error) {
	res, err := rc.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return reconcile.NewRemoteResource(res), nil
}
