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
	"fmt"
	"strings"
)

// Collection is a page of resources.
type Collection struct {
	Members     []map[string]interface{} `json:"members"`
	NextPageURI string                   `json:"nextPageUri"`
	Count       int                      `json:"count"`
	Total       int                      `json:"total"`
}

// ResourceClient performs CRUD calls on a resource collection such as /rest/ethernet-networks.
type ResourceClient struct {
	client *Client
	path   string
}

// Resource returns a client for the collection at the given path.
func (c *Client) Resource(path string) *ResourceClient {
	return &ResourceClient{client: c, path: strings.TrimSuffix(path, "/")}
}

// Path returns the collection path.
func (rc *ResourceClient) Path() string {
	return rc.path
}

// NameFilter returns the filter matching a resource by exact name.
func NameFilter(name string) string {
	return fmt.Sprintf("name='%s'", strings.ReplaceAll(name, "'", "''"))
}

// GetAll lists the collection members matching the filter, following all pages.
func (rc *ResourceClient) GetAll(ctx context.Context, filter string) ([]map[string]interface{}, error) {
	var members []map[string]interface{}

	next := rc.path
	query := map[string]string{}
	if filter != "" {
		query["filter"] = filter
	}

	for next != "" {
		var page Collection
		if err := rc.client.GET(ctx, next).WithQueryParams(query).Execute(&page); err != nil {
			return nil, fmt.Errorf("listing %s failed, error: %w", rc.path, err)
		}
		members = append(members, page.Members...)

		if page.NextPageURI == next || len(page.Members) == 0 {
			break
		}
		next = page.NextPageURI
		// nextPageUri carries the filter
		query = map[string]string{}
	}

	return members, nil
}

// GetByName returns the resource with the given name or nil if it doesn't exist.
func (rc *ResourceClient) GetByName(ctx context.Context, name string) (map[string]interface{}, error) {
	members, err := rc.GetAll(ctx, NameFilter(name))
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if n, _ := m["name"].(string); n == name {
			return m, nil
		}
	}
	return nil, nil
}

// Get returns the resource at uri.
func (rc *ResourceClient) Get(ctx context.Context, uri string) (map[string]interface{}, error) {
	var res map[string]interface{}
	if err := rc.client.GET(ctx, uri).Execute(&res); err != nil {
		return nil, err
	}
	return res, nil
}

// Create posts the attributes to the collection and returns the created resource.
func (rc *ResourceClient) Create(ctx context.Context, attrs map[string]interface{}) (map[string]interface{}, error) {
	return rc.CreateAt(ctx, rc.path, attrs)
}

// CreateAt posts the attributes to a sub path of the collection, such as /rest/ethernet-networks/bulk.
func (rc *ResourceClient) CreateAt(ctx context.Context, path string, attrs interface{}) (map[string]interface{}, error) {
	var res map[string]interface{}
	if err := rc.client.POST(ctx, path).WithJSONBody(attrs).Execute(&res); err != nil {
		return nil, fmt.Errorf("creating %s failed, error: %w", rc.path, err)
	}
	return res, nil
}

// Update replaces the resource identified by the 'uri' attribute.
func (rc *ResourceClient) Update(ctx context.Context, attrs map[string]interface{}) (map[string]interface{}, error) {
	uri, _ := attrs["uri"].(string)
	if uri == "" {
		return nil, fmt.Errorf("updating %s failed, error: uri is required", rc.path)
	}
	eTag, _ := attrs["eTag"].(string)

	var res map[string]interface{}
	if err := rc.client.PUT(ctx, uri).WithIfMatch(eTag).WithJSONBody(attrs).Execute(&res); err != nil {
		return nil, fmt.Errorf("updating %s failed, error: %w", uri, err)
	}
	if res == nil {
		return rc.Get(ctx, uri)
	}
	return res, nil
}

// Patch sends a partial update to uri, the body format depends on the resource.
func (rc *ResourceClient) Patch(ctx context.Context, uri string, body interface{}) (map[string]interface{}, error) {
	var res map[string]interface{}
	if err := rc.client.PATCH(ctx, uri).WithIfMatch("").WithJSONBody(body).Execute(&res); err != nil {
		return nil, fmt.Errorf("patching %s failed, error: %w", uri, err)
	}
	return res, nil
}

// Delete removes the resource at uri.
func (rc *ResourceClient) Delete(ctx context.Context, uri, eTag string) error {
	if err := rc.client.DELETE(ctx, uri).WithIfMatch(eTag).Execute(nil); err != nil {
		return fmt.Errorf("deleting %s failed, error: %w", uri, err)
	}
	return nil
}
