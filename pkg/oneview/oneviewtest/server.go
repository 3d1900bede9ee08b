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

// Package oneviewtest provides an in-memory OneView appliance for tests.
package oneviewtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/stefanprodan/ovsync/pkg/kinds"
)

const (
	UserName = "administrator"
	Password = "secret"

	DefaultTemplateURI = "/rest/connection-templates/defaultConnectionTemplate"
)

// Server is a fake appliance backed by an httptest.Server.
type Server struct {
	*httptest.Server

	// Async makes mutating calls answer 202 with a task.
	Async bool
	// TaskFinalState is the state tasks end in, Completed when empty.
	TaskFinalState string
	// PageSize limits the members per collection page, zero means no paging.
	PageSize int

	CurrentVersion int
	MinimumVersion int

	mu          sync.Mutex
	nextID      int
	resources   map[string]map[string]interface{}
	order       []string
	sessions    map[string]bool
	tasks       map[string]*fakeTask
	scripts     map[string]string
	assignments map[string]map[string]bool
	failures    []failure
	requests    []string
}

type fakeTask struct {
	body  map[string]interface{}
	polls int
}

type failure struct {
	method string
	path   string
	status int
	code   string
}

// NewServer starts a fake appliance with the default connection template.
func NewServer() *Server {
	s := &Server{
		CurrentVersion: 2400,
		MinimumVersion: 120,
		resources:      map[string]map[string]interface{}{},
		sessions:       map[string]bool{},
		tasks:          map[string]*fakeTask{},
		scripts:        map[string]string{},
		assignments:    map[string]map[string]bool{},
	}
	s.put(DefaultTemplateURI, map[string]interface{}{
		"uri":       DefaultTemplateURI,
		"name":      "defaultConnectionTemplate",
		"bandwidth": map[string]interface{}{"typicalBandwidth": 2500.0, "maximumBandwidth": 10000.0},
	})
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

// Seed stores a resource in the collection and returns it with its uri.
func (s *Server) Seed(collection string, attrs map[string]interface{}) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(collection, attrs)
}

// Get returns a copy of the resource at uri or nil.
func (s *Server) Get(uri string) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.resources[uri]
	if !ok {
		return nil
	}
	return clone(res)
}

// List returns the members of the collection in creation order.
func (s *Server) List(collection string) []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(collection, "")
}

// Count returns the number of members in the collection.
func (s *Server) Count(collection string) int {
	return len(s.List(collection))
}

// Assignments returns the resource URIs assigned to the scope.
func (s *Server) Assignments(scopeURI string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for uri := range s.assignments[scopeURI] {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

// Script returns the configuration script of an enclosure group.
func (s *Server) Script(uri string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scripts[uri]
}

// Fail makes the next request matching method and path answer with the given status.
func (s *Server) Fail(method, path string, status int, errorCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, path: path, status: status, code: errorCode})
}

// Requests returns the mutating requests received so far as 'METHOD path'.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// ResetRequests clears the recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method != http.MethodGet {
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	}

	for i, f := range s.failures {
		if f.method == r.Method && f.path == r.URL.Path {
			s.failures = append(s.failures[:i], s.failures[i+1:]...)
			writeError(w, f.status, f.code, "injected failure")
			return
		}
	}

	switch r.URL.Path {
	case "/rest/version":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"currentVersion": s.CurrentVersion,
			"minimumVersion": s.MinimumVersion,
		})
		return
	case "/rest/login-sessions":
		s.handleSession(w, r)
		return
	}

	if !s.sessions[r.Header.Get("Auth")] {
		writeError(w, http.StatusUnauthorized, "AUTHORIZATION", "invalid or expired session")
		return
	}
	if r.Header.Get("X-API-Version") == "" {
		writeError(w, http.StatusBadRequest, "MISSING_API_VERSION", "X-API-Version header is required")
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/rest/"), "/")
	collection := "/rest/" + parts[0]

	switch {
	case parts[0] == "tasks" && len(parts) == 2 && r.Method == http.MethodGet:
		s.handleTask(w, r.URL.Path)
	case len(parts) == 1:
		s.handleCollection(w, r, collection)
	case parts[0] == "ethernet-networks" && parts[1] == "bulk" && r.Method == http.MethodPost:
		s.handleBulk(w, r)
	case len(parts) == 2:
		s.handleResource(w, r, collection, r.URL.Path)
	case parts[0] == "scopes" && parts[2] == "resource-assignments" && r.Method == http.MethodPatch:
		s.handleAssignments(w, r, collection+"/"+parts[1])
	case parts[0] == "enclosure-groups" && parts[2] == "script":
		s.handleScript(w, r, collection+"/"+parts[1])
	default:
		writeError(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "unknown path "+r.URL.Path)
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
			return
		}
		if body["userName"] != UserName || body["password"] != Password {
			writeError(w, http.StatusUnauthorized, "AUTHN_AUTH_FAIL", "Invalid user name or password.")
			return
		}
		id := uuid.NewString()
		s.sessions[id] = true
		writeJSON(w, http.StatusOK, map[string]interface{}{"sessionID": id})
	case http.MethodDelete:
		delete(s.sessions, r.Header.Get("Auth"))
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method)
	}
}

// NewSession registers a session ID, as if created by another client.
func (s *Server) NewSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.sessions[id] = true
	return id
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request, collection string) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		members := s.list(collection, q.Get("filter"))
		start, _ := strconv.Atoi(q.Get("start"))
		page := map[string]interface{}{"total": len(members)}
		end := len(members)
		if s.PageSize > 0 && start+s.PageSize < end {
			end = start + s.PageSize
			next := fmt.Sprintf("%s?start=%d&count=%d", collection, end, s.PageSize)
			if f := q.Get("filter"); f != "" {
				next += "&filter=" + urlEscape(f)
			}
			page["nextPageUri"] = next
		}
		if start > len(members) {
			start = len(members)
		}
		page["members"] = members[start:end]
		page["count"] = end - start
		writeJSON(w, http.StatusOK, page)
	case http.MethodPost:
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
			return
		}
		name, _ := body["name"].(string)
		if name == "" {
			writeError(w, http.StatusBadRequest, "INVALID_NAME", "name is required")
			return
		}
		if len(s.list(collection, "name='"+strings.ReplaceAll(name, "'", "''")+"'")) > 0 {
			writeError(w, http.StatusConflict, "DUPLICATE_NAME", fmt.Sprintf("The name %s is already in use.", name))
			return
		}
		res := s.create(collection, body)
		s.respond(w, http.StatusCreated, res)
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method)
	}
}

func (s *Server) handleResource(w http.ResponseWriter, r *http.Request, collection, uri string) {
	res, ok := s.resources[uri]
	if !ok {
		writeError(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", fmt.Sprintf("Resource %s not found.", uri))
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, res)
	case http.MethodPut:
		if !etagMatches(r, res) {
			writeError(w, http.StatusPreconditionFailed, "ETAG_MISMATCH", "The resource was modified.")
			return
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
			return
		}
		body["uri"] = uri
		if collection == "/rest/enclosure-groups" {
			s.extractScript(uri, body)
		}
		body["eTag"] = s.newETag()
		s.resources[uri] = body
		s.respond(w, http.StatusOK, body)
	case http.MethodDelete:
		if !etagMatches(r, res) {
			writeError(w, http.StatusPreconditionFailed, "ETAG_MISMATCH", "The resource was modified.")
			return
		}
		s.remove(uri)
		s.respond(w, http.StatusNoContent, nil)
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method)
	}
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	prefix, _ := body["namePrefix"].(string)
	ranges, _ := body["vlanIdRange"].(string)
	vlans, err := kinds.ParseVlanRange(ranges)
	if err != nil || prefix == "" {
		writeError(w, http.StatusBadRequest, "INVALID_RANGE", fmt.Sprintf("invalid bulk request %v", body))
		return
	}

	var created []interface{}
	for _, vlan := range vlans {
		attrs := map[string]interface{}{
			"name":                fmt.Sprintf("%s_%d", prefix, vlan),
			"vlanId":              float64(vlan),
			"purpose":             body["purpose"],
			"smartLink":           body["smartLink"],
			"privateNetwork":      body["privateNetwork"],
			"ethernetNetworkType": "Tagged",
		}
		created = append(created, s.create("/rest/ethernet-networks", attrs))
	}
	s.respond(w, http.StatusOK, map[string]interface{}{"members": created})
}

func (s *Server) handleAssignments(w http.ResponseWriter, r *http.Request, scopeURI string) {
	scope, ok := s.resources[scopeURI]
	if !ok {
		writeError(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", fmt.Sprintf("Resource %s not found.", scopeURI))
		return
	}
	var body struct {
		Added   []string `json:"addedResourceUris"`
		Removed []string `json:"removedResourceUris"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	set := s.assignments[scopeURI]
	if set == nil {
		set = map[string]bool{}
		s.assignments[scopeURI] = set
	}
	for _, uri := range body.Added {
		set[uri] = true
	}
	for _, uri := range body.Removed {
		delete(set, uri)
	}
	scope["eTag"] = s.newETag()
	s.respond(w, http.StatusOK, scope)
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request, uri string) {
	if _, ok := s.resources[uri]; !ok {
		writeError(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", fmt.Sprintf("Resource %s not found.", uri))
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.scripts[uri])
	case http.MethodPut:
		var script string
		if err := json.NewDecoder(r.Body).Decode(&script); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
			return
		}
		s.scripts[uri] = script
		writeJSON(w, http.StatusOK, script)
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method)
	}
}

func (s *Server) handleTask(w http.ResponseWriter, uri string) {
	t, ok := s.tasks[uri]
	if !ok {
		writeError(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", fmt.Sprintf("Task %s not found.", uri))
		return
	}
	t.polls++
	if t.polls > 1 && t.body["taskState"] == "Running" {
		t.body["taskState"] = "Completed"
		t.body["percentComplete"] = 100
		if s.TaskFinalState != "" && s.TaskFinalState != "Completed" {
			t.body["taskState"] = s.TaskFinalState
			t.body["taskErrors"] = []interface{}{
				map[string]interface{}{"errorCode": "TASK_FAILED", "message": "injected task failure"},
			}
		}
	}
	writeJSON(w, http.StatusOK, t.body)
}

// respond answers a mutating call directly or through a task in async mode.
func (s *Server) respond(w http.ResponseWriter, status int, res map[string]interface{}) {
	if !s.Async {
		if res == nil {
			w.WriteHeader(status)
			return
		}
		writeJSON(w, status, res)
		return
	}

	s.nextID++
	uri := fmt.Sprintf("/rest/tasks/%d", s.nextID)
	task := map[string]interface{}{
		"uri":             uri,
		"name":            "Update",
		"taskState":       "Running",
		"percentComplete": 0,
	}
	if res != nil {
		if resURI, ok := res["uri"].(string); ok {
			task["associatedResource"] = map[string]interface{}{"resourceUri": resURI, "resourceName": res["name"]}
		}
	}
	s.tasks[uri] = &fakeTask{body: task}
	w.Header().Set("Location", uri)
	writeJSON(w, http.StatusAccepted, task)
}

func (s *Server) create(collection string, attrs map[string]interface{}) map[string]interface{} {
	res := clone(attrs)
	uri := fmt.Sprintf("%s/%s", collection, uuid.NewString())
	res["uri"] = uri
	res["eTag"] = s.newETag()
	res["state"] = "Active"
	res["status"] = "OK"

	switch collection {
	case "/rest/ethernet-networks", "/rest/fc-networks", "/rest/fcoe-networks":
		bandwidth := map[string]interface{}{"typicalBandwidth": 2500.0, "maximumBandwidth": 10000.0}
		if b, ok := res["bandwidth"].(map[string]interface{}); ok {
			for k, v := range b {
				bandwidth[k] = v
			}
			delete(res, "bandwidth")
		}
		template := s.create("/rest/connection-templates", map[string]interface{}{
			"name":      res["name"],
			"bandwidth": bandwidth,
		})
		res["connectionTemplateUri"] = template["uri"]
	case "/rest/enclosure-groups":
		s.extractScript(uri, res)
	}

	s.put(uri, res)
	return clone(res)
}

func (s *Server) extractScript(uri string, res map[string]interface{}) {
	if script, ok := res["configurationScript"].(string); ok {
		s.scripts[uri] = script
	}
	delete(res, "configurationScript")
}

func (s *Server) put(uri string, res map[string]interface{}) {
	if _, ok := s.resources[uri]; !ok {
		s.order = append(s.order, uri)
	}
	s.resources[uri] = res
}

func (s *Server) remove(uri string) {
	delete(s.resources, uri)
	for i, u := range s.order {
		if u == uri {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Server) list(collection, filter string) []map[string]interface{} {
	members := []map[string]interface{}{}
	for _, uri := range s.order {
		if !strings.HasPrefix(uri, collection+"/") || uri == DefaultTemplateURI {
			continue
		}
		res := s.resources[uri]
		if matchFilter(res, filter) {
			members = append(members, clone(res))
		}
	}
	return members
}

func (s *Server) newETag() string {
	s.nextID++
	return strconv.Itoa(s.nextID)
}

func etagMatches(r *http.Request, res map[string]interface{}) bool {
	ifMatch := r.Header.Get("If-Match")
	if ifMatch == "" || ifMatch == "*" {
		return true
	}
	return ifMatch == res["eTag"]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"errorCode":          code,
		"message":            message,
		"details":            "",
		"recommendedActions": []string{},
	})
}

func clone(m map[string]interface{}) map[string]interface{} {
	data, _ := json.Marshal(m)
	var out map[string]interface{}
	_ = json.Unmarshal(data, &out)
	return out
}
