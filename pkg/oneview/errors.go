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
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError is returned for non 2xx responses.
type HTTPError struct {
	StatusCode         int      `json:"-"`
	Method             string   `json:"-"`
	Path               string   `json:"-"`
	ErrorCode          string   `json:"errorCode"`
	Message            string   `json:"message"`
	Details            string   `json:"details"`
	RecommendedActions []string `json:"recommendedActions"`
	Body               string   `json:"-"`
}

func (e *HTTPError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s failed with status %d", e.Method, e.Path, e.StatusCode)
	if e.ErrorCode != "" {
		fmt.Fprintf(&sb, ", %s", e.ErrorCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&sb, ": %s", e.Message)
	} else if e.Body != "" {
		fmt.Fprintf(&sb, ": %s", e.Body)
	}
	if e.Details != "" {
		fmt.Fprintf(&sb, " (%s)", e.Details)
	}
	return sb.String()
}

// TaskErrorDetail is an entry of the task errors list.
type TaskErrorDetail struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
	Details   string `json:"details"`
}

// TaskError is returned when an asynchronous task ends in a non successful state.
type TaskError struct {
	TaskURI string
	State   string
	Errors  []TaskErrorDetail
}

func (e *TaskError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		if d.Message != "" {
			msgs = append(msgs, d.Message)
		}
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("task %s finished with state %s", e.TaskURI, e.State)
	}
	return fmt.Sprintf("task %s finished with state %s: %s", e.TaskURI, e.State, strings.Join(msgs, "; "))
}

// HasStatusCode reports whether err is an HTTPError with the given status code.
func HasStatusCode(err error, statusCode int) bool {
	httpErr := new(HTTPError)
	return errors.As(err, &httpErr) && httpErr.StatusCode == statusCode
}

func IsNotFound(err error) bool {
	return HasStatusCode(err, http.StatusNotFound)
}

func IsPreconditionFailed(err error) bool {
	return HasStatusCode(err, http.StatusPreconditionFailed)
}

func IsUnauthorized(err error) bool {
	return HasStatusCode(err, http.StatusUnauthorized)
}
