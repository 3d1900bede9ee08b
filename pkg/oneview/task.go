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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Task states.
const (
	TaskStateCompleted   = "Completed"
	TaskStateWarning     = "Warning"
	TaskStateError       = "Error"
	TaskStateKilled      = "Killed"
	TaskStateTerminated  = "Terminated"
	TaskStateInterrupted = "Interrupted"
)

// Task is an asynchronous operation tracked by the appliance.
type Task struct {
	URI                string            `json:"uri"`
	Name               string            `json:"name"`
	TaskState          string            `json:"taskState"`
	PercentComplete    int               `json:"percentComplete"`
	TaskErrors         []TaskErrorDetail `json:"taskErrors"`
	AssociatedResource struct {
		ResourceURI  string `json:"resourceUri"`
		ResourceName string `json:"resourceName"`
	} `json:"associatedResource"`
}

// Done reports whether the task reached a final state.
func (t *Task) Done() bool {
	switch t.TaskState {
	case TaskStateCompleted, TaskStateWarning, TaskStateError,
		TaskStateKilled, TaskStateTerminated, TaskStateInterrupted:
		return true
	}
	return false
}

// Succeeded reports whether the task completed without errors.
func (t *Task) Succeeded() bool {
	return t.TaskState == TaskStateCompleted
}

// WaitForTask polls the task until it reaches a final state or the task timeout expires.
func (c *Client) WaitForTask(ctx context.Context, uri string) (*Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.TaskTimeout)
	defer cancel()

	var task Task
	err := wait.PollImmediateUntil(c.cfg.TaskPollInterval, func() (bool, error) {
		if err := c.GET(ctx, uri).Execute(&task); err != nil {
			return false, err
		}
		return task.Done(), nil
	}, ctx.Done())
	if err != nil {
		return nil, fmt.Errorf("waiting for task %s failed, error: %w", uri, err)
	}

	c.log.V(1).Info("task finished", "uri", uri, "state", task.TaskState,
		"resource", task.AssociatedResource.ResourceURI)

	if !task.Succeeded() {
		return &task, &TaskError{TaskURI: uri, State: task.TaskState, Errors: task.TaskErrors}
	}
	return &task, nil
}

// followTask extracts the task from a 202 response and waits for it.
func (c *Client) followTask(ctx context.Context, header http.Header, body []byte) (*Task, error) {
	var task Task
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &task); err != nil {
			return nil, fmt.Errorf("decoding task failed, error: %w", err)
		}
	}
	if task.URI == "" {
		task.URI = header.Get("Location")
	}
	if task.URI == "" {
		return nil, nil
	}
	if task.Done() {
		if !task.Succeeded() {
			return &task, &TaskError{TaskURI: task.URI, State: task.TaskState, Errors: task.TaskErrors}
		}
		return &task, nil
	}
	return c.WaitForTask(ctx, task.URI)
}
