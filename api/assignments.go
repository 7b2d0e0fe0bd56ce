// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"context"
	"errors"
	"net/url"
)

// Assignment lifecycle statuses understood by the backend.
const (
	AssignmentStatusDispatched = "dispatched"
	AssignmentStatusArrived    = "arrived"
	AssignmentStatusReleased   = "released"
)

// Assignments is used to drive existing unit assignments through their
// lifecycle.
type Assignments struct {
	client *Client
}

// Assignments returns a handle on the assignment endpoints.
func (c *Client) Assignments() *Assignments {
	return &Assignments{client: c}
}

// AssignmentStatusRequest changes the status of one assignment.
type AssignmentStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an assignment to the given lifecycle status.
func (a *Assignments) UpdateStatus(ctx context.Context, assignmentID, status string) error {
	if assignmentID == "" {
		return errors.New("missing assignment ID")
	}
	if status == "" {
		return errors.New("missing assignment status")
	}
	req := &AssignmentStatusRequest{Status: status}
	return a.client.patch(ctx, "/v1/assignments/"+url.PathEscape(assignmentID)+"/status", req, nil)
}

// Release ends an assignment, freeing its unit for other interventions.
func (a *Assignments) Release(ctx context.Context, assignmentID string) error {
	return a.UpdateStatus(ctx, assignmentID, AssignmentStatusReleased)
}
