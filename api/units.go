// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"context"
	"errors"
	"net/url"
)

// Units is used to manipulate field units directly.
type Units struct {
	client *Client
}

// Units returns a handle on the unit endpoints.
func (c *Client) Units() *Units {
	return &Units{client: c}
}

// UnitStatusRequest overrides a unit's operational status.
type UnitStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus sets a unit's operational status, for example to hand a unit
// back to the available pool after a half-committed preemption.
func (u *Units) UpdateStatus(ctx context.Context, unitID, status string) error {
	if unitID == "" {
		return errors.New("missing unit ID")
	}
	if status == "" {
		return errors.New("missing unit status")
	}
	req := &UnitStatusRequest{Status: status}
	return u.client.patch(ctx, "/v1/units/"+url.PathEscape(unitID)+"/status", req, nil)
}
