// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"context"
	"errors"
	"net/url"
)

// Engine health statuses.
const (
	EngineStatusHealthy      = "healthy"
	EngineStatusInitializing = "initializing"
)

// Engine is a handle on an engine agent's callback surface. The backend
// uses these endpoints to nudge the engine after writes; operators reach
// the same surface through the CLI.
type Engine struct {
	client *Client
}

// Engine returns a handle on the engine callback endpoints. The client must
// have been built with the engine's address, not the backend's.
func (c *Client) Engine() *Engine {
	return &Engine{client: c}
}

// EngineHealthResponse reports the engine's cache hydration state.
type EngineHealthResponse struct {
	Status string `json:"status"`
}

// Health reports whether the engine has completed at least one static data
// refresh.
func (e *Engine) Health(ctx context.Context) (*EngineHealthResponse, error) {
	var resp EngineHealthResponse
	if err := e.client.query(ctx, "/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EngineRefreshResponse acknowledges a cache refresh.
type EngineRefreshResponse struct {
	Status string `json:"status"`
}

// Refresh asks the engine to reload its static data from the backend now
// rather than waiting for the next scheduled refresh.
func (e *Engine) Refresh(ctx context.Context) (*EngineRefreshResponse, error) {
	var resp EngineRefreshResponse
	if err := e.client.post(ctx, "/refresh", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EngineDispatchResponse reports how many units a triggered dispatch
// decision committed.
type EngineDispatchResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Dispatch triggers a dispatch decision for one intervention.
func (e *Engine) Dispatch(ctx context.Context, interventionID string) (*EngineDispatchResponse, error) {
	if interventionID == "" {
		return nil, errors.New("missing intervention ID")
	}
	var resp EngineDispatchResponse
	err := e.client.post(ctx, "/dispatch/"+url.PathEscape(interventionID), nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
