// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package agent

import (
	"net/http"
)

const (
	healthHealthy      = "healthy"
	healthInitializing = "initializing"
)

// healthResponse is the reply to a health probe.
type healthResponse struct {
	Status string `json:"status"`
}

type refreshResponse struct {
	Status string `json:"status"`
}

type dispatchResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// HealthRequest reports engine readiness. The engine is healthy once the
// static data cache has been hydrated from the backend; before that it
// answers with an initializing status so orchestrators hold traffic.
func (s *HTTPServer) HealthRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != "GET" {
		return nil, CodedError(405, ErrInvalidMethod)
	}

	status := healthInitializing
	if s.agent.Cache().IsInitialized() {
		status = healthHealthy
	}
	return &healthResponse{Status: status}, nil
}

// RefreshRequest forces a static data refresh. The backend calls it after
// mutating referential data so the engine picks the change up without
// waiting for the periodic sweep.
func (s *HTTPServer) RefreshRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != "POST" {
		return nil, CodedError(405, ErrInvalidMethod)
	}

	if err := s.agent.Cache().Refresh(req.Context()); err != nil {
		s.logger.Error("static data refresh failed", "error", err)
		return nil, CodedError(500, "refresh failed")
	}
	return &refreshResponse{Status: "refreshed"}, nil
}

// DispatchRequest runs a targeted dispatch for one intervention. The
// backend calls it right after creating an intervention; the periodic
// sweep covers anything this misses.
func (s *HTTPServer) DispatchRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != "POST" {
		return nil, CodedError(405, ErrInvalidMethod)
	}

	interventionID := pathSuffix(req.URL.Path, "/dispatch")
	if interventionID == "" {
		return nil, CodedError(400, "missing intervention id")
	}

	assigned, err := s.agent.Dispatcher().DispatchForIntervention(req.Context(), interventionID)
	if err != nil {
		s.logger.Error("dispatch failed", "intervention_id", interventionID, "error", err)
		return nil, CodedError(500, "dispatch failed")
	}
	return &dispatchResponse{Status: "dispatched", Count: len(assigned)}, nil
}
