// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package agent

import (
	"fmt"
	"net/http"
	"strconv"

	log "github.com/hashicorp/go-hclog"

	"github.com/loan-mgt/fast-pin-pon-sub002/command/agent/monitor"
)

// agentSelf is the response to the agent self endpoint.
type agentSelf struct {
	Config *Config                      `json:"config"`
	Stats  map[string]map[string]string `json:"stats"`
}

// AgentSelfRequest is used to query the state of the agent. Credentials
// in the backend auth block are redacted before serialization.
func (s *HTTPServer) AgentSelfRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != "GET" {
		return nil, CodedError(405, ErrInvalidMethod)
	}

	config := *s.agent.GetConfig()
	if config.Backend != nil {
		backend := *config.Backend
		if backend.Auth != nil {
			auth := *backend.Auth
			if auth.ClientSecret != "" {
				auth.ClientSecret = "<redacted>"
			}
			if auth.Token != "" {
				auth.Token = "<redacted>"
			}
			backend.Auth = &auth
		}
		config.Backend = &backend
	}

	return agentSelf{
		Config: &config,
		Stats:  s.agent.Stats(),
	}, nil
}

// AgentMonitorRequest streams the agent's logs over plain chunked HTTP
// until the client goes away. The log level of the stream is independent
// of the level configured on the agent.
func (s *HTTPServer) AgentMonitorRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != "GET" {
		return nil, CodedError(405, ErrInvalidMethod)
	}

	// Get the provided loglevel.
	logLevel := req.URL.Query().Get("log_level")
	if logLevel == "" {
		logLevel = "INFO"
	}
	if log.LevelFromString(logLevel) == log.NoLevel {
		return nil, CodedError(400, fmt.Sprintf("Unknown log level: %s", logLevel))
	}

	logJson := false
	if v := req.URL.Query().Get("log_json"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, CodedError(400, fmt.Sprintf("Unknown option for log json: %v", err))
		}
		logJson = parsed
	}

	flusher, ok := resp.(http.Flusher)
	if !ok {
		return nil, CodedError(500, "streaming not supported")
	}

	monitor := monitor.New(512, s.agent.logger, &log.LoggerOptions{
		Level:      log.LevelFromString(logLevel),
		JSONFormat: logJson,
	})
	logCh := monitor.Start()
	defer monitor.Stop()

	resp.Header().Set("Content-Type", "text/plain")
	resp.WriteHeader(200)
	flusher.Flush()

	for {
		select {
		case <-req.Context().Done():
			return nil, nil
		case b, ok := <-logCh:
			if !ok {
				return nil, nil
			}
			if _, err := resp.Write(b); err != nil {
				return nil, nil
			}
			flusher.Flush()
		}
	}
}
