// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// Agent wraps the engine agent's introspection endpoints.
type Agent struct {
	client *Client
}

// Agent returns a handle on the agent endpoints. The client must have been
// built with the engine's address, not the backend's.
func (c *Client) Agent() *Agent {
	return &Agent{client: c}
}

// AgentSelf is the engine agent's view of its own configuration and
// runtime stats.
type AgentSelf struct {
	Config map[string]interface{}       `json:"config"`
	Stats  map[string]map[string]string `json:"stats"`
}

// Self queries /v1/agent/self for the running agent's configuration and
// stats. Credentials are redacted server side.
func (a *Agent) Self(ctx context.Context) (*AgentSelf, error) {
	var out AgentSelf
	if err := a.client.query(ctx, "/v1/agent/self", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Monitor streams the agent's logs at the requested level until ctx is
// canceled. The caller must close the returned body.
func (a *Agent) Monitor(ctx context.Context, logLevel string, logJSON bool) (io.ReadCloser, error) {
	v := url.Values{}
	if logLevel != "" {
		v.Set("log_level", logLevel)
	}
	if logJSON {
		v.Set("log_json", "true")
	}
	endpoint := "/v1/agent/monitor"
	if enc := v.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	req, err := a.client.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := requireOK(a.client.httpClient.Do(req))
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
