// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	connlimit "github.com/hashicorp/go-connlimit"
	log "github.com/hashicorp/go-hclog"
	"github.com/rs/cors"
)

const (
	// ErrInvalidMethod is the error body for requests using the wrong verb
	ErrInvalidMethod = "Invalid method"

	// httpShutdownTimeout is the grace period given to in-flight requests
	// before the listener is torn down.
	httpShutdownTimeout = 5 * time.Second
)

// allowCORS is the permissive CORS policy for the read-only endpoints
var allowCORS = cors.New(cors.Options{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{"HEAD", "GET"},
	AllowedHeaders: []string{"*"},
})

// HTTPServer exposes an Agent over HTTP, serving the engine callback
// routes alongside the operator endpoints.
type HTTPServer struct {
	agent      *Agent
	mux        *http.ServeMux
	listener   net.Listener
	listenerCh chan struct{}
	srv        *http.Server
	logger     log.Logger
	Addr       string
}

// NewHTTPServer binds the configured HTTP address and begins serving the
// agent's routes.
func NewHTTPServer(agent *Agent, config *Config) (*HTTPServer, error) {
	// Start the listener
	lnAddr, err := net.ResolveTCPAddr("tcp", config.normalizedAddrs.HTTP)
	if err != nil {
		return nil, err
	}
	ln, err := net.ListenTCP("tcp", lnAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to start HTTP listener: %v", err)
	}

	// Create the mux
	mux := http.NewServeMux()

	// Create the server
	srv := &HTTPServer{
		agent:      agent,
		mux:        mux,
		listener:   tcpKeepAliveListener{ln},
		listenerCh: make(chan struct{}),
		logger:     agent.httpLogger,
		Addr:       ln.Addr().String(),
	}
	srv.registerHandlers(config.EnableDebug)

	var connLimit int
	if config.Limits != nil && config.Limits.HTTPMaxConnsPerClient != nil {
		connLimit = *config.Limits.HTTPMaxConnsPerClient
	}

	// responses are gzip compressed when the client accepts it
	srv.srv = &http.Server{
		Addr:      srv.Addr,
		Handler:   handlers.CompressHandler(mux),
		ConnState: makeConnState(connLimit),
		ErrorLog:  srv.logger.StandardLogger(&log.StandardLoggerOptions{InferLevels: true}),
	}

	go func() {
		defer close(srv.listenerCh)
		srv.srv.Serve(srv.listener)
	}()

	return srv, nil
}

// makeConnState returns a ConnState func enforcing the per client IP
// connection limit, or nil when the limit is disabled.
func makeConnState(connLimit int) func(conn net.Conn, state http.ConnState) {
	if connLimit <= 0 {
		return nil
	}
	return connlimit.NewLimiter(connlimit.Config{
		MaxConnsPerClientIP: connLimit,
	}).HTTPConnStateFunc()
}

// tcpKeepAliveListener enables TCP keep-alive on accepted connections so
// dead peers eventually get reaped.
type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (c net.Conn, err error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return
	}
	tc.SetKeepAlive(true)
	tc.SetKeepAlivePeriod(30 * time.Second)
	return tc, nil
}

// Shutdown is used to shutdown the HTTP server. In-flight requests get a
// grace period to finish before the listener is torn down.
func (s *HTTPServer) Shutdown() {
	if s == nil {
		return
	}
	s.logger.Debug("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown of http server failed", "error", err)
		s.listener.Close()
	}
	<-s.listenerCh // block until http.Serve has returned.
}

// registerHandlers attaches every route the agent serves to the mux.
func (s *HTTPServer) registerHandlers(enableDebug bool) {
	s.mux.Handle("/health", wrapCORS(s.wrap(s.HealthRequest)))

	s.mux.HandleFunc("/refresh", s.wrap(s.RefreshRequest))

	s.mux.HandleFunc("/dispatch", s.wrap(s.DispatchRequest))
	s.mux.HandleFunc("/dispatch/", s.wrap(s.DispatchRequest))

	s.mux.HandleFunc("/v1/agent/self", s.wrap(s.AgentSelfRequest))
	s.mux.HandleFunc("/v1/agent/monitor", s.wrap(s.AgentMonitorRequest))

	s.mux.Handle("/metrics", wrapCORS(s.wrap(s.MetricsRequest)))

	if enableDebug {
		s.mux.HandleFunc("/debug/pprof/", pprof.Index)
		s.mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		s.mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		s.mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		s.mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
}

// HTTPCodedError is an error that carries the HTTP status code to write.
type HTTPCodedError interface {
	error
	Code() int
}

func CodedError(c int, s string) HTTPCodedError {
	return &codedError{s, c}
}

type codedError struct {
	s    string
	code int
}

func (e *codedError) Error() string {
	return e.s
}

func (e *codedError) Code() int {
	return e.code
}

// errorResponse is the JSON body written for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// isAPIClientError returns true if the passed http code is a client error
func isAPIClientError(code int) bool {
	return 400 <= code && code <= 499
}

// wrap adapts an object-or-error handler into an http.HandlerFunc,
// centralizing JSON encoding, error rendering, and request logging.
func (s *HTTPServer) wrap(handler func(resp http.ResponseWriter, req *http.Request) (interface{}, error)) func(resp http.ResponseWriter, req *http.Request) {
	f := func(resp http.ResponseWriter, req *http.Request) {
		// Invoke the handler
		reqURL := req.URL.String()
		start := time.Now()
		defer func() {
			s.logger.Debug("request complete", "method", req.Method, "path", reqURL, "duration", time.Since(start))
		}()
		obj, err := handler(resp, req)

		// Check for an error
	HAS_ERR:
		if err != nil {
			code := 500
			errMsg := err.Error()
			if http, ok := err.(HTTPCodedError); ok {
				code = http.Code()
			}

			body, _ := json.Marshal(errorResponse{Error: errMsg})
			resp.Header().Set("Content-Type", "application/json")
			resp.WriteHeader(code)
			resp.Write(body)
			if isAPIClientError(code) {
				s.logger.Debug("request failed", "method", req.Method, "path", reqURL, "error", err, "code", code)
			} else {
				s.logger.Error("request failed", "method", req.Method, "path", reqURL, "error", err, "code", code)
			}
			return
		}

		prettyPrint := false
		if v, ok := req.URL.Query()["pretty"]; ok {
			if len(v) > 0 && (len(v[0]) == 0 || v[0] != "0") {
				prettyPrint = true
			}
		}

		// Write out the JSON object
		if obj != nil {
			var out []byte
			if prettyPrint {
				out, err = json.MarshalIndent(obj, "", "    ")
				if err == nil {
					out = append(out, '\n')
				}
			} else {
				out, err = json.Marshal(obj)
			}
			if err != nil {
				goto HAS_ERR
			}
			resp.Header().Set("Content-Type", "application/json")
			resp.Write(out)
		}
	}
	return f
}

// pathSuffix pulls the trailing path element off a request path, so
// /dispatch/abc with prefix /dispatch yields abc.
func pathSuffix(path, prefix string) string {
	return strings.Trim(strings.TrimPrefix(path, prefix), "/")
}

// wrapCORS applies the permissive CORS policy to a HandlerFunc.
func wrapCORS(f func(http.ResponseWriter, *http.Request)) http.Handler {
	return allowCORS.Handler(http.HandlerFunc(f))
}
