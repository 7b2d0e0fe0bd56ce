// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

var _ http.ResponseWriter = (*ResponseRecorder)(nil)

// ResponseRecorder is a concurrency-safe http.ResponseWriter for tests
// that read a streaming response while the handler is still writing it,
// which httptest.ResponseRecorder does not allow. It wraps an
// httptest.ResponseRecorder behind a mutex.
type ResponseRecorder struct {
	rr *httptest.ResponseRecorder
	mu sync.Mutex
}

func NewResponseRecorder() *ResponseRecorder {
	return &ResponseRecorder{
		rr: httptest.NewRecorder(),
	}
}

// Flush marks the response as flushed.
func (r *ResponseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rr.Flush()
}

// Flushed reports whether Flush has been called.
func (r *ResponseRecorder) Flushed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rr.Flushed
}

// Header returns the response headers.
func (r *ResponseRecorder) Header() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rr.Header()
}

// Code returns the response status code set by WriteHeader.
func (r *ResponseRecorder) Code() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rr.Code
}

// Write appends to the response buffer, safely interleaving with Read.
func (r *ResponseRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rr.Body.Write(p)
}

// WriteHeader sets the response code, safely interleaving with Read.
func (r *ResponseRecorder) WriteHeader(statusCode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rr.WriteHeader(statusCode)
}

// Read drains whatever response bytes have been written so far.
func (r *ResponseRecorder) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rr.Body.Read(p)
}
