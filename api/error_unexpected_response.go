// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// UnexpectedResponseError tracks the components for API errors encountered
// when requireOK and requireStatusIn's conditions are not met.
type UnexpectedResponseError struct {
	expected   []int
	statusCode int
	statusText string
	body       string
	err        error
}

func (e UnexpectedResponseError) HasExpectedStatuses() bool { return len(e.expected) > 0 }
func (e UnexpectedResponseError) ExpectedStatuses() []int   { return e.expected }
func (e UnexpectedResponseError) HasStatusCode() bool       { return e.statusCode != 0 }
func (e UnexpectedResponseError) StatusCode() int           { return e.statusCode }
func (e UnexpectedResponseError) HasStatusText() bool       { return e.statusText != "" }
func (e UnexpectedResponseError) StatusText() string        { return e.statusText }
func (e UnexpectedResponseError) HasBody() bool             { return e.body != "" }
func (e UnexpectedResponseError) Body() string              { return e.body }
func (e UnexpectedResponseError) HasError() bool            { return e.err != nil }
func (e UnexpectedResponseError) Unwrap() error             { return e.err }

func (e UnexpectedResponseError) Error() string {
	var eTxt strings.Builder
	eTxt.WriteString("Unexpected response code")
	if e.HasBody() || e.HasStatusCode() {
		eTxt.WriteString(": ")
	}
	if e.HasStatusCode() {
		eTxt.WriteString(fmt.Sprint(e.statusCode))
		if e.HasBody() {
			eTxt.WriteRune(' ')
		}
	}
	if e.HasBody() {
		eTxt.WriteString(fmt.Sprintf("(%s)", e.body))
	}
	return eTxt.String()
}

// UnexpectedResponseErrorOption customizes an error built by
// NewUnexpectedResponseError.
type UnexpectedResponseErrorOption func(*UnexpectedResponseError)

// WithError attaches a Go error that was encountered while processing the
// response, for example when draining the response body fails.
func WithError(e error) UnexpectedResponseErrorOption {
	return func(u *UnexpectedResponseError) { u.err = e }
}

// WithExpectedStatuses provides the list of statuses the calling function
// expected to receive, so callers can give better feedback to end users.
func WithExpectedStatuses(s []int) UnexpectedResponseErrorOption {
	return func(u *UnexpectedResponseError) {
		u.expected = make([]int, len(s))
		copy(u.expected, s)
	}
}

// UnexpectedResponseErrorSource provides the basis for a
// NewUnexpectedResponseError.
type UnexpectedResponseErrorSource func() *UnexpectedResponseError

// FromHTTPResponse reads an open HTTP response, drains and closes its body
// as the data for the UnexpectedResponseError.
func FromHTTPResponse(resp *http.Response) UnexpectedResponseErrorSource {
	return func() *UnexpectedResponseError {
		u := new(UnexpectedResponseError)

		if resp != nil {
			// collect and close the body
			var buf bytes.Buffer
			if _, e := io.Copy(&buf, resp.Body); e != nil {
				u.err = e
			}

			// closing an already-drained body is safe
			_ = resp.Body.Close()

			u.statusCode = resp.StatusCode
			u.statusText = strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode)))
			u.body = strings.TrimSpace(buf.String())
		}
		return u
	}
}

func NewUnexpectedResponseError(src UnexpectedResponseErrorSource, opts ...UnexpectedResponseErrorOption) UnexpectedResponseError {
	bld := src()
	for _, opt := range opts {
		opt(bld)
	}
	if bld.statusText == "" {
		// derive the text from the code when the response carried none
		bld.statusText = http.StatusText(bld.statusCode)
		if bld.statusText == "" {
			bld.statusText = "unknown status code"
		}
	}
	return *bld
}

// responseWrapper is a function that wraps an http.Client.Do result and can
// be used to provide error and response handling.
type responseWrapper = func(*http.Response, error) (*http.Response, error)

// requireOK is used to wrap a request and check for a 200.
func requireOK(resp *http.Response, e error) (*http.Response, error) {
	return requireStatusIn(http.StatusOK)(resp, e)
}

// requireStatusIn is a responseWrapper generator that takes expected HTTP
// response codes and validates that the received response code is among
// them.
func requireStatusIn(statuses ...int) responseWrapper {
	return func(resp *http.Response, e error) (*http.Response, error) {
		if e != nil {
			if resp != nil {
				_ = resp.Body.Close()
			}
			return nil, e
		}

		for _, status := range statuses {
			if resp.StatusCode == status {
				return resp, nil
			}
		}

		return nil, NewUnexpectedResponseError(FromHTTPResponse(resp), WithExpectedStatuses(statuses))
	}
}
