// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/loan-mgt/fast-pin-pon-sub002/api"
	"github.com/loan-mgt/fast-pin-pon-sub002/ci"
	"github.com/shoenig/test/must"
)

const mockCandidatesBody = `{"intervention_id":"i-default","event_severity":2,"recommended_unit_types":["FPT"],"candidates":[{"id":"u-1","call_sign":"FPT-1","unit_type_code":"FPT","home_base":"Station 1","status":"available","location":{"latitude":45.7578,"longitude":4.832},"travel_time_seconds":120,"distance_meters":1800,"other_units_at_base":3,"en_route_to_target":false,"current_assignment_id":null,"current_intervention_id":null,"current_intervention_severity":null,"current_intervention_priority":null}]}`

func TestUnexpectedResponseError(t *testing.T) {
	ci.Parallel(t)
	a := mockserver(t)
	cfg := api.DefaultConfig()
	cfg.Address = a

	c, e := api.NewClient(cfg)
	must.NoError(t, e)

	ctx := context.Background()

	// ValidateServer ensures that the mock server handles the default
	// intervention correctly. This ensures that the routing rule for this path
	// is at least correct and that the mock server is passing its address to
	// the client properly.
	t.Run("ValidateServer", func(t *testing.T) {
		n, err := c.Interventions().Candidates(ctx, "i-default")
		must.NoError(t, err)
		var cr api.CandidatesResponse
		err = unmock(t, mockCandidatesBody, &cr)
		must.NoError(t, err)
		must.Eq(t, cr, *n)
	})

	// WrongStatus drives the server to answer with a code the client does
	// not accept and checks every field of the resulting error.
	t.Run("WrongStatus", func(t *testing.T) {
		ci.Parallel(t)
		n, err := c.Interventions().Candidates(ctx, "badStatus")
		must.Nil(t, n)
		must.Error(t, err)
		t.Logf("err: %v", err)

		ure, ok := err.(api.UnexpectedResponseError)
		must.True(t, ok)

		must.True(t, ure.HasStatusCode())
		must.Eq(t, http.StatusAccepted, ure.StatusCode())

		must.True(t, ure.HasStatusText())
		must.Eq(t, http.StatusText(http.StatusAccepted), ure.StatusText())

		must.True(t, ure.HasExpectedStatuses())
		must.Eq(t, []int{http.StatusOK}, ure.ExpectedStatuses())

		must.True(t, ure.HasBody())
		must.Eq(t, mockCandidatesBody, ure.Body())
	})

	// NotFound checks the error produced by a `404 Not Found`, which the
	// requireOK wrapper treats as unexpected like any other non-200.
	t.Run("NotFound", func(t *testing.T) {
		ci.Parallel(t)
		n, err := c.Interventions().Candidates(ctx, "wat")
		must.Nil(t, n)
		must.Error(t, err)
		t.Logf("err: %v", err)

		ure, ok := err.(api.UnexpectedResponseError)
		must.True(t, ok)

		must.True(t, ure.HasStatusCode())
		must.Eq(t, http.StatusNotFound, ure.StatusCode())

		must.True(t, ure.HasStatusText())
		must.Eq(t, http.StatusText(http.StatusNotFound), ure.StatusText())

		must.True(t, ure.HasBody())
		must.Eq(t, "intervention not found", ure.Body())
	})

	// EarlyClose exercises FromHTTPResponse against a body that fails
	// mid-read while the error is being built.
	t.Run("EarlyClose", func(t *testing.T) {
		ci.Parallel(t)
		n, err := c.Interventions().Candidates(ctx, "earlyClose")
		must.Nil(t, n)
		must.Error(t, err)

		t.Logf("e: %v\n", err)
		ure, ok := err.(api.UnexpectedResponseError)
		must.True(t, ok)

		must.True(t, ure.HasStatusCode())
		must.Eq(t, http.StatusInternalServerError, ure.StatusCode())

		must.True(t, ure.HasStatusText())
		must.Eq(t, http.StatusText(http.StatusInternalServerError), ure.StatusText())

		must.True(t, ure.HasError())
		must.ErrorIs(t, err, io.ErrUnexpectedEOF)

		must.True(t, ure.HasBody())
		must.Eq(t, "{", ure.Body()) // The body is truncated to the first byte
	})
}

// mockserver stands up an httptest.Server routing canned responses, which
// is much cheaper than a real backend.
func mockserver(t *testing.T) string {
	mux := http.NewServeMux()
	mux.Handle("/v1/interventions/earlyClose/candidates", closingHandler(http.StatusInternalServerError, mockCandidatesBody))
	mux.Handle("/v1/interventions/badStatus/candidates", testHandler(http.StatusAccepted, mockCandidatesBody))
	mux.Handle("/v1/interventions/i-default/candidates", testHandler(http.StatusOK, mockCandidatesBody))
	mux.Handle("/v1/interventions/", testNotFoundHandler("intervention not found"))
	mux.Handle("/v1", http.NotFoundHandler())
	mux.Handle("/", testHandler(http.StatusOK, "ok"))

	lMux := testLogRequestHandler(t, mux)
	ts := httptest.NewServer(lMux)
	t.Cleanup(func() {
		t.Log("stopping mock server")
		ts.Close()
	})

	// Test the server
	tc := ts.Client()
	resp, err := tc.Get(ts.URL + "/")
	must.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	must.NoError(t, err)
	t.Logf("checking mock server, got resp: %s", b)

	// the mock server is up and ready for requests
	return ts.URL
}

// testNotFoundHandler is a testHandler fixed to status code 404.
func testNotFoundHandler(b string) http.Handler { return testHandler(http.StatusNotFound, b) }

// testHandler writes a backend-like response carrying the headers the API
// client requires.
func testHandler(sc int, b string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(sc)
		w.Write([]byte(b))
	})
}

// closingHandler cuts the response body off mid-read so the client sees a
// short read while collecting the body into an UnexpectedResponseError.
func closingHandler(sc int, b string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		er := iotest.TimeoutReader( // TimeoutReader errors on the second read
			iotest.OneByteReader( // OneByteReader forces one read per byte
				strings.NewReader(b),
			),
		)

		// content-length must carry the full length so the client-side
		// reader can tell the body was truncated
		w.Header().Set("content-length", fmt.Sprint(len(b)))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(sc)

		// io.Copy keeps the stdlib from recomputing content-length
		io.Copy(w, er)
	})
}

// testLogRequestHandler wraps a http.Handler so every request against the
// mock server shows up in the test log output.
func testLogRequestHandler(t *testing.T, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// httpsnoop captures the response code and size without consuming
		// the handler's output
		m := httpsnoop.CaptureMetrics(h, w, r)
		ri := httpReqInfo{
			uri:       r.URL.String(),
			method:    r.Method,
			referer:   r.Referer(),
			ipaddr:    ipAddrFromRemoteAddr(r.RemoteAddr),
			code:      m.Code,
			duration:  m.Duration,
			size:      m.Written,
			userAgent: r.UserAgent(),
		}
		t.Log(ri.String())
	})
}

// httpReqInfo is one logged request against the mock server.
type httpReqInfo struct {
	method    string
	uri       string
	referer   string
	ipaddr    string
	code      int
	size      int64
	duration  time.Duration
	userAgent string
}

func (i httpReqInfo) String() string {
	return fmt.Sprintf(
		"method=%q uri=%q referer=%q ipaddr=%q code=%d size=%d duration=%q userAgent=%q",
		i.method, i.uri, i.referer, i.ipaddr, i.code, i.size, i.duration, i.userAgent,
	)
}

// ipAddrFromRemoteAddr strips the port from an address:port remote addr,
// returning the input unchanged when it does not parse.
func ipAddrFromRemoteAddr(s string) string {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().String()
	}
	return s
}

// unmock unmarshals a mock json body into dst, a pointer to the matching
// API struct.
func unmock(t *testing.T, src string, dst any) error {
	if err := json.Unmarshal([]byte(src), dst); err != nil {
		return fmt.Errorf("error unmarshaling mock: %w", err)
	}
	return nil
}
