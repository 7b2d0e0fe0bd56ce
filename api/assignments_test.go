// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/loan-mgt/fast-pin-pon-sub002/ci"
	"github.com/shoenig/test/must"
)

func TestAssignments_Release(t *testing.T) {
	ci.Parallel(t)

	var gotPath, gotMethod string
	var gotReq AssignmentStatusRequest
	client := makeTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		must.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.WriteHeader(http.StatusOK)
	}))

	must.NoError(t, client.Assignments().Release(context.Background(), "a-1"))
	must.Eq(t, http.MethodPatch, gotMethod)
	must.Eq(t, "/v1/assignments/a-1/status", gotPath)
	must.Eq(t, AssignmentStatusReleased, gotReq.Status)
}

func TestAssignments_UpdateStatus_Validation(t *testing.T) {
	ci.Parallel(t)

	client, err := NewClient(&Config{})
	must.NoError(t, err)

	err = client.Assignments().UpdateStatus(context.Background(), "", AssignmentStatusArrived)
	must.EqError(t, err, "missing assignment ID")

	err = client.Assignments().UpdateStatus(context.Background(), "a-1", "")
	must.EqError(t, err, "missing assignment status")
}
