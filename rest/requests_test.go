package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetverse/go-session/rest"
)

func TestRequestsClientCreate(t *testing.T) {
	d, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/requests", r.URL.Path)

		var body rest.RequestPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a1", body.AssetID)
		assert.Equal(t, "need it for onboarding", body.Note)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"r1","assetId":"a1","status":"pending"}`))
	})

	request, err := rest.NewRequestsClient(d).Create(context.Background(), rest.RequestPayload{
		AssetID: "a1",
		Note:    "need it for onboarding",
	})
	require.NoError(t, err)
	assert.Equal(t, rest.RequestPending, request.Status)
}

func TestRequestsClientLifecycleActions(t *testing.T) {
	tests := []struct {
		name string
		call func(c *rest.RequestsClient) error
		path string
	}{
		{
			name: "approve",
			call: func(c *rest.RequestsClient) error { return c.Approve(context.Background(), "r1") },
			path: "/api/requests/r1/approve",
		},
		{
			name: "reject",
			call: func(c *rest.RequestsClient) error { return c.Reject(context.Background(), "r1") },
			path: "/api/requests/r1/reject",
		},
		{
			name: "return",
			call: func(c *rest.RequestsClient) error { return c.Return(context.Background(), "r1") },
			path: "/api/requests/r1/return",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotMethod, gotPath string
			d, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				_, _ = w.Write([]byte(`{}`))
			})

			require.NoError(t, tc.call(rest.NewRequestsClient(d)))
			assert.Equal(t, http.MethodPut, gotMethod)
			assert.Equal(t, tc.path, gotPath)
		})
	}
}

func TestRequestsClientMyRequests(t *testing.T) {
	d, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/requests/my-requests", r.URL.Path)
		assert.Equal(t, "approved", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"requests":[{"_id":"r1","assetId":"a1","status":"approved"}],"total":1,"page":1,"totalPages":1}`))
	})

	page, err := rest.NewRequestsClient(d).MyRequests(context.Background(), rest.ListQuery{Status: "approved"})
	require.NoError(t, err)
	require.Len(t, page.Requests, 1)
	assert.Equal(t, rest.RequestApproved, page.Requests[0].Status)
}
